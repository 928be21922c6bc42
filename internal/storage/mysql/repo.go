package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"stayscore/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- HotelStore ----

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL, h.Name, valStr(h.City))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var h domain.Hotel
	var city sql.NullString
	err := r.db.QueryRowContext(ctx, getHotelSQL, id).Scan(&h.ID, &h.Name, &city)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	if city.Valid {
		c := city.String
		h.City = &c
	}
	links, err := r.loadLinks(ctx, []int64{id})
	if err != nil {
		return domain.Hotel{}, err
	}
	h.Links = links[id]
	return h, nil
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	var ids []int64
	for rows.Next() {
		var h domain.Hotel
		var city sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &city); err != nil {
			return nil, err
		}
		if city.Valid {
			c := city.String
			h.City = &c
		}
		out = append(out, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	links, err := r.loadLinks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Links = links[out[i].ID]
	}
	return out, nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil // snapshots, links and themes cascade at the schema level
}

func (r *Repo) UpdateName(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx, updateHotelNameSQL, name, id)
	return err
}

func (r *Repo) UpdateLink(ctx context.Context, id int64, c domain.Channel, l domain.ChannelLink) error {
	_, err := r.db.ExecContext(ctx, upsertLinkSQL, id, string(c), valStr(l.Ref), valStr(l.URL))
	return err
}

func (r *Repo) loadLinks(ctx context.Context, ids []int64) (map[int64]map[domain.Channel]domain.ChannelLink, error) {
	placeholders := "(?" + strings.Repeat(",?", len(ids)-1) + ")"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, listLinksSQL+placeholders, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]map[domain.Channel]domain.ChannelLink, len(ids))
	for rows.Next() {
		var hotelID int64
		var channel string
		var ref, u sql.NullString
		if err := rows.Scan(&hotelID, &channel, &ref, &u); err != nil {
			return nil, err
		}
		var l domain.ChannelLink
		if ref.Valid {
			s := ref.String
			l.Ref = &s
		}
		if u.Valid {
			s := u.String
			l.URL = &s
		}
		if out[hotelID] == nil {
			out[hotelID] = make(map[domain.Channel]domain.ChannelLink, 5)
		}
		out[hotelID][domain.Channel(channel)] = l
	}
	return out, rows.Err()
}

// ---- SnapshotStore ----

func (r *Repo) InsertSnapshot(ctx context.Context, s domain.ReviewSnapshot) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertSnapshotSQL,
		s.HotelID,
		string(s.Channel),
		valF64(s.AverageScore),
		valF64(s.NormalizedScore),
		valInt(s.TotalReviews),
		s.FetchedAt.UTC(),
		valJSON(s.Raw),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListSnapshots(ctx context.Context, q domain.SnapshotQuery) ([]domain.ReviewSnapshot, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, hotel_id, channel, average_score, normalized_score, total_reviews, fetched_at, raw
FROM review_snapshots WHERE hotel_id = ?`)
	args := []any{q.HotelID}
	if q.Channel != nil {
		sb.WriteString(" AND channel = ?")
		args = append(args, string(*q.Channel))
	}
	if q.After != nil {
		sb.WriteString(" AND fetched_at >= ?")
		args = append(args, q.After.UTC())
	}
	if q.Before != nil {
		sb.WriteString(" AND fetched_at < ?")
		args = append(args, q.Before.UTC())
	}
	sb.WriteString(" ORDER BY fetched_at, id")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReviewSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) LatestSnapshots(ctx context.Context, hotelID int64) (map[domain.Channel]domain.ReviewSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, latestSnapshotsSQL, hotelID, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Channel]domain.ReviewSnapshot, 5)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		// rows arrive in id order, so on a fetched_at tie the newest insert wins
		out[s.Channel] = s
	}
	return out, rows.Err()
}

func scanSnapshot(rows *sql.Rows) (domain.ReviewSnapshot, error) {
	var s domain.ReviewSnapshot
	var channel string
	var avg, norm sql.NullFloat64
	var total sql.NullInt64
	var fetchedAt time.Time
	var raw sql.RawBytes
	if err := rows.Scan(&s.ID, &s.HotelID, &channel, &avg, &norm, &total, &fetchedAt, &raw); err != nil {
		return domain.ReviewSnapshot{}, err
	}
	s.Channel = domain.Channel(channel)
	if avg.Valid {
		f := avg.Float64
		s.AverageScore = &f
	}
	if norm.Valid {
		f := norm.Float64
		s.NormalizedScore = &f
	}
	if total.Valid {
		n := int(total.Int64)
		s.TotalReviews = &n
	}
	s.FetchedAt = fetchedAt
	if len(raw) > 0 {
		s.Raw = append([]byte(nil), raw...)
	}
	return s, nil
}

// ---- ThemeStore ----

func (r *Repo) SaveThemes(ctx context.Context, hotelID int64, report domain.ThemeReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertThemesSQL, hotelID, string(b))
	return err
}

func (r *Repo) GetThemes(ctx context.Context, hotelID int64) (domain.ThemeReport, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, getThemesSQL, hotelID).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.ThemeReport{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ThemeReport{}, err
	}
	var report domain.ThemeReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.ThemeReport{}, err
	}
	return report, nil
}
