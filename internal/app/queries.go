package app

import (
	"context"
	"time"

	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

type QueryService struct {
	hotels    domain.HotelStore
	snapshots domain.SnapshotStore
	cache     domain.Cache
	cacheTTL  time.Duration
}

func NewQueryService(h domain.HotelStore, s domain.SnapshotStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{hotels: h, snapshots: s, cache: c, cacheTTL: ttl}
}

type ChannelScoreView struct {
	Channel         domain.Channel `json:"channel"`
	AverageScore    *float64       `json:"average_score"`
	NormalizedScore *float64       `json:"normalized_score"`
	TotalReviews    *int           `json:"total_reviews"`
	URL             *string        `json:"url"`
	FetchedAt       time.Time      `json:"fetched_at"`
}

type ScoreView struct {
	HotelID   int64              `json:"hotel_id"`
	Name      string             `json:"name"`
	City      *string            `json:"city"`
	Composite *float64           `json:"composite"`
	Channels  []ChannelScoreView `json:"channels"`
}

// GetScores aggregates the latest snapshot per channel into the composite
// view the dashboard ranks by. Read-through cached; fetches invalidate.
func (s *QueryService) GetScores(ctx context.Context, hotelID int64) (ScoreView, error) {
	key := scoresKey(hotelID)
	var sv ScoreView
	if ok, _ := s.cache.Get(ctx, key, &sv); ok {
		return sv, nil
	}

	hotel, err := s.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return ScoreView{}, err
	}
	latest, err := s.snapshots.LatestSnapshots(ctx, hotelID)
	if err != nil {
		return ScoreView{}, err
	}

	sv = ScoreView{
		HotelID:   hotel.ID,
		Name:      hotel.Name,
		City:      hotel.City,
		Composite: scoring.Composite(latest),
	}
	for _, ch := range domain.Channels {
		snap, ok := latest[ch]
		if !ok {
			continue
		}
		sv.Channels = append(sv.Channels, ChannelScoreView{
			Channel:         ch,
			AverageScore:    snap.AverageScore,
			NormalizedScore: snap.NormalizedScore,
			TotalReviews:    snap.TotalReviews,
			URL:             hotel.Link(ch).URL,
			FetchedAt:       snap.FetchedAt,
		})
	}

	_ = s.cache.Set(ctx, key, sv, int(s.cacheTTL.Seconds()))
	return sv, nil
}

// History returns snapshots for trend display, filtered by channel and fetch
// time range.
func (s *QueryService) History(ctx context.Context, q domain.SnapshotQuery) ([]domain.ReviewSnapshot, error) {
	if _, err := s.hotels.GetHotel(ctx, q.HotelID); err != nil {
		return nil, err
	}
	return s.snapshots.ListSnapshots(ctx, q)
}
