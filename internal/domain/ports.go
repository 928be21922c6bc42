package domain

import (
	"context"
	"time"
)

// SearchQuery is the input to a channel adapter: the hotel name (possibly the
// Google-resolved one), the user-entered city, and an optional previously
// resolved channel identifier that lets the adapter skip its search phase.
type SearchQuery struct {
	Name string
	City *string
	Hint *string
}

// ChannelAdapter encapsulates one platform's search-then-fetch protocol.
// FetchReviews never returns an error: transport and parse failures are
// converted into the result's Err field.
type ChannelAdapter interface {
	Channel() Channel
	FetchReviews(ctx context.Context, q SearchQuery) FetchResult
}

type HotelStore interface {
	CreateHotel(ctx context.Context, h Hotel) (int64, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
	DeleteHotel(ctx context.Context, id int64) error

	// Partial updates; unrelated fields are never clobbered.
	UpdateName(ctx context.Context, id int64, name string) error
	UpdateLink(ctx context.Context, id int64, c Channel, l ChannelLink) error
}

type SnapshotQuery struct {
	HotelID int64
	Channel *Channel
	After   *time.Time
	Before  *time.Time
	Limit   int
}

// SnapshotStore is append-only from the pipeline's point of view: rows are
// inserted, never updated or deleted (hotel deletion cascades at the store).
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, s ReviewSnapshot) (int64, error)
	ListSnapshots(ctx context.Context, q SnapshotQuery) ([]ReviewSnapshot, error)
	LatestSnapshots(ctx context.Context, hotelID int64) (map[Channel]ReviewSnapshot, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Theme extraction is an opaque collaborator: we hand it snapshot-derived
// text, persist whatever comes back and never interpret it.
type Theme struct {
	Theme        string `json:"theme"`
	Summary      string `json:"summary"`
	MentionCount int    `json:"mention_count"`
}

type ThemeReport struct {
	PositiveThemes []Theme `json:"positive_themes"`
	NegativeThemes []Theme `json:"negative_themes"`
}

type ThemeRequest struct {
	Snippets     []string `json:"snippets,omitempty"`
	ScoreSummary []string `json:"score_summary,omitempty"`
}

type ThemeExtractor interface {
	Extract(ctx context.Context, req ThemeRequest) (ThemeReport, error)
}

type ThemeStore interface {
	SaveThemes(ctx context.Context, hotelID int64, r ThemeReport) error
	GetThemes(ctx context.Context, hotelID int64) (ThemeReport, error)
}
