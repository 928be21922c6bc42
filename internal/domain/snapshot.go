package domain

import "time"

// ReviewSnapshot is one immutable record of a channel's score for one hotel at
// one fetch event. The pipeline only ever appends; "latest" per channel is the
// row with the greatest FetchedAt.
type ReviewSnapshot struct {
	ID              int64
	HotelID         int64
	Channel         Channel
	AverageScore    *float64 // channel-native scale (Booking: already converted to public 0-10)
	NormalizedScore *float64 // common 0-10 scale
	TotalReviews    *int
	FetchedAt       time.Time
	Raw             []byte // upstream payload as received, for later reprocessing
}

func (s ReviewSnapshot) Scored() bool { return s.NormalizedScore != nil }
