package scoring

import "stayscore/internal/domain"

// ChannelScore is one channel's contribution to the composite: its latest
// normalized score and review volume.
type ChannelScore struct {
	Normalized   *float64
	TotalReviews *int
}

// WeightedAverage combines normalized per-channel scores into one composite,
// weighted by review volume. A channel missing either the score or a positive
// review count is excluded entirely, not counted as zero. Returns nil (not
// zero) when no channel qualifies. This exact formula drives ranking and
// export output downstream.
func WeightedAverage(byChannel map[domain.Channel]ChannelScore) *float64 {
	var sum, weight float64
	for _, c := range domain.Channels {
		s, ok := byChannel[c]
		if !ok || s.Normalized == nil || s.TotalReviews == nil || *s.TotalReviews <= 0 {
			continue
		}
		sum += *s.Normalized * float64(*s.TotalReviews)
		weight += float64(*s.TotalReviews)
	}
	if weight == 0 {
		return nil
	}
	avg := Round2(sum / weight)
	return &avg
}

// Composite computes the read-time composite over the latest snapshot per
// channel. Historical snapshots of the same channel are never averaged.
func Composite(latest map[domain.Channel]domain.ReviewSnapshot) *float64 {
	byChannel := make(map[domain.Channel]ChannelScore, len(latest))
	for c, s := range latest {
		byChannel[c] = ChannelScore{Normalized: s.NormalizedScore, TotalReviews: s.TotalReviews}
	}
	return WeightedAverage(byChannel)
}
