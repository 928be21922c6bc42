package scoring

import (
	"math"

	"stayscore/internal/domain"
)

// Normalize maps a channel-native rating onto the common 0-10 scale:
// round(raw * multiplier, 2). Pure and total for finite non-negative input;
// idempotent for channels whose multiplier is 1.
func Normalize(raw float64, c domain.Channel) float64 {
	return Round2(raw * c.Multiplier())
}

func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
