package upstream

import (
	"testing"

	"stayscore/internal/domain"
)

func TestNameMatches_SubstringEitherDirection(t *testing.T) {
	cases := []struct {
		query, candidate string
		want             bool
	}{
		{"The Grand Plaza Hotel", "the grand plaza hotel", true},
		{"Grand Plaza", "The Grand Plaza Hotel & Spa", true},
		{"The Grand Plaza Hotel Istanbul", "Grand Plaza Hotel", true},
		{"The Grand Plaza Hotel", "Marina Bay Suites", false},
		{"", "Anything", false},
	}
	for _, c := range cases {
		if got := nameMatches(c.query, c.candidate); got != c.want {
			t.Errorf("nameMatches(%q, %q) = %v, want %v", c.query, c.candidate, got, c.want)
		}
	}
}

func TestConfidenceFor_ThreeTiers(t *testing.T) {
	if got := confidenceFor("Grand Plaza", "Grand Plaza Hotel", 10, 3); got != domain.ConfidenceHigh {
		t.Errorf("match should be high, got %s", got)
	}
	if got := confidenceFor("Grand Plaza", "Marina Bay", 2, 3); got != domain.ConfidenceMedium {
		t.Errorf("small result set should be medium, got %s", got)
	}
	if got := confidenceFor("Grand Plaza", "Marina Bay", 12, 3); got != domain.ConfidenceLow {
		t.Errorf("large mismatched set should be low, got %s", got)
	}
}

func TestSignificantTokens_DropsFillerWords(t *testing.T) {
	got := significantTokens("The Grand Plaza Hotel")
	if len(got) != 2 || got[0] != "grand" || got[1] != "plaza" {
		t.Fatalf("want [grand plaza], got %v", got)
	}
	if toks := significantTokens("The Hotel Inn Suites"); len(toks) != 0 {
		t.Fatalf("all-filler name should yield nothing, got %v", toks)
	}
}

func TestTokensOverlap_AirbnbRule(t *testing.T) {
	// "grand"/"plaza" survive filtering and appear in the candidate.
	if !tokensOverlap("The Grand Plaza Hotel", "Cozy Studio near Grand Plaza") {
		t.Fatal("expected overlap via grand/plaza")
	}
	// No significant token in common: must be rejected, not down-ranked.
	if tokensOverlap("The Grand Plaza Hotel", "Downtown Loft") {
		t.Fatal("expected no overlap with unrelated rental")
	}
}
