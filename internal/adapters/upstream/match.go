package upstream

import (
	"strings"

	"stayscore/internal/domain"
)

// nameMatches is the shared match heuristic: case-insensitive substring
// containment in either direction.
func nameMatches(query, candidate string) bool {
	a := strings.ToLower(strings.TrimSpace(query))
	b := strings.ToLower(strings.TrimSpace(candidate))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// confidenceFor grades the top candidate: high on a name match, medium when
// the result set was small enough (channel-specific threshold) that the top
// hit is plausibly right anyway, low otherwise.
func confidenceFor(query, candidate string, totalCandidates, mediumThreshold int) domain.Confidence {
	if nameMatches(query, candidate) {
		return domain.ConfidenceHigh
	}
	if totalCandidates <= mediumThreshold {
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}

// fillerTokens are words that carry no identity: articles, lodging nouns,
// directionals and common city-name words. Discarded before the Airbnb
// token-overlap check.
var fillerTokens = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "at": {}, "by": {}, "and": {},
	"hotel": {}, "hotels": {}, "resort": {}, "inn": {}, "suites": {}, "suite": {},
	"lodge": {}, "motel": {}, "hostel": {}, "apartments": {}, "residence": {},
	"north": {}, "south": {}, "east": {}, "west": {}, "downtown": {}, "central": {},
	"city": {}, "town": {}, "new": {}, "old": {}, "san": {}, "los": {}, "las": {},
	"saint": {}, "st": {},
}

func significantTokens(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, filler := fillerTokens[f]; filler {
			continue
		}
		out = append(out, f)
	}
	return out
}

// tokensOverlap enforces the Airbnb minimum-overlap rule: at least one
// significant token of the hotel name must appear in the candidate's name.
// An unrelated short-term rental is a worse answer than no answer, so when
// nothing overlaps the adapter reports not-found instead of guessing.
func tokensOverlap(hotelName, candidateName string) bool {
	cand := strings.ToLower(candidateName)
	for _, tok := range significantTokens(hotelName) {
		if strings.Contains(cand, tok) {
			return true
		}
	}
	return false
}
