package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

// Google resolves the hotel against a Places-style API. It runs first in every
// fetch because the name it returns is treated as authoritative and fed to the
// other channels' searches.
type Google struct{ c *caller }

func NewGoogle(base, key string) *Google {
	return &Google{c: newCaller("google", base, key)}
}

func (g *Google) Channel() domain.Channel { return domain.ChannelGoogle }

type googlePlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Rating           *float64 `json:"rating"` // 1-5
	UserRatingsTotal *int     `json:"user_ratings_total"`
	URL              *string  `json:"url"`
}

type googleSearchResponse struct {
	Results []googlePlace `json:"results"`
}

type googleDetailResponse struct {
	Result googlePlace `json:"result"`
}

func (g *Google) FetchReviews(ctx context.Context, q domain.SearchQuery) domain.FetchResult {
	placeID := ""
	conf := domain.ConfidenceHigh

	// A cached place id skips the search phase entirely and keeps the high
	// confidence it was stored under.
	if q.Hint != nil && *q.Hint != "" {
		placeID = *q.Hint
	} else {
		var sr googleSearchResponse
		v := url.Values{"query": {searchTerm(q)}, "type": {"lodging"}}
		if err := g.c.getJSON(ctx, "/places/search", v, &sr); err != nil {
			return domain.ErrorResult(g.Channel(), "google search: "+err.Error())
		}
		lodging := sr.Results[:0:0]
		for _, p := range sr.Results {
			if hasType(p.Types, "lodging") {
				lodging = append(lodging, p)
			}
		}
		if len(lodging) == 0 {
			return domain.NotFoundResult(g.Channel())
		}
		placeID = lodging[0].PlaceID
		conf = confidenceFor(q.Name, lodging[0].Name, len(lodging), 3)
	}

	var dr googleDetailResponse
	if err := g.c.getJSON(ctx, "/places/"+url.PathEscape(placeID), nil, &dr); err != nil {
		return domain.ErrorResult(g.Channel(), "google details: "+err.Error())
	}
	p := dr.Result

	res := domain.FetchResult{
		Channel:    g.Channel(),
		ChannelRef: pstr(placeID),
		Confidence: &conf,
	}
	if p.Name != "" {
		res.ResolvedName = pstr(p.Name)
	}
	if p.URL != nil && *p.URL != "" {
		res.URL = p.URL
	} else {
		res.URL = pstr(fmt.Sprintf("https://www.google.com/maps/place/?q=place_id:%s", placeID))
	}
	if p.Rating != nil {
		res.AverageScore = p.Rating
		res.NormalizedScore = pfloat(scoring.Normalize(*p.Rating, g.Channel()))
	}
	res.TotalReviews = p.UserRatingsTotal
	if raw, err := json.Marshal(p); err == nil {
		res.Raw = raw
	}
	if p.Rating == nil {
		res.Err = pstr("google: place has no rating")
	}
	return res
}

func searchTerm(q domain.SearchQuery) string {
	if q.City != nil && *q.City != "" {
		return q.Name + ", " + *q.City
	}
	return q.Name
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
