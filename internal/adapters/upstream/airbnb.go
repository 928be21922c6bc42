package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

// airbnbFallbackSample caps the individual ratings averaged when a listing's
// search result carries no aggregate rating.
const airbnbFallbackSample = 50

// Airbnb mostly lists individual rentals, so a fuzzy match is dangerous: the
// adapter requires token overlap with the hotel name before accepting any
// candidate, and reports not-found rather than falling back to a low-
// confidence one.
type Airbnb struct{ c *caller }

func NewAirbnb(base, key string) *Airbnb {
	return &Airbnb{c: newCaller("airbnb", base, key)}
}

func (a *Airbnb) Channel() domain.Channel { return domain.ChannelAirbnb }

type airbnbListing struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	AvgRating    *float64 `json:"avg_rating"` // 1-5
	ReviewsCount *int     `json:"reviews_count"`
	URL          *string  `json:"url"`
}

type airbnbSearchResponse struct {
	Listings []airbnbListing `json:"listings"`
}

type airbnbReviewsResponse struct {
	Average *float64 `json:"average"` // reported aggregate, 1-5, may be absent
	Reviews []struct {
		Rating float64 `json:"rating"`
	} `json:"reviews"`
}

func (a *Airbnb) FetchReviews(ctx context.Context, q domain.SearchQuery) domain.FetchResult {
	var sr airbnbSearchResponse
	if err := a.c.getJSON(ctx, "/search", url.Values{"query": {searchTerm(q)}}, &sr); err != nil {
		return domain.ErrorResult(a.Channel(), "airbnb search: "+err.Error())
	}

	var top *airbnbListing
	for i := range sr.Listings {
		if tokensOverlap(q.Name, sr.Listings[i].Name) {
			top = &sr.Listings[i]
			break
		}
	}
	if top == nil {
		// No candidate shares a significant name token: treat as absent from
		// the platform, never fall back to an unrelated rental.
		return domain.NotFoundResult(a.Channel())
	}
	conf := confidenceFor(q.Name, top.Name, len(sr.Listings), 3)

	res := domain.FetchResult{
		Channel:    a.Channel(),
		ChannelRef: pstr(top.ID),
		Confidence: &conf,
	}
	if top.URL != nil && *top.URL != "" {
		res.URL = top.URL
	} else {
		res.URL = pstr("https://www.airbnb.com/rooms/" + url.PathEscape(top.ID))
	}
	res.TotalReviews = top.ReviewsCount

	avg := top.AvgRating
	if avg == nil {
		// Search result carried no aggregate: read the reviews endpoint and
		// use its reported average, or the mean of the sampled ratings.
		var rr airbnbReviewsResponse
		path := "/listings/" + url.PathEscape(top.ID) + "/reviews"
		if err := a.c.getJSON(ctx, path, url.Values{"limit": {strconv.Itoa(airbnbFallbackSample)}}, &rr); err != nil {
			res.Err = pstr("airbnb reviews: " + err.Error())
			return res
		}
		if raw, err := json.Marshal(rr); err == nil {
			res.Raw = raw
		}
		if rr.Average != nil {
			avg = rr.Average
		} else {
			ratings := make([]float64, 0, len(rr.Reviews))
			for _, r := range rr.Reviews {
				ratings = append(ratings, r.Rating)
			}
			avg = mean(ratings)
		}
		if res.TotalReviews == nil && len(rr.Reviews) > 0 {
			res.TotalReviews = pint(len(rr.Reviews))
		}
	} else if raw, err := json.Marshal(top); err == nil {
		res.Raw = raw
	}

	if avg == nil {
		res.Err = pstr("airbnb: listing has no ratings")
		return res
	}
	res.AverageScore = pfloat(scoring.Round2(*avg))
	res.NormalizedScore = pfloat(scoring.Normalize(*avg, a.Channel()))
	return res
}
