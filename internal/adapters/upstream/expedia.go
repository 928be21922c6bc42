package upstream

import (
	"context"
	"encoding/json"
	"net/url"

	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

// Expedia (Hotels.com) already reports guest ratings on a 0-10 scale, so the
// raw and normalized values are identical (unit multiplier).
type Expedia struct{ c *caller }

func NewExpedia(base, key string) *Expedia {
	return &Expedia{c: newCaller("expedia", base, key)}
}

func (e *Expedia) Channel() domain.Channel { return domain.ChannelExpedia }

type expediaProperty struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type string  `json:"type"`
	URL  *string `json:"url"`
}

type expediaSearchResponse struct {
	Properties []expediaProperty `json:"properties"`
}

type expediaReviewsResponse struct {
	Score        *float64 `json:"score"` // 0-10
	TotalReviews *int     `json:"total_reviews"`
}

func (e *Expedia) FetchReviews(ctx context.Context, q domain.SearchQuery) domain.FetchResult {
	var sr expediaSearchResponse
	if err := e.c.getJSON(ctx, "/hotels/search", url.Values{"q": {searchTerm(q)}}, &sr); err != nil {
		return domain.ErrorResult(e.Channel(), "expedia search: "+err.Error())
	}
	hotels := sr.Properties[:0:0]
	for _, p := range sr.Properties {
		if p.Type == "" || p.Type == "HOTEL" {
			hotels = append(hotels, p)
		}
	}
	if len(hotels) == 0 {
		return domain.NotFoundResult(e.Channel())
	}
	top := hotels[0]
	conf := confidenceFor(q.Name, top.Name, len(hotels), 2)

	var rr expediaReviewsResponse
	if err := e.c.getJSON(ctx, "/hotels/"+url.PathEscape(top.ID)+"/reviews", nil, &rr); err != nil {
		return domain.ErrorResult(e.Channel(), "expedia reviews: "+err.Error())
	}

	res := domain.FetchResult{
		Channel:    e.Channel(),
		ChannelRef: pstr(top.ID),
		URL:        top.URL,
		Confidence: &conf,
	}
	if raw, err := json.Marshal(rr); err == nil {
		res.Raw = raw
	}
	if rr.Score == nil {
		res.Err = pstr("expedia: no guest rating")
		return res
	}
	res.AverageScore = pfloat(scoring.Round2(*rr.Score))
	res.NormalizedScore = pfloat(scoring.Normalize(*rr.Score, e.Channel()))
	res.TotalReviews = rr.TotalReviews
	return res
}
