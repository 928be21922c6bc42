package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

// tripadvisorSampleCap bounds the reviews-list sample used to compute the
// average. There is no reliable aggregate-rating endpoint, so the mean over
// this capped sample is a documented approximation of the displayed score.
const tripadvisorSampleCap = 25

type Tripadvisor struct{ c *caller }

func NewTripadvisor(base, key string) *Tripadvisor {
	return &Tripadvisor{c: newCaller("tripadvisor", base, key)}
}

func (t *Tripadvisor) Channel() domain.Channel { return domain.ChannelTripadvisor }

type tripadvisorLocation struct {
	LocationID int64   `json:"location_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	WebURL     *string `json:"web_url"`
}

type tripadvisorSearchResponse struct {
	Data []tripadvisorLocation `json:"data"`
}

type tripadvisorReviewsResponse struct {
	Data []struct {
		Rating float64 `json:"rating"` // 1-5
	} `json:"data"`
	Paging struct {
		TotalResults *int `json:"total_results"`
	} `json:"paging"`
}

func (t *Tripadvisor) FetchReviews(ctx context.Context, q domain.SearchQuery) domain.FetchResult {
	var sr tripadvisorSearchResponse
	v := url.Values{"searchQuery": {searchTerm(q)}, "category": {"hotels"}}
	if err := t.c.getJSON(ctx, "/location/search", v, &sr); err != nil {
		return domain.ErrorResult(t.Channel(), "tripadvisor search: "+err.Error())
	}
	hotels := sr.Data[:0:0]
	for _, l := range sr.Data {
		if l.Category == "" || l.Category == "hotel" || l.Category == "hotels" {
			hotels = append(hotels, l)
		}
	}
	if len(hotels) == 0 {
		return domain.NotFoundResult(t.Channel())
	}
	top := hotels[0]
	conf := confidenceFor(q.Name, top.Name, len(hotels), 3)

	var rr tripadvisorReviewsResponse
	path := "/location/" + strconv.FormatInt(top.LocationID, 10) + "/reviews"
	if err := t.c.getJSON(ctx, path, url.Values{"limit": {strconv.Itoa(tripadvisorSampleCap)}}, &rr); err != nil {
		return domain.ErrorResult(t.Channel(), "tripadvisor reviews: "+err.Error())
	}

	res := domain.FetchResult{
		Channel:    t.Channel(),
		ChannelRef: pstr(strconv.FormatInt(top.LocationID, 10)),
		Confidence: &conf,
	}
	if top.WebURL != nil && *top.WebURL != "" {
		res.URL = top.WebURL
	} else {
		res.URL = pstr(fmt.Sprintf("https://www.tripadvisor.com/Hotel_Review-d%d", top.LocationID))
	}
	if raw, err := json.Marshal(rr); err == nil {
		res.Raw = raw
	}

	ratings := make([]float64, 0, len(rr.Data))
	for _, r := range rr.Data {
		ratings = append(ratings, r.Rating)
	}
	avg := mean(ratings)
	if avg == nil {
		res.Err = pstr("tripadvisor: no rated reviews in sample")
		return res
	}
	res.AverageScore = pfloat(scoring.Round2(*avg))
	res.NormalizedScore = pfloat(scoring.Normalize(*avg, t.Channel()))
	// Total comes from pagination metadata; fall back to the sample size.
	if rr.Paging.TotalResults != nil {
		res.TotalReviews = rr.Paging.TotalResults
	} else {
		res.TotalReviews = pint(len(rr.Data))
	}
	return res
}
