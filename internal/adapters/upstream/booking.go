package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

// bookingScaleFactor converts Booking's internal 0-4 review average to the
// public 0-10 value shown on their site.
const bookingScaleFactor = 2.5

// Booking needs two detail calls to assemble a result: the reviews list (the
// hotel-level average rides on its first item) and the hotel metadata (public
// URL and review count). They run concurrently.
type Booking struct{ c *caller }

func NewBooking(base, key string) *Booking {
	return &Booking{c: newCaller("booking", base, key)}
}

func (b *Booking) Channel() domain.Channel { return domain.ChannelBooking }

type bookingDest struct {
	DestID   string `json:"dest_id"`
	DestType string `json:"dest_type"`
	Name     string `json:"name"`
}

type bookingSearchResponse struct {
	Results []bookingDest `json:"results"`
}

type bookingReviewsResponse struct {
	Reviews []struct {
		AverageScore *float64 `json:"average_score"` // hotel-level, internal 0-4
	} `json:"reviews"`
}

type bookingHotelResponse struct {
	URL      *string `json:"url"`
	ReviewNr *int    `json:"review_nr"`
}

func (b *Booking) FetchReviews(ctx context.Context, q domain.SearchQuery) domain.FetchResult {
	var sr bookingSearchResponse
	v := url.Values{"query": {searchTerm(q)}, "dest_type": {"hotel"}}
	if err := b.c.getJSON(ctx, "/locations/search", v, &sr); err != nil {
		return domain.ErrorResult(b.Channel(), "booking search: "+err.Error())
	}
	hotels := sr.Results[:0:0]
	for _, r := range sr.Results {
		if r.DestType == "hotel" {
			hotels = append(hotels, r)
		}
	}
	if len(hotels) == 0 {
		return domain.NotFoundResult(b.Channel())
	}
	top := hotels[0]
	conf := confidenceFor(q.Name, top.Name, len(hotels), 3)

	var rr bookingReviewsResponse
	var hr bookingHotelResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.c.getJSON(gctx, "/hotels/"+url.PathEscape(top.DestID)+"/reviews",
			url.Values{"limit": {strconv.Itoa(1)}}, &rr)
	})
	g.Go(func() error {
		return b.c.getJSON(gctx, "/hotels/"+url.PathEscape(top.DestID), nil, &hr)
	})
	if err := g.Wait(); err != nil {
		return domain.ErrorResult(b.Channel(), "booking details: "+err.Error())
	}

	res := domain.FetchResult{
		Channel:      b.Channel(),
		ChannelRef:   pstr(top.DestID),
		URL:          hr.URL,
		Confidence:   &conf,
		TotalReviews: hr.ReviewNr,
	}
	if raw, err := json.Marshal(map[string]any{"reviews": rr, "hotel": hr}); err == nil {
		res.Raw = raw
	}
	if len(rr.Reviews) == 0 || rr.Reviews[0].AverageScore == nil {
		res.Err = pstr("booking: no review score")
		return res
	}
	public := scoring.Round2(*rr.Reviews[0].AverageScore * bookingScaleFactor)
	res.AverageScore = pfloat(public)
	res.NormalizedScore = pfloat(scoring.Normalize(public, b.Channel()))
	return res
}
