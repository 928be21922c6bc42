package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"stayscore/internal/adapters/upstream"
	"stayscore/internal/domain"
)

func jsonHandler(t *testing.T, routes map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func pstr(s string) *string { return &s }

// ---- Google ----

func TestGoogle_SearchThenDetails(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/places/search": map[string]any{"results": []map[string]any{
			{"place_id": "pl-1", "name": "Grand Plaza Hotel", "types": []string{"lodging"}},
			{"place_id": "pl-2", "name": "Plaza Parking", "types": []string{"parking"}},
		}},
		"/places/pl-1": map[string]any{"result": map[string]any{
			"place_id": "pl-1", "name": "The Grand Plaza Hotel",
			"rating": 4.2, "user_ratings_total": 500,
		}},
	}))
	defer ts.Close()

	g := upstream.NewGoogle(ts.URL, "k")
	res := g.FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza Hotel", City: pstr("Istanbul")})

	if res.Err != nil {
		t.Fatalf("unexpected error: %s", *res.Err)
	}
	if res.AverageScore == nil || *res.AverageScore != 4.2 {
		t.Fatalf("avg: %v", res.AverageScore)
	}
	if res.NormalizedScore == nil || *res.NormalizedScore != 8.4 {
		t.Fatalf("normalized: %v", res.NormalizedScore)
	}
	if res.TotalReviews == nil || *res.TotalReviews != 500 {
		t.Fatalf("total: %v", res.TotalReviews)
	}
	if res.ResolvedName == nil || *res.ResolvedName != "The Grand Plaza Hotel" {
		t.Fatalf("resolved name: %v", res.ResolvedName)
	}
	if res.Confidence == nil || *res.Confidence != domain.ConfidenceHigh {
		t.Fatalf("confidence: %v", res.Confidence)
	}
}

func TestGoogle_HintSkipsSearch(t *testing.T) {
	var searched int32
	mux := http.NewServeMux()
	mux.HandleFunc("/places/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&searched, 1)
		http.Error(w, "should not be called", 500)
	})
	mux.HandleFunc("/places/pl-9", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{
			"place_id": "pl-9", "name": "Hinted Hotel", "rating": 5.0, "user_ratings_total": 10,
		}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	g := upstream.NewGoogle(ts.URL, "k")
	res := g.FetchReviews(context.Background(), domain.SearchQuery{Name: "Hinted Hotel", Hint: pstr("pl-9")})

	if atomic.LoadInt32(&searched) != 0 {
		t.Fatal("hint should skip the search phase")
	}
	if res.Confidence == nil || *res.Confidence != domain.ConfidenceHigh {
		t.Fatalf("hinted fetch keeps high confidence, got %v", res.Confidence)
	}
	if res.NormalizedScore == nil || *res.NormalizedScore != 10 {
		t.Fatalf("normalized: %v", res.NormalizedScore)
	}
}

func TestGoogle_NoLodgingCandidates_NotFound(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/places/search": map[string]any{"results": []map[string]any{
			{"place_id": "pl-2", "name": "Plaza Parking", "types": []string{"parking"}},
		}},
	}))
	defer ts.Close()

	res := upstream.NewGoogle(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza"})
	if res.Err == nil || !strings.Contains(*res.Err, "not found on google") {
		t.Fatalf("want not-found, got %+v", res)
	}
	if res.Scored() {
		t.Fatal("not-found must carry no score")
	}
}

// ---- TripAdvisor ----

func TestTripadvisor_SampledMeanAndPagingTotal(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/location/search": map[string]any{"data": []map[string]any{
			{"location_id": 77, "name": "Grand Plaza Hotel", "category": "hotel", "web_url": "https://ta/77"},
		}},
		"/location/77/reviews": map[string]any{
			"data":   []map[string]any{{"rating": 5}, {"rating": 4}, {"rating": 3}},
			"paging": map[string]any{"total_results": 300},
		},
	}))
	defer ts.Close()

	res := upstream.NewTripadvisor(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza Hotel"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", *res.Err)
	}
	if res.AverageScore == nil || *res.AverageScore != 4.0 {
		t.Fatalf("sampled mean: %v", res.AverageScore)
	}
	if res.NormalizedScore == nil || *res.NormalizedScore != 8.0 {
		t.Fatalf("normalized: %v", res.NormalizedScore)
	}
	if res.TotalReviews == nil || *res.TotalReviews != 300 {
		t.Fatalf("total from paging: %v", res.TotalReviews)
	}
}

func TestTripadvisor_TotalFallsBackToSampleSize(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/location/search": map[string]any{"data": []map[string]any{
			{"location_id": 5, "name": "Grand Plaza Hotel", "category": "hotel"},
		}},
		"/location/5/reviews": map[string]any{
			"data": []map[string]any{{"rating": 4}, {"rating": 4}},
		},
	}))
	defer ts.Close()

	res := upstream.NewTripadvisor(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza Hotel"})
	if res.TotalReviews == nil || *res.TotalReviews != 2 {
		t.Fatalf("want sample-size fallback 2, got %v", res.TotalReviews)
	}
}

// ---- Expedia ----

func TestExpedia_ScoreAlreadyNormalized(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/hotels/search": map[string]any{"properties": []map[string]any{
			{"id": "ex-1", "name": "Grand Plaza Hotel", "type": "HOTEL", "url": "https://ex/1"},
		}},
		"/hotels/ex-1/reviews": map[string]any{"score": 8.7, "total_reviews": 412},
	}))
	defer ts.Close()

	res := upstream.NewExpedia(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza Hotel"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", *res.Err)
	}
	if *res.AverageScore != 8.7 || *res.NormalizedScore != 8.7 {
		t.Fatalf("raw and normalized must both be 8.7: %v / %v", *res.AverageScore, *res.NormalizedScore)
	}
}

// ---- Booking ----

func TestBooking_InternalScaleConversion(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/locations/search": map[string]any{"results": []map[string]any{
			{"dest_id": "bk-1", "dest_type": "hotel", "name": "Grand Plaza Hotel"},
			{"dest_id": "city-1", "dest_type": "city", "name": "Istanbul"},
		}},
		"/hotels/bk-1/reviews": map[string]any{"reviews": []map[string]any{
			{"average_score": 2.8}, // internal 0-4 scale
		}},
		"/hotels/bk-1": map[string]any{"url": "https://bk/grand-plaza", "review_nr": 200},
	}))
	defer ts.Close()

	res := upstream.NewBooking(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza Hotel"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", *res.Err)
	}
	if res.AverageScore == nil || *res.AverageScore != 7.0 {
		t.Fatalf("2.8 * 2.5 should be 7.0, got %v", res.AverageScore)
	}
	if res.NormalizedScore == nil || *res.NormalizedScore != 7.0 {
		t.Fatalf("post-conversion multiplier is 1, got %v", res.NormalizedScore)
	}
	if res.TotalReviews == nil || *res.TotalReviews != 200 {
		t.Fatalf("total from metadata call: %v", res.TotalReviews)
	}
	if res.URL == nil || *res.URL != "https://bk/grand-plaza" {
		t.Fatalf("url: %v", res.URL)
	}
}

// ---- Airbnb ----

func TestAirbnb_TokenOverlapAcceptsAndRejects(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/search": map[string]any{"listings": []map[string]any{
			{"id": "ab-0", "name": "Downtown Loft"},
			{"id": "ab-1", "name": "Cozy Studio near Grand Plaza", "avg_rating": 4.8, "reviews_count": 64},
		}},
	}))
	defer ts.Close()

	a := upstream.NewAirbnb(ts.URL, "k")
	res := a.FetchReviews(context.Background(), domain.SearchQuery{Name: "The Grand Plaza Hotel"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", *res.Err)
	}
	if res.ChannelRef == nil || *res.ChannelRef != "ab-1" {
		t.Fatalf("should skip non-overlapping candidate, got %v", res.ChannelRef)
	}
	if *res.NormalizedScore != 9.6 {
		t.Fatalf("normalized: %v", *res.NormalizedScore)
	}
}

func TestAirbnb_NoOverlap_NotFoundInsteadOfFallback(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/search": map[string]any{"listings": []map[string]any{
			{"id": "ab-0", "name": "Downtown Loft", "avg_rating": 5.0},
		}},
	}))
	defer ts.Close()

	res := upstream.NewAirbnb(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "The Grand Plaza Hotel"})
	if res.Err == nil || !strings.Contains(*res.Err, "not found on airbnb") {
		t.Fatalf("want not-found, got %+v", res)
	}
	if res.Scored() {
		t.Fatal("rejection must not carry the unrelated listing's score")
	}
}

func TestAirbnb_FallbackToReviewsMean(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, map[string]any{
		"/search": map[string]any{"listings": []map[string]any{
			{"id": "ab-2", "name": "Grand Plaza Guest Suite"}, // no aggregate in search
		}},
		"/listings/ab-2/reviews": map[string]any{
			"reviews": []map[string]any{{"rating": 5}, {"rating": 4}, {"rating": 4.5}},
		},
	}))
	defer ts.Close()

	res := upstream.NewAirbnb(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "The Grand Plaza Hotel"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", *res.Err)
	}
	if res.AverageScore == nil || *res.AverageScore != 4.5 {
		t.Fatalf("fallback mean: %v", res.AverageScore)
	}
	if *res.NormalizedScore != 9.0 {
		t.Fatalf("normalized: %v", *res.NormalizedScore)
	}
	if res.TotalReviews == nil || *res.TotalReviews != 3 {
		t.Fatalf("total falls back to sample size: %v", res.TotalReviews)
	}
}

// ---- transport-level failures stay soft ----

func TestAdapters_NonJSONResponseIsSoftFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>rate limited</html>"))
	}))
	defer ts.Close()

	res := upstream.NewExpedia(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza"})
	if res.Err == nil {
		t.Fatal("expected error result for HTML body")
	}
	if res.Scored() {
		t.Fatal("soft failure must carry no score")
	}
}

func TestAdapters_ServerDownIsSoftFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	res := upstream.NewBooking(ts.URL, "k").FetchReviews(context.Background(), domain.SearchQuery{Name: "Grand Plaza"})
	if res.Err == nil {
		t.Fatal("expected error result when upstream is unreachable")
	}
}
