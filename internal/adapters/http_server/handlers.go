// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayscore/internal/app"
	"stayscore/internal/domain"
)

type Handlers struct {
	Fetch  *app.FetchService
	Query  *app.QueryService
	Themes *app.ThemeService
	Hotels domain.HotelStore
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/hotels", h.createHotel)
	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Delete("/v1/hotels/{id}", h.deleteHotel)

	s.mux.Post("/v1/hotels/{id}/fetch", h.fetchHotel)
	s.mux.Post("/v1/fetch", h.fetchMany)

	s.mux.Get("/v1/hotels/{id}/scores", h.getScores)
	s.mux.Get("/v1/hotels/{id}/snapshots", h.listSnapshots)

	s.mux.Post("/v1/hotels/{id}/themes", h.extractThemes)
	s.mux.Get("/v1/hotels/{id}/themes", h.getThemes)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func hotelID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string  `json:"name"`
		City *string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "name is required")
		return
	}
	id, err := h.Hotels.CreateHotel(r.Context(), domain.Hotel{Name: in.Name, City: in.City})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Hotels.ListHotels(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List failed", err.Error())
		return
	}
	type hotelOut struct {
		ID   int64   `json:"id"`
		Name string  `json:"name"`
		City *string `json:"city"`
	}
	out := make([]hotelOut, 0, len(hotels))
	for _, ht := range hotels {
		out = append(out, hotelOut{ID: ht.ID, Name: ht.Name, City: ht.City})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.Hotels.DeleteHotel(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Delete failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) fetchHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	force := r.URL.Query().Get("force") == "true"

	report, err := h.Fetch.FetchHotel(r.Context(), id, force)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	case errors.Is(err, domain.ErrNoChannels):
		writeProblem(w, http.StatusServiceUnavailable, "No channels configured", err.Error())
		return
	case err != nil:
		writeProblem(w, http.StatusInternalServerError, "Fetch failed", err.Error())
		return
	}
	// Per-channel failures ride inside the report; the operation itself is a 200.
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) fetchMany(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []int64 `json:"ids"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"ids\": [...]}")
			return
		}
	}
	ids := in.IDs
	if len(ids) == 0 {
		hotels, err := h.Hotels.ListHotels(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List failed", err.Error())
			return
		}
		for _, ht := range hotels {
			ids = append(ids, ht.ID)
		}
	}
	force := r.URL.Query().Get("force") == "true"
	summary := h.Fetch.FetchMany(r.Context(), ids, force)
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) getScores(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	sv, err := h.Query.GetScores(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}

	etag, body := calcETagAndBody(sv)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write scores body")
	}
}

func (h *Handlers) listSnapshots(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	q := domain.SnapshotQuery{HotelID: id, Limit: 500}
	if c := r.URL.Query().Get("channel"); c != "" {
		ch := domain.Channel(c)
		if !ch.Valid() {
			writeProblem(w, http.StatusBadRequest, "Invalid channel", "unknown channel "+c)
			return
		}
		q.Channel = &ch
	}
	if a := r.URL.Query().Get("after"); a != "" {
		t, err := time.Parse(time.RFC3339, a)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid after", "after must be RFC3339")
			return
		}
		q.After = &t
	}
	if b := r.URL.Query().Get("before"); b != "" {
		t, err := time.Parse(time.RFC3339, b)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid before", "before must be RFC3339")
			return
		}
		q.Before = &t
	}

	snaps, err := h.Query.History(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}
	type snapOut struct {
		ID              int64          `json:"id"`
		Channel         domain.Channel `json:"channel"`
		AverageScore    *float64       `json:"average_score"`
		NormalizedScore *float64       `json:"normalized_score"`
		TotalReviews    *int           `json:"total_reviews"`
		FetchedAt       time.Time      `json:"fetched_at"`
	}
	out := make([]snapOut, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapOut{
			ID: s.ID, Channel: s.Channel,
			AverageScore: s.AverageScore, NormalizedScore: s.NormalizedScore,
			TotalReviews: s.TotalReviews, FetchedAt: s.FetchedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) extractThemes(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	report, err := h.Themes.ExtractForHotel(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Theme extraction failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) getThemes(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	report, err := h.Themes.GetThemes(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "no themes extracted for this hotel")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
