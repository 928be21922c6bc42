package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// batchSize bounds how many hotels fetch concurrently; the inter-batch delay
// keeps the upstream platforms from rate-limiting us. Batch N+1 never starts
// before every fetch in batch N has settled.
const batchSize = 5

type BatchFailure struct {
	HotelID int64  `json:"hotel_id"`
	Error   string `json:"error"`
}

type BatchSummary struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
	Reports   []FetchReport  `json:"reports"`
}

// FetchMany runs the pipeline over an ordered hotel list in fixed-size
// batches. Every hotel in a batch is awaited, success or failure, before the
// next batch starts; one hotel's error never short-circuits its batch. For
// transient upstream failures the caller should re-run with force=true — no
// retry is built in.
func (s *FetchService) FetchMany(ctx context.Context, hotelIDs []int64, force bool) BatchSummary {
	summary := BatchSummary{Total: len(hotelIDs)}

	for start := 0; start < len(hotelIDs); start += batchSize {
		end := start + batchSize
		if end > len(hotelIDs) {
			end = len(hotelIDs)
		}
		batch := hotelIDs[start:end]

		reports := make([]FetchReport, len(batch))
		errs := make([]error, len(batch))
		var wg sync.WaitGroup
		for i, id := range batch {
			i, id := i, id
			wg.Add(1)
			go func() {
				defer wg.Done()
				reports[i], errs[i] = s.FetchHotel(ctx, id, force)
			}()
		}
		wg.Wait()

		for i, id := range batch {
			if errs[i] != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, BatchFailure{HotelID: id, Error: errs[i].Error()})
				log.Warn().Int64("hotel", id).Err(errs[i]).Msg("batch fetch failed")
				continue
			}
			summary.Succeeded++
			summary.Reports = append(summary.Reports, reports[i])
		}

		if end < len(hotelIDs) {
			select {
			case <-ctx.Done():
				log.Warn().Err(ctx.Err()).Msg("batch run canceled between batches")
				return summary
			case <-time.After(s.batchDelay):
			}
		}
	}
	return summary
}
