package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stayscore/internal/adapters/observability"
	"stayscore/internal/domain"
	"stayscore/internal/scoring"
)

// cacheWindow is how long a scored snapshot counts as fresh, and
// freshChannelMin how many channels must be fresh before a non-forced fetch
// short-circuits without touching any upstream.
const (
	cacheWindow     = 24 * time.Hour
	freshChannelMin = 3
)

type FetchService struct {
	hotels    domain.HotelStore
	snapshots domain.SnapshotStore
	adapters  map[domain.Channel]domain.ChannelAdapter
	available domain.ChannelSet
	cache     domain.Cache

	batchDelay time.Duration
	now        func() time.Time
}

func NewFetchService(
	hotels domain.HotelStore,
	snapshots domain.SnapshotStore,
	adapters map[domain.Channel]domain.ChannelAdapter,
	available domain.ChannelSet,
	cache domain.Cache,
) *FetchService {
	return &FetchService{
		hotels:     hotels,
		snapshots:  snapshots,
		adapters:   adapters,
		available:  available,
		cache:      cache,
		batchDelay: time.Second,
		now:        time.Now,
	}
}

// WithBatchDelay overrides the pause between scheduler batches.
func (s *FetchService) WithBatchDelay(d time.Duration) *FetchService {
	s.batchDelay = d
	return s
}

// WithClock overrides the snapshot/cache-freshness clock.
func (s *FetchService) WithClock(now func() time.Time) *FetchService {
	s.now = now
	return s
}

// FetchReport is the caller-visible outcome of one hotel fetch. Individual
// channel failures live inside Results; the operation as a whole only fails
// for a missing hotel, zero configured channels, or an internal fault.
type FetchReport struct {
	HotelID   int64                `json:"hotel_id"`
	HotelName string               `json:"hotel_name"`
	Cached    bool                 `json:"cached"`
	Results   []domain.FetchResult `json:"results"`
	Composite *float64             `json:"composite"`
}

// FetchHotel runs the full pipeline for one hotel: cache check, sequential
// Google phase (authoritative name resolution), parallel phase for the other
// four channels, then per-channel snapshot persistence. No retries here;
// callers retry by re-invoking with force=true.
func (s *FetchService) FetchHotel(ctx context.Context, hotelID int64, force bool) (FetchReport, error) {
	if s.available.Empty() {
		return FetchReport{}, domain.ErrNoChannels
	}

	hotel, err := s.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return FetchReport{}, err
	}

	if !force {
		if report, ok := s.cachedReport(ctx, hotel); ok {
			return report, nil
		}
	}

	// Google phase, sequential: its resolved name feeds every later search,
	// but a Google failure must never block the remaining channels.
	name := hotel.Name
	googleRes := s.runAdapter(ctx, domain.ChannelGoogle, domain.SearchQuery{
		Name: name,
		City: hotel.City,
		Hint: hotel.Link(domain.ChannelGoogle).Ref,
	})
	if googleRes.ResolvedName != nil && *googleRes.ResolvedName != "" && *googleRes.ResolvedName != hotel.Name {
		if err := s.hotels.UpdateName(ctx, hotel.ID, *googleRes.ResolvedName); err != nil {
			log.Warn().Int64("hotel", hotel.ID).Err(err).Msg("persist resolved name failed")
		}
		name = *googleRes.ResolvedName
	}

	// Parallel phase. Each task writes its own slot and never returns an
	// error: the group is purely a join barrier, so one channel's failure
	// cannot abort its siblings.
	parallel := make([]domain.FetchResult, len(domain.ParallelChannels))
	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range domain.ParallelChannels {
		i, ch := i, ch
		g.Go(func() error {
			parallel[i] = s.runAdapter(gctx, ch, domain.SearchQuery{
				Name: name,
				City: hotel.City,
				Hint: hotel.Link(ch).Ref,
			})
			return nil
		})
	}
	_ = g.Wait()

	results := append([]domain.FetchResult{googleRes}, parallel...)
	s.persistResults(ctx, hotel, results)

	if s.cache != nil {
		_ = s.cache.Del(ctx, scoresKey(hotel.ID))
	}

	report := FetchReport{HotelID: hotel.ID, HotelName: name, Results: results}
	if latest, err := s.snapshots.LatestSnapshots(ctx, hotel.ID); err == nil {
		report.Composite = scoring.Composite(latest)
	} else {
		log.Warn().Int64("hotel", hotel.ID).Err(err).Msg("composite after fetch failed")
	}
	return report, nil
}

// runAdapter wraps one channel call: synthetic result for unconfigured
// channels, panic containment for adapter faults, outcome metrics.
func (s *FetchService) runAdapter(ctx context.Context, ch domain.Channel, q domain.SearchQuery) (res domain.FetchResult) {
	if !s.available.Has(ch) {
		res = domain.NotConfiguredResult(ch)
		observability.ObserveFetch(string(ch), "not_configured")
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res = domain.ErrorResult(ch, fmt.Sprintf("%s adapter panic: %v", ch, r))
			observability.ObserveFetch(string(ch), "error")
		}
	}()
	res = s.adapters[ch].FetchReviews(ctx, q)
	switch {
	case res.Scored():
		observability.ObserveFetch(string(ch), "scored")
	case res.Err != nil && *res.Err == "not found on "+string(ch):
		observability.ObserveFetch(string(ch), "not_found")
	default:
		observability.ObserveFetch(string(ch), "error")
	}
	return res
}

// persistResults appends one snapshot per attempted channel and refreshes the
// hotel's channel links. Score-less "not configured" results are skipped so
// configuration noise never pollutes history; a failed write is logged and
// the remaining channels still persist.
func (s *FetchService) persistResults(ctx context.Context, hotel domain.Hotel, results []domain.FetchResult) {
	now := s.now()
	for _, r := range results {
		if r.ChannelRef != nil || r.URL != nil {
			link := domain.ChannelLink{Ref: r.ChannelRef, URL: r.URL}
			if err := s.hotels.UpdateLink(ctx, hotel.ID, r.Channel, link); err != nil {
				log.Warn().Int64("hotel", hotel.ID).Str("channel", string(r.Channel)).Err(err).
					Msg("update channel link failed")
			}
		}
		if r.NotConfigured() && !r.Scored() {
			continue
		}
		snap := domain.ReviewSnapshot{
			HotelID:         hotel.ID,
			Channel:         r.Channel,
			AverageScore:    r.AverageScore,
			NormalizedScore: r.NormalizedScore,
			TotalReviews:    r.TotalReviews,
			FetchedAt:       now,
			Raw:             r.Raw,
		}
		if _, err := s.snapshots.InsertSnapshot(ctx, snap); err != nil {
			log.Error().Int64("hotel", hotel.ID).Str("channel", string(r.Channel)).Err(err).
				Msg("insert snapshot failed")
		}
	}
}

// cachedReport short-circuits when enough channels already have a fresh scored
// snapshot. The report is rebuilt from those snapshots; zero adapters run.
func (s *FetchService) cachedReport(ctx context.Context, hotel domain.Hotel) (FetchReport, bool) {
	latest, err := s.snapshots.LatestSnapshots(ctx, hotel.ID)
	if err != nil {
		log.Warn().Int64("hotel", hotel.ID).Err(err).Msg("cache check failed, fetching")
		return FetchReport{}, false
	}
	cutoff := s.now().Add(-cacheWindow)
	fresh := 0
	for _, snap := range latest {
		if snap.Scored() && snap.FetchedAt.After(cutoff) {
			fresh++
		}
	}
	if fresh < freshChannelMin {
		return FetchReport{}, false
	}

	results := make([]domain.FetchResult, 0, len(domain.Channels))
	for _, ch := range domain.Channels {
		snap, ok := latest[ch]
		if !ok {
			continue
		}
		link := hotel.Link(ch)
		results = append(results, domain.FetchResult{
			Channel:         ch,
			AverageScore:    snap.AverageScore,
			NormalizedScore: snap.NormalizedScore,
			TotalReviews:    snap.TotalReviews,
			ChannelRef:      link.Ref,
			URL:             link.URL,
		})
		observability.ObserveFetch(string(ch), "cached")
	}
	return FetchReport{
		HotelID:   hotel.ID,
		HotelName: hotel.Name,
		Cached:    true,
		Results:   results,
		Composite: scoring.Composite(latest),
	}, true
}

func scoresKey(hotelID int64) string { return fmt.Sprintf("scores:%d", hotelID) }
