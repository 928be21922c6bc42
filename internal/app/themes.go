package app

import (
	"context"
	"fmt"

	"stayscore/internal/domain"
)

type ThemeService struct {
	hotels    domain.HotelStore
	snapshots domain.SnapshotStore
	extractor domain.ThemeExtractor
	store     domain.ThemeStore
}

func NewThemeService(h domain.HotelStore, s domain.SnapshotStore, e domain.ThemeExtractor, st domain.ThemeStore) *ThemeService {
	return &ThemeService{hotels: h, snapshots: s, extractor: e, store: st}
}

// ExtractForHotel feeds the opaque theme-extraction collaborator a score
// summary built from the latest snapshots and persists whatever comes back.
// The pipeline never interprets the report.
func (s *ThemeService) ExtractForHotel(ctx context.Context, hotelID int64) (domain.ThemeReport, error) {
	if s.extractor == nil {
		return domain.ThemeReport{}, fmt.Errorf("theme extraction service not configured")
	}
	hotel, err := s.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.ThemeReport{}, err
	}
	latest, err := s.snapshots.LatestSnapshots(ctx, hotelID)
	if err != nil {
		return domain.ThemeReport{}, err
	}

	req := domain.ThemeRequest{}
	for _, ch := range domain.Channels {
		snap, ok := latest[ch]
		if !ok || snap.NormalizedScore == nil {
			continue
		}
		line := fmt.Sprintf("%s: %s rated %.1f/10", hotel.Name, ch, *snap.NormalizedScore)
		if snap.TotalReviews != nil {
			line = fmt.Sprintf("%s across %d reviews", line, *snap.TotalReviews)
		}
		req.ScoreSummary = append(req.ScoreSummary, line)
	}
	if len(req.ScoreSummary) == 0 {
		return domain.ThemeReport{}, fmt.Errorf("hotel %d has no scored snapshots yet", hotelID)
	}

	report, err := s.extractor.Extract(ctx, req)
	if err != nil {
		return domain.ThemeReport{}, err
	}
	if err := s.store.SaveThemes(ctx, hotelID, report); err != nil {
		return domain.ThemeReport{}, err
	}
	return report, nil
}

func (s *ThemeService) GetThemes(ctx context.Context, hotelID int64) (domain.ThemeReport, error) {
	return s.store.GetThemes(ctx, hotelID)
}
