// cmd/fetcher refreshes review scores for every stored hotel in one pass.
// Meant to run on a schedule; within the 24h cache window re-runs are cheap
// unless FETCH_FORCE=true.
package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"stayscore/internal/adapters/observability"
	redisad "stayscore/internal/adapters/redis"
	"stayscore/internal/adapters/upstream"
	"stayscore/internal/app"
	"stayscore/internal/domain"
	"stayscore/internal/shared"
	mysqlrepo "stayscore/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	force := os.Getenv("FETCH_FORCE") == "true"

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	adapters, available := buildAdapters(cfg)
	if available.Empty() {
		log.Fatal().Msg("no channel API keys configured, nothing to fetch")
	}

	fetch := app.NewFetchService(repo, repo, adapters, available, cache)

	hotels, err := repo.ListHotels(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list hotels failed")
	}
	ids := make([]int64, 0, len(hotels))
	for _, h := range hotels {
		ids = append(ids, h.ID)
	}

	log.Info().Int("hotels", len(ids)).Int("channels", len(available)).Bool("force", force).
		Msg("fetcher starting")

	summary := fetch.FetchMany(ctx, ids, force)

	log.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("fetcher completed")
	for _, f := range summary.Failures {
		log.Warn().Int64("hotel", f.HotelID).Str("error", f.Error).Msg("hotel fetch failed")
	}
}

func buildAdapters(cfg shared.Config) (map[domain.Channel]domain.ChannelAdapter, domain.ChannelSet) {
	adapters := make(map[domain.Channel]domain.ChannelAdapter, 5)
	available := make(domain.ChannelSet, 5)

	if cfg.Google.Configured() {
		adapters[domain.ChannelGoogle] = upstream.NewGoogle(cfg.Google.Base, cfg.Google.Key)
		available[domain.ChannelGoogle] = true
	}
	if cfg.Tripadvisor.Configured() {
		adapters[domain.ChannelTripadvisor] = upstream.NewTripadvisor(cfg.Tripadvisor.Base, cfg.Tripadvisor.Key)
		available[domain.ChannelTripadvisor] = true
	}
	if cfg.Expedia.Configured() {
		adapters[domain.ChannelExpedia] = upstream.NewExpedia(cfg.Expedia.Base, cfg.Expedia.Key)
		available[domain.ChannelExpedia] = true
	}
	if cfg.Booking.Configured() {
		adapters[domain.ChannelBooking] = upstream.NewBooking(cfg.Booking.Base, cfg.Booking.Key)
		available[domain.ChannelBooking] = true
	}
	if cfg.Airbnb.Configured() {
		adapters[domain.ChannelAirbnb] = upstream.NewAirbnb(cfg.Airbnb.Base, cfg.Airbnb.Key)
		available[domain.ChannelAirbnb] = true
	}
	return adapters, available
}
