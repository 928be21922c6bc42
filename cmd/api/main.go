package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "stayscore/internal/adapters/http_server"
	"stayscore/internal/adapters/observability"
	redisad "stayscore/internal/adapters/redis"
	"stayscore/internal/adapters/themes"
	"stayscore/internal/adapters/upstream"
	"stayscore/internal/app"
	"stayscore/internal/domain"
	"stayscore/internal/shared"
	mysqlrepo "stayscore/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	adapters, available := buildAdapters(cfg)
	log.Info().Int("channels", len(available)).Msg("channel adapters ready")

	fetch := app.NewFetchService(repo, repo, adapters, available, cache)
	query := app.NewQueryService(repo, repo, cache, cfg.CacheTTL)

	var extractor domain.ThemeExtractor
	if cfg.Themes.Configured() {
		extractor = themes.New(cfg.Themes.Base, cfg.Themes.Key)
	}
	themeSvc := app.NewThemeService(repo, repo, extractor, repo)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Fetch: fetch, Query: query, Themes: themeSvc, Hotels: repo})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// buildAdapters wires one adapter per configured channel and the matching
// capability set, computed once here and never re-checked per call.
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
