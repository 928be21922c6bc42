package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ChannelEndpoint is one review platform's upstream base URL + API key.
// An empty key means the channel is not configured and synthetic
// "missing credentials" results are substituted for it.
type ChannelEndpoint struct {
	Base string
	Key  string
}

func (e ChannelEndpoint) Configured() bool { return e.Key != "" }

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	Google      ChannelEndpoint
	Tripadvisor ChannelEndpoint
	Expedia     ChannelEndpoint
	Booking     ChannelEndpoint
	Airbnb      ChannelEndpoint
	Themes      ChannelEndpoint

	CacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayscore?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		Google: ChannelEndpoint{
			Base: env("GOOGLE_BASE_URL", "https://places.googleapis.example.com/v1"),
			Key:  env("GOOGLE_API_KEY", ""),
		},
		Tripadvisor: ChannelEndpoint{
			Base: env("TRIPADVISOR_BASE_URL", "https://api.content.tripadvisor.example.com/v1"),
			Key:  env("TRIPADVISOR_API_KEY", ""),
		},
		Expedia: ChannelEndpoint{
			Base: env("EXPEDIA_BASE_URL", "https://hotels.api.expedia.example.com/v3"),
			Key:  env("EXPEDIA_API_KEY", ""),
		},
		Booking: ChannelEndpoint{
			Base: env("BOOKING_BASE_URL", "https://demand.api.booking.example.com/v3"),
			Key:  env("BOOKING_API_KEY", ""),
		},
		Airbnb: ChannelEndpoint{
			Base: env("AIRBNB_BASE_URL", "https://api.airbnb.example.com/v2"),
			Key:  env("AIRBNB_API_KEY", ""),
		},
		Themes: ChannelEndpoint{
			Base: env("THEMES_BASE_URL", ""),
			Key:  env("THEMES_API_KEY", ""),
		},
		CacheTTL: time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	c.RedisDB = atoi("REDIS_DB", 0)
	if !c.Google.Configured() && !c.Tripadvisor.Configured() && !c.Expedia.Configured() &&
		!c.Booking.Configured() && !c.Airbnb.Configured() {
		log.Warn().Msg("no channel API keys configured; fetches will be rejected")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
