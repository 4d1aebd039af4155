package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BackendConfig struct {
	BaseURL          string
	Timeout          time.Duration
	PlaceholderImage string
}

type SessionConfig struct {
	CookieName    string
	Namespace     string
	TTL           time.Duration
	CookieSecure  bool
	SigningSecret string
	InFlightTTL   time.Duration
	ListingsTTL   time.Duration
}

type LoggingConfig struct {
	Level string
}

type JobsConfig struct {
	HealthCheck string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Redis       RedisConfig
	Backend     BackendConfig
	Session     SessionConfig
	Jobs        JobsConfig
	Logging     LoggingConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SKY24")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Session.SigningSecret == "" {
		return nil, fmt.Errorf("session.signingsecret is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	// multipart listing uploads can be slow to forward
	v.SetDefault("http.writetimeout", "60s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("backend.baseurl", "https://api.sky24.in")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.placeholderimage", "https://via.placeholder.com/600x400?text=Property")

	v.SetDefault("session.cookiename", "sky24_sid")
	v.SetDefault("session.namespace", "sky24")
	v.SetDefault("session.ttl", "720h") // 30 days
	v.SetDefault("session.cookiesecure", false)
	v.SetDefault("session.inflightttl", "2m")
	v.SetDefault("session.listingsttl", "10m")
	v.SetDefault("session.signingsecret", "")

	v.SetDefault("jobs.healthcheck", "*/30 * * * * *")

	v.SetDefault("logging.level", "")
}
