package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port string }
type DBCfg struct{ DSN string }
type RedisCfg struct{ Addr string }

type AuthCfg struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
}

type CacheCfg struct {
	// ListTTL bounds how long cached list pages live.
	ListTTL time.Duration
}

type JobsCfg struct {
	PollInterval time.Duration
	Batch        int
}

type Cfg struct {
	App   AppCfg
	DB    DBCfg
	Redis RedisCfg
	Auth  AuthCfg
	Cache CacheCfg
	Jobs  JobsCfg
}

func Load() Cfg {
	// 1) Load .env into process env (if file exists)
	_ = godotenv.Load()

	// 2) Read from env via viper
	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("LIST_CACHE_TTL", "60s")
	viper.SetDefault("JOBS_POLL_INTERVAL", "2s")
	viper.SetDefault("JOBS_BATCH", 50)

	cfg := Cfg{
		App: AppCfg{
			Env:  viper.GetString("APP_ENV"),
			Port: viper.GetString("APP_PORT"),
		},
		DB:    DBCfg{DSN: viper.GetString("DB_DSN")},
		Redis: RedisCfg{Addr: viper.GetString("REDIS_ADDR")},
		Auth: AuthCfg{
			JWTSecret:  []byte(strings.TrimSpace(viper.GetString("JWT_SECRET"))),
			TokenTTL:   viper.GetDuration("TOKEN_TTL"),
			BcryptCost: viper.GetInt("BCRYPT_COST"),
		},
		Cache: CacheCfg{ListTTL: viper.GetDuration("LIST_CACHE_TTL")},
		Jobs: JobsCfg{
			PollInterval: viper.GetDuration("JOBS_POLL_INTERVAL"),
			Batch:        viper.GetInt("JOBS_BATCH"),
		},
	}

	// 3) Fail fast on required settings
	if cfg.DB.DSN == "" {
		log.Fatal().Msg("DB_DSN is required")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		log.Fatal().Msg("JWT_SECRET must be at least 32 bytes")
	}

	return cfg
}
