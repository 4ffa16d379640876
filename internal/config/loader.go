package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/snowch/vast-sp-console/pkg/constants"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// Load reads configuration from config.yaml (working directory or
// /etc/vast-sp-console/) with VAST_CONSOLE_* environment overrides, applies
// defaults, and validates. A missing config file is fine; a bad value is a
// startup failure.
func Load() (*Config, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch re-reads the config file on change and applies the log level, the
// only setting that is safe to adjust in a running process. Everything else
// keeps its startup value until restart.
func Watch(log logger.Logger) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return // nothing to watch
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		log.SetLevel(level)
		log.Info(context.Background(), "config file changed, log level applied",
			logger.String("file", e.Name),
			logger.String("level", level),
		)
	})
	v.WatchConfig()
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("environment", constants.EnvDevelopment)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("auth.token_lifetime", constants.DefaultTokenLifetime)
	v.SetDefault("auth.skip_tls_verify", true)
	v.SetDefault("vastdb.region", "africa-east-1")
	v.SetDefault("vastdb.verify_ssl", false)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.max_calls", constants.DefaultRateLimitMaxCalls)
	v.SetDefault("rate_limit.window", int(constants.DefaultRateLimitWindow.Seconds()))
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/vast-sp-console/")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VAST_CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}
