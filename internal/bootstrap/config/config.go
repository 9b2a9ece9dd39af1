package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Content   ContentConfig   `mapstructure:"content"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Events    EventsConfig    `mapstructure:"events"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string       `mapstructure:"driver"`
	DSN    string       `mapstructure:"dsn"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Pool   PoolConfig   `mapstructure:"pool"`
}

type SQLiteConfig struct {
	WAL           bool `mapstructure:"wal"`
	BusyTimeoutMs int  `mapstructure:"busy_timeout_ms"`
	ForeignKeys   bool `mapstructure:"foreign_keys"`
}

type PoolConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ContentConfig locates the bbolt file backing the content cache.
type ContentConfig struct {
	Path        string        `mapstructure:"path"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
	MaxBytes    int           `mapstructure:"max_bytes"`
}

// EngineConfig seeds the engine state on init-db.
type EngineConfig struct {
	Owner                 string        `mapstructure:"owner"`
	Approvers             []string      `mapstructure:"approvers"`
	AutoApprovalThreshold int           `mapstructure:"auto_approval_threshold"`
	DegreeCacheTTL        time.Duration `mapstructure:"degree_cache_ttl"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type EventsConfig struct {
	Sink          string `mapstructure:"sink"`
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("content_path", cfg.Content.Path),
		slog.String("events_sink", cfg.Events.Sink),
	)

	return cfg, nil
}

// Validate rejects configs the engine cannot start with.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if strings.TrimSpace(cfg.Content.Path) == "" {
		return errors.New("content.path is required")
	}
	if t := cfg.Engine.AutoApprovalThreshold; t < 0 || t > 100 {
		return fmt.Errorf("engine.auto_approval_threshold must be within 0..100, got %d", t)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Sink)) {
	case "", "log", "none":
	case "nats":
		if strings.TrimSpace(cfg.Events.NATSURL) == "" {
			return errors.New("events.nats_url is required when events.sink is nats")
		}
	default:
		return fmt.Errorf("unsupported events.sink %q", cfg.Events.Sink)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "academictoken")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".academictoken/state/engine.sqlite")
	v.SetDefault("database.sqlite.wal", true)
	v.SetDefault("database.sqlite.busy_timeout_ms", 5000)
	v.SetDefault("database.sqlite.foreign_keys", true)
	v.SetDefault("content.path", ".academictoken/state/content.bolt")
	v.SetDefault("content.open_timeout", time.Second)
	v.SetDefault("content.max_bytes", 1<<20)
	v.SetDefault("engine.owner", "registrar")
	v.SetDefault("engine.auto_approval_threshold", 85)
	v.SetDefault("engine.degree_cache_ttl", 24*time.Hour)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "academictoken")
	v.SetDefault("events.sink", "log")
	v.SetDefault("events.subject_prefix", "academictoken")
	v.SetDefault("http.addr", "127.0.0.1:8380")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
}
