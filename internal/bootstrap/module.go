package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"academictoken/internal/bootstrap/config"
	"academictoken/internal/bootstrap/database"
	"academictoken/internal/bootstrap/logging"
	"academictoken/internal/bootstrap/telemetry"
	cacheinfra "academictoken/internal/infrastructure/cache"
	contentinfra "academictoken/internal/infrastructure/content"
	"academictoken/internal/infrastructure/events"
	sqliterepo "academictoken/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "academictoken/internal/infrastructure/persistence/sqlite/uow"
	"academictoken/internal/ports"
	"academictoken/internal/usecase/academic"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAcademicRepository,
			fx.As(new(ports.AcademicRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewEngineStateRepository,
			fx.As(new(ports.EngineStateRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideContentStore),
	fx.Provide(provideEventSink),
	fx.Provide(provideAcademicService),
	fx.Invoke(registerTelemetry),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideContentStore(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.ContentStore, error) {
	store, err := contentinfra.Open(cfg.Content.Path, cfg.Content.OpenTimeout)
	if err != nil {
		return nil, err
	}
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
		"content store opened",
		slog.String("path", cfg.Content.Path),
	)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func provideEventSink(lc fx.Lifecycle, cfg config.Config) (ports.EventSink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Sink)) {
	case "", "log":
		return events.NewLogSink(), nil
	case "none":
		return events.NopSink{}, nil
	case "nats":
		sink, err := events.DialNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				sink.Close()
				return nil
			},
		})
		return sink, nil
	default:
		return nil, fmt.Errorf("unsupported events.sink %q", cfg.Events.Sink)
	}
}

type academicParams struct {
	fx.In

	Config  config.Config
	Repo    ports.AcademicRepository
	State   ports.EngineStateRepository
	UoW     ports.UnitOfWork
	Cache   ports.Cache
	Content ports.ContentStore
	Events  ports.EventSink
}

func provideAcademicService(p academicParams) *academic.Service {
	return academic.NewService(p.Repo, p.State, p.UoW, p.Cache, p.Content, p.Events, academic.Options{
		DegreeCacheTTL:  p.Config.Engine.DegreeCacheTTL,
		MaxContentBytes: p.Config.Content.MaxBytes,
	})
}

func registerTelemetry(lc fx.Lifecycle, ctx context.Context, cfg config.Config) error {
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}
