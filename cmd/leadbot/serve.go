package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/leadbothq/leadbot/internal/ai"
	"github.com/leadbothq/leadbot/internal/bot"
	"github.com/leadbothq/leadbot/internal/config"
	"github.com/leadbothq/leadbot/internal/db"
	"github.com/leadbothq/leadbot/internal/dedupe"
	"github.com/leadbothq/leadbot/internal/handlers"
	"github.com/leadbothq/leadbot/internal/lead"
	"github.com/leadbothq/leadbot/internal/logger"
	"github.com/leadbothq/leadbot/internal/pipeline"
	"github.com/leadbothq/leadbot/internal/prune"
	"github.com/leadbothq/leadbot/internal/server"
	"github.com/leadbothq/leadbot/internal/session"
	"github.com/leadbothq/leadbot/internal/tenant"
	"github.com/leadbothq/leadbot/internal/whatsapp"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBPool,
			provideSessionStore,
			provideTenantRegistry,
			provideDedupeGuard,
			provideLeadMachine,
			provideAIClient,
			provideDispatcher,
			providePipeline,
			provideBotService,
			providePruneService,
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(handlers.NewPingHandler),
			fx.Annotate(provideServer, fx.ParamTags("", `group:"server_handlers"`)),
		),
		fx.Invoke(
			runMigrations,
			startPruner,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { pool.Close(); return nil }})
	return pool, nil
}

func provideSessionStore(log *slog.Logger, pool *pgxpool.Pool) *session.DBStore {
	return session.NewDBStore(log, pool)
}

func provideTenantRegistry(cfg config.Config) (*tenant.Registry, error) {
	return tenant.LoadRegistry(cfg.Tenants.Path)
}

func provideDedupeGuard(cfg config.Config) (*dedupe.Guard, error) {
	window, err := time.ParseDuration(cfg.Dedupe.Window)
	if err != nil {
		return nil, fmt.Errorf("dedupe window: %w", err)
	}
	return dedupe.NewGuard(cfg.Dedupe.Capacity, window), nil
}

func provideLeadMachine(log *slog.Logger, store *session.DBStore) *lead.Machine {
	return lead.NewMachine(log, store)
}

func provideAIClient(log *slog.Logger, cfg config.Config) *ai.Client {
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	return ai.NewClient(log, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, timeout)
}

func provideDispatcher(log *slog.Logger, cfg config.Config) *whatsapp.Dispatcher {
	timeout := time.Duration(cfg.WhatsApp.TimeoutSeconds) * time.Second
	return whatsapp.NewDispatcher(log, cfg.WhatsApp.BaseURL, cfg.WhatsApp.Token, timeout)
}

func providePipeline(log *slog.Logger, store *session.DBStore, machine *lead.Machine, aiClient *ai.Client) *pipeline.Pipeline {
	return pipeline.New(log, store, machine, aiClient)
}

func provideBotService(log *slog.Logger, registry *tenant.Registry, guard *dedupe.Guard, pipe *pipeline.Pipeline, dispatcher *whatsapp.Dispatcher) *bot.Service {
	return bot.NewService(log, registry, guard, pipe, dispatcher)
}

func providePruneService(log *slog.Logger, cfg config.Config, store *session.DBStore) (*prune.Service, error) {
	idleFor, err := time.ParseDuration(cfg.Prune.IdleFor)
	if err != nil {
		return nil, fmt.Errorf("prune idle_for: %w", err)
	}
	return prune.NewService(log, store, idleFor), nil
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, svc *bot.Service) *whatsapp.WebhookHandler {
	return whatsapp.NewWebhookHandler(log, cfg.WhatsApp.VerifyToken, svc)
}

func provideServer(cfg config.Config, hs []server.Handler) *server.Server {
	return server.New(cfg.Server.Addr, hs)
}

func runMigrations(logger *slog.Logger, cfg config.Config, _ *pgxpool.Pool) error {
	if err := db.Migrate(cfg.Postgres); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func startPruner(lc fx.Lifecycle, cfg config.Config, pruner *prune.Service) {
	if !cfg.Prune.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pruner.Start(cfg.Prune.Schedule)
		},
		OnStop: func(ctx context.Context) error {
			pruner.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("webhook listening", slog.String("addr", cfg.Server.Addr))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
