package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruit/tracker/app/internal/cache"
	"recruit/tracker/app/internal/config"
	"recruit/tracker/app/internal/logger"
	"recruit/tracker/app/internal/notify"
	"recruit/tracker/app/internal/ratelimit"
	"recruit/tracker/app/internal/repository"
	"recruit/tracker/app/internal/service"
	"recruit/tracker/app/internal/transport/httpapi"
	"recruit/tracker/app/internal/transport/httpapi/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	log := logger.New(cfg.Development())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := repository.Open(ctx, repository.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = cache.NewRedis(ctx, cfg.RedisAddr, 3*time.Second); err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		log.Info("redis disabled: no cache, idempotency or dedupe")
	}

	var notifier service.Notifier = service.NopNotifier{}
	var tg *notify.Telegram
	if cfg.TelegramToken != "" {
		if tg, err = notify.NewTelegram(cfg.TelegramToken, cfg.NotifyTimeout, log); err != nil {
			return err
		}
		notifier = tg
	} else {
		log.Info("telegram disabled: notifications off")
	}

	env := service.NewEnv(db, log, notifier)
	users := service.NewUsersService(env, cfg.DirectorID, cfg.AutoAssignDirector)
	if err := users.EnsureDirector(ctx); err != nil {
		return err
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateLimit, cfg.RateWindow, cfg.RateMaxKeys)
	if rdb != nil {
		limiter = ratelimit.NewRedis(rdb, cfg.RateLimit, cfg.RateWindow, log)
	}

	r := chi.NewRouter()
	httpapi.Mount(r, httpapi.Deps{
		API: &handlers.API{
			Pipeline:  service.NewPipelineService(env),
			Scheduler: service.NewSchedulerService(env),
			Queries:   service.NewQueryService(env),
			Counts:    service.NewCountsService(env, rdb, cfg.CountsCacheTTL),
			Users:     users,
			Log:       log,
		},
		Limiter:        limiter,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL,
		DedupeTTL:      cfg.DedupeTTL,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listen", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if tg != nil {
			err = errors.Join(err, tg.Close(shutdownCtx))
		}
		return err
	})
	return g.Wait()
}
