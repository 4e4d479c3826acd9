package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/costbook/internal/book"
	"github.com/Spok95/costbook/internal/config"
	"github.com/Spok95/costbook/internal/infra/db"
	httpx "github.com/Spok95/costbook/internal/infra/http"
	"github.com/Spok95/costbook/internal/infra/logger"
	"github.com/Spok95/costbook/internal/infra/metrics"
	"github.com/Spok95/costbook/internal/infra/money"
	"github.com/Spok95/costbook/internal/infra/notify"
	"github.com/Spok95/costbook/internal/infra/store"
)

// openStore выбирает хранилище по storage.driver. cleanup закрывает соединения.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("memory storage: data is lost on restart")
		return store.NewMemory(), func() {}, nil
	case "postgres":
		if err := db.Migrate(cfg.Postgres.DSN, log); err != nil {
			return nil, nil, err
		}
		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("db connected")
		return db.NewKVStore(pool, cfg.Storage.KeyPrefix), pool.Close, nil
	case "redis":
		r, err := store.NewRedis(ctx, store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Storage.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis connected", "addr", cfg.Redis.Addr)
		return r, func() { _ = r.Close() }, nil
	default:
		f, err := store.NewFile(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}

func main() {
	configPath := flag.String("config", "config/example.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("storage open failed", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	opts := []book.Option{
		book.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, book.WithMetrics(metrics.New(prometheus.DefaultRegisterer)))
	}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
		if err != nil {
			log.Error("telegram init failed, notifications disabled", "err", err)
		} else {
			opts = append(opts, book.WithNotifier(tg))
			log.Info("shortage notifications enabled", "chat_id", cfg.Telegram.AdminChatID)
		}
	}

	b, err := book.Open(ctx, st, log, opts...)
	if err != nil {
		log.Error("book load failed", "err", err)
		closeStore()
		os.Exit(1)
	}

	fm, err := money.New(cfg.Money.Locale, cfg.Money.Currency)
	if err != nil {
		log.Error("money formatter", "err", err)
		closeStore()
		os.Exit(1)
	}

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, httpx.NewAPI(b, fm, log))
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr, "storage", cfg.Storage.Driver)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
