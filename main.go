package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakshee44566/CareerHub/internal/config"
	"github.com/sakshee44566/CareerHub/internal/db"
	"github.com/sakshee44566/CareerHub/internal/handlers"
	"github.com/sakshee44566/CareerHub/internal/notify"
	"github.com/sakshee44566/CareerHub/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx := context.Background()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("storage (%s) init failed: %v", cfg.StorageDriver, err)
	}
	defer closeBackend()
	store := db.NewStore(backend)

	var opts []session.Option
	if cfg.SessionSigningKey != "" {
		minter, err := session.NewJWTMinter([]byte(cfg.SessionSigningKey))
		if err != nil {
			log.Fatalf("session signing key: %v", err)
		}
		opts = append(opts, session.WithMinter(minter))
	}
	sessions, err := session.New(cfg.AdminUser, cfg.AdminPass, opts...)
	if err != nil {
		log.Fatalf("session authority: %v", err)
	}

	sweeper := session.NewSweeper(sessions, cfg.SessionSweep)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("session sweep: %v", err)
	}

	transport, closeTransport, err := openNotifier(ctx, cfg)
	if err != nil {
		log.Fatalf("notifier (%s) init failed: %v", cfg.Notifier, err)
	}
	defer closeTransport()
	dispatcher := notify.NewDispatcher(transport, 0, notify.DefaultTimeout)

	router := handlers.NewRouter(handlers.Deps{
		Store:              store,
		Sessions:           sessions,
		Relay:              dispatcher,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		Production:         cfg.Production(),
	})
	defer router.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("listening",
			"port", cfg.Port,
			"env", cfg.Env,
			"storage", cfg.StorageDriver,
			"notifier", cfg.Notifier,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Error("notification queue not drained", "err", err)
	}
	sweeper.Stop()
}

func openBackend(ctx context.Context, cfg config.Config) (db.Backend, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		b, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	case config.StoragePostgres:
		b, err := db.NewPostgresBackend(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	default:
		b := db.NewFileBackend(cfg.DataFile)
		if err := b.Init(); err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil
	}
}

func openNotifier(ctx context.Context, cfg config.Config) (notify.Notifier, func(), error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Provider: cfg.SMTPProvider,
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.EmailFrom,
			To:       cfg.EmailTo,
		})
		if err != nil {
			return nil, nil, err
		}
		return n, func() {}, nil
	case config.NotifierRedis:
		n, err := notify.NewRedisNotifier(ctx, cfg.RedisURL, cfg.NotifyChannel)
		if err != nil {
			return nil, nil, err
		}
		return n, func() { _ = n.Close() }, nil
	default:
		return notify.LogNotifier{}, func() {}, nil
	}
}
