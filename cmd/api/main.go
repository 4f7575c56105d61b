package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "homezy/internal/adapters/http_server"
	"homezy/internal/adapters/observability"
	redisad "homezy/internal/adapters/redis"
	"homezy/internal/app"
	"homezy/internal/domain"
	"homezy/internal/live"
	"homezy/internal/shared"
	mysqlrepo "homezy/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	if cfg.MetricsAddr != "" {
		observability.Serve(cfg.MetricsAddr, reg)
	}

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	defer db.Close()
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	cache := redisad.New(rc)
	feed := redisad.NewCatalogFeed(rc, cfg.CatalogChannel)

	browse := app.NewBrowseService(repo, repo, repo, cache, cfg.CacheTTL)

	// keep an in-memory catalog that follows change notifications
	snapshot := &live.Latest[[]domain.Listing]{}
	browse.UseSnapshot(snapshot)
	watcher := &live.Watcher[string, []domain.Listing]{
		Stream:   feed,
		Compute:  browse.LoadSnapshot,
		Dst:      snapshot,
		Retry:    2 * time.Second,
		Resync:   true,
		OnResult: func(_ uint64, applied bool) { observability.ObserveSnapshot(applied) },
	}
	go watcher.Run(ctx)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Browse:   browse,
		Listings: app.NewListingService(repo, cache, feed),
		Bookings: app.NewBookingService(repo, repo, repo),
		Messages: app.NewMessageService(repo),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
