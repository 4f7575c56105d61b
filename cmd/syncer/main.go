package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"homezy/internal/adapters/backend"
	"homezy/internal/adapters/observability"
	redisad "homezy/internal/adapters/redis"
	"homezy/internal/app"
	"homezy/internal/shared"
	mysqlrepo "homezy/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.BackendBase).
		Int("workers", cfg.Workers).
		Strs("categories", cfg.Categories).
		Int("users", len(cfg.SyncUserIDs)).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := backend.New(cfg.BackendBase, cfg.BackendKey, cfg.BackendRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	svc := app.NewSyncService(client, repo, repo, redisad.New(rc), redisad.NewCatalogFeed(rc, cfg.CatalogChannel))

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	// acquire before launching the goroutine; release inside it
	run := func(kind, key string, job func(context.Context, string) (int, error)) {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			n, err := job(ctx, key)
			if err != nil {
				log.Warn().Str(kind, key).Err(err).Msg("sync failed")
				return
			}
			log.Info().Str(kind, key).Int("records", n).Msg("sync ok")
		}()
	}

	for _, cat := range cfg.Categories {
		run("category", cat, svc.SyncCategory)
	}
	for _, uid := range cfg.SyncUserIDs {
		run("user", uid, svc.SyncUserBookings)
	}

	wg.Wait()
	log.Info().Msg("sync completed")
}
