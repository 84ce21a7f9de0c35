package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayhub/internal/adapters/observability"
	"stayhub/internal/app"
	"stayhub/internal/shared"
	mysqlrepo "stayhub/internal/storage/mysql"
)

// Expires bookings that sat in WAITING_PAYMENT longer than the configured
// TTL. Meant to run on a schedule (cron or similar).
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Dur("ttl", cfg.BookingTTL).
		Int("workers", cfg.SweepWorkers).
		Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	// expiry only flips statuses; no gateway and no gateway credentials needed
	svc := app.NewBookingService(repo, repo, nil)

	stale, err := svc.ListStale(ctx, cfg.BookingTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("list stale bookings failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.SweepWorkers))
	var wg sync.WaitGroup

	for _, b := range stale {
		b := b

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := svc.Expire(ctx, b.ID); err != nil {
				log.Warn().Str("code", b.Code).Err(err).Msg("expire failed")
				return
			}
			log.Info().Str("code", b.Code).Msg("booking expired")
		}()
	}

	wg.Wait()
	log.Info().Int("count", len(stale)).Msg("sweep completed")
}
