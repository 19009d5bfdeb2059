// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/esb-backend/internal/billing"
	"github.com/carterperez-dev/esb-backend/internal/config"
	"github.com/carterperez-dev/esb-backend/internal/core"
	"github.com/carterperez-dev/esb-backend/internal/schema"
)

const seedTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	reset := flag.Bool("reset", false, "drop all tables before migrating")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations without loading sample rows")
	flag.Parse()

	if err := run(*configPath, *reset, *migrateOnly); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, reset, migrateOnly bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := schema.Migrate(cfg.Database.URL, schema.Options{
		Reset:  reset,
		Logger: logger,
	}); err != nil {
		return err
	}

	if migrateOnly {
		if reset {
			return flushBillCache(ctx, cfg, logger)
		}
		return nil
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()

	data := schema.SampleData()
	if err := schema.Seed(ctx, db.DB, data); err != nil {
		return err
	}

	logger.Info("sample data loaded",
		"persons", len(data.Persons),
		"consumers", len(data.Consumers),
		"bills", len(data.Bills),
		"complaints", len(data.Complaints),
	)

	return flushBillCache(ctx, cfg, logger)
}

// flushBillCache drops cached bills that may describe rows the reset or
// seed just replaced.
func flushBillCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Cache.Enabled {
		return nil
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}()

	deleted, err := billing.NewCache(redis.Client, cfg.Cache.BillTTL).Flush(ctx)
	if err != nil {
		return err
	}

	logger.Info("bill cache flushed", "keys", deleted)
	return nil
}
