// Invoice Engine API: answers vendor questions about invoice line items
// over HTTP.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/finopsys/invoice-engine/internal/cache"
	"github.com/finopsys/invoice-engine/internal/config"
	"github.com/finopsys/invoice-engine/internal/engine"
	"github.com/finopsys/invoice-engine/internal/llm"
	"github.com/finopsys/invoice-engine/internal/observability"
	"github.com/finopsys/invoice-engine/internal/query"
	"github.com/finopsys/invoice-engine/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "invoice-engine-api",
	})

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	repo := storage.NewInvoiceRepository(db, cfg.Database.Driver, cfg.Database.Schema, logger)

	ctx := context.Background()
	if cfg.IsDevelopment() {
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := repo.SeedSampleData(ctx); err != nil {
			return err
		}
	}

	cacheClient, err := newCache(cfg, logger)
	if err != nil {
		return err
	}
	defer cacheClient.Close()

	var generator llm.SQLGenerator
	if cfg.LLM.Provider == "gemini" {
		generator = llm.NewGeminiGenerator(llm.GeminiConfig{
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			RowLimit: cfg.Engine.RowLimit,
		}, logger)
		logger.Info().Str("model", cfg.LLM.Model).Msg("gemini sql generation enabled")
	}

	analyzer := query.NewAnalyzer(logger, cfg.Engine.ExtractorCacheMax)
	svc := engine.NewService(logger, analyzer, generator, repo, cacheClient, engine.Config{
		RowLimit:     cfg.Engine.RowLimit,
		CacheAnswers: cfg.Engine.CacheAnswers,
		CacheTTL:     cfg.Cache.TTL,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(cfg, logger, svc, repo),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("db", cfg.Database.Driver).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	driver := cfg.Database.Driver
	if driver == "sqlite" {
		db, err := sql.Open("sqlite3", cfg.Database.SQLite.Path)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.Database.SQLite.MaxOpenConns)
		return db, nil
	}

	db, err := sql.Open("postgres", cfg.Database.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Database.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.Postgres.ConnMaxLifetime)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func newCache(cfg *config.Config, logger *observability.Logger) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("redis cache connected")
		return client, nil
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}
