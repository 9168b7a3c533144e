package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/llm"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/orchestrator"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/repo"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
)

// App is the wired engine plus the resources it owns.
type App struct {
	Engine *orchestrator.Engine
	// MemorySessions is set when sessions live in process memory and need sweeping.
	MemorySessions *repo.MemorySessionStore

	closers []func() error
}

// Close releases stores and clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logx.Warn().Err(err).Msg("close failed")
		}
	}
}

func buildApp(ctx context.Context, cfg *AppConfig) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	var rdb *redis.Client
	redisClient := func() (*redis.Client, error) {
		if rdb != nil {
			return rdb, nil
		}
		client, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialise Redis client: %w", err)
		}
		rdb = client
		app.closers = append(app.closers, client.Close)
		logx.Info().Msg("Connected to Redis successfully")
		return rdb, nil
	}

	sessions, err := buildSessionStore(cfg, app, redisClient)
	if err != nil {
		return nil, err
	}
	turns, profiles, err := buildTurnStores(ctx, cfg, app, redisClient)
	if err != nil {
		return nil, err
	}

	chatModel, err := llm.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	retry := llm.DefaultRetryConfig()
	retry.MaxRetries = cfg.Retry.MaxRetries
	retry.BaseDelay = cfg.Retry.BaseDelay
	retry.MaxDelay = cfg.Retry.MaxDelay

	engine, err := orchestrator.NewEngine(ctx, orchestrator.Config{
		ChatModel:    chatModel,
		Retry:        retry,
		Sessions:     sessions,
		Turns:        turns,
		Profiles:     profiles,
		Business:     cfg.Business,
		Conversation: cfg.Conversation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	app.Engine = engine

	logx.Info().
		Str("session_backend", cfg.Store.SessionBackend).
		Str("store_backend", cfg.Store.Backend).
		Str("provider", chatModel.Provider).
		Str("model", chatModel.ModelName).
		Msg("frontdesk ready")
	ok = true
	return app, nil
}

func buildSessionStore(cfg *AppConfig, app *App, redisClient func() (*redis.Client, error)) (model.SessionStore, error) {
	switch strings.ToLower(cfg.Store.SessionBackend) {
	case backendMemory:
		store := repo.NewMemorySessionStore(cfg.Conversation.SessionTTL)
		app.MemorySessions = store
		return store, nil
	case backendRedis:
		rdb, err := redisClient()
		if err != nil {
			return nil, err
		}
		return repo.NewRedisSessionStore(rdb, cfg.Conversation.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.Store.SessionBackend)
	}
}

func buildTurnStores(ctx context.Context, cfg *AppConfig, app *App, redisClient func() (*redis.Client, error)) (model.TurnLog, model.ProfileStore, error) {
	switch backend := strings.ToLower(cfg.Store.Backend); backend {
	case backendMemory:
		return repo.NewMemoryTurnLog(), repo.NewMemoryProfileStore(), nil
	case backendRedis:
		rdb, err := redisClient()
		if err != nil {
			return nil, nil, err
		}
		return repo.NewRedisTurnLog(rdb, cfg.Store.TurnLogTTL), repo.NewRedisProfileStore(rdb, cfg.Store.TurnLogTTL), nil
	case backendSQLite, backendPostgres:
		driver := repo.DriverSQLite
		if backend == backendPostgres {
			driver = repo.DriverPostgres
		}
		store, err := repo.NewSQLStore(ctx, driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s store: %w", backend, err)
		}
		app.closers = append(app.closers, store.Close)
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
}

// sweepInterval falls back to a minute when unset.
func sweepInterval(cfg *AppConfig) time.Duration {
	if cfg.Conversation.SweepInterval <= 0 {
		return time.Minute
	}
	return cfg.Conversation.SweepInterval
}
