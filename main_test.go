package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/llm"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/orchestrator"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/repo"
	"github.com/Chative-core-poc-v1/frontdesk/internal/core"
)

func noRedis() (*redis.Client, error) {
	panic("redis must not be used")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, core.Production, cfg.Environment)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Conversation.SessionTTL)
	assert.Equal(t, 25*time.Second, cfg.Conversation.TurnTimeout)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestBuildStores_Memory(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Store.Backend = backendMemory
	cfg.Store.SessionBackend = backendMemory
	cfg.Conversation.SessionTTL = time.Minute
	app := &App{}

	sessions, err := buildSessionStore(cfg, app, noRedis)
	require.NoError(t, err)
	assert.IsType(t, &repo.MemorySessionStore{}, sessions)
	assert.NotNil(t, app.MemorySessions)

	turns, profiles, err := buildTurnStores(context.Background(), cfg, app, noRedis)
	require.NoError(t, err)
	assert.IsType(t, &repo.MemoryTurnLog{}, turns)
	assert.IsType(t, &repo.MemoryProfileStore{}, profiles)
}

func TestBuildStores_SQLite(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Store.Backend = backendSQLite
	cfg.Store.DSN = filepath.Join(t.TempDir(), "frontdesk.db")
	app := &App{}
	defer app.Close()

	turns, profiles, err := buildTurnStores(context.Background(), cfg, app, noRedis)
	require.NoError(t, err)
	assert.Same(t, turns.(*repo.SQLStore), profiles.(*repo.SQLStore))
	assert.Len(t, app.closers, 1)
}

func TestBuildStores_UnknownBackend(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Store.Backend = "cassandra"
	cfg.Store.SessionBackend = "etcd"

	_, err := buildSessionStore(cfg, &App{}, noRedis)
	assert.ErrorContains(t, err, "SESSION_BACKEND")
	_, _, err = buildTurnStores(context.Background(), cfg, &App{}, noRedis)
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

type echoModel struct{}

func (echoModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	return schema.AssistantMessage("You said: "+input[len(input)-1].Content, nil), nil
}

func (m echoModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestChatLoop(t *testing.T) {
	engine, err := orchestrator.NewEngine(context.Background(), orchestrator.Config{
		ChatModel: &llm.ChatModel{Model: echoModel{}, ModelName: "test", Provider: "test"},
		Retry:     llm.DefaultRetryConfig(),
		Sessions:  repo.NewMemorySessionStore(time.Minute),
		Turns:     repo.NewMemoryTurnLog(),
		Profiles:  repo.NewMemoryProfileStore(),
		Business:  model.BusinessConfig{Name: "Northlight Studio", Type: "design agency"},
	})
	require.NoError(t, err)

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("Do you design logos?\n\nTell me about the kinds of clients you work with\n/quit\nnever read\n"))
	cmd.SetContext(context.Background())

	require.NoError(t, chatLoop(cmd, &App{Engine: engine}, "cli-test"))

	got := out.String()
	assert.Contains(t, got, "Session cli-test")
	assert.Contains(t, got, "[STRATEGIC]")
	assert.Contains(t, got, "You said: Tell me about the kinds of clients you work with")
	assert.Contains(t, got, "[AI_RESPONSE]")
	assert.NotContains(t, got, "never read")
}
