package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/core"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/frontdesk/pkg/redis"
)

// AppConfig defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config
	Store model.StoreConfig

	// LLM provider
	LLM   model.LLMConfig
	Retry model.RetryEnvConfig

	// Agent configs
	Conversation model.ConversationConfig
	Business     model.BusinessConfig
	Server       model.ServerConfig
}

func loadConfig(envFile string) (*AppConfig, error) {
	if err := godotenv.Load(envFile); err != nil {
		logx.Debug().Err(err).Str("file", envFile).Msg("no env file loaded")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

func newRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "frontdesk",
		Short: "Rule-driven front desk assistant for a creative studio",
		Long: `frontdesk answers website chat turns: it fires one-shot contact and proposal
prompts, answers from a strategic rule table, runs the proposal questionnaire,
and falls back to a language model for everything else.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before reading configuration")

	rootCmd.AddCommand(newServeCommand(&envFile))
	rootCmd.AddCommand(newChatCommand(&envFile))
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
