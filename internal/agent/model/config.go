package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	SessionTTL  time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	TurnTimeout time.Duration `envconfig:"TURN_TIMEOUT" default:"25s"`
	// HistoryTurns caps how many prior messages are forwarded to the completion model.
	HistoryTurns int `envconfig:"CONVERSATION_HISTORY_TURNS" default:"10"`
	// SweepInterval is how often the in-memory session store drops expired sessions.
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

type LLMConfig struct {
	Provider     string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey string  `envconfig:"GEMINI_API_KEY"`
	BaseURL      string  `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey string  `envconfig:"OPENAI_API_KEY"`
	Model        string  `envconfig:"LLM_MODEL" default:"gemini-2.5-flash"`
	MaxTokens    int     `envconfig:"LLM_MAX_TOKENS" default:"600"`
	Temperature  float32 `envconfig:"LLM_TEMPERATURE" default:"0.7"`
}

type RetryEnvConfig struct {
	MaxRetries int           `envconfig:"LLM_MAX_RETRIES" default:"2"`
	BaseDelay  time.Duration `envconfig:"LLM_RETRY_BASE_DELAY" default:"1s"`
	MaxDelay   time.Duration `envconfig:"LLM_RETRY_MAX_DELAY" default:"10s"`
}

type BusinessConfig struct {
	Name string `envconfig:"BUSINESS_NAME" default:"Northlight Studio"`
	Type string `envconfig:"BUSINESS_TYPE" default:"branding, web design and digital marketing agency"`
}

type StoreConfig struct {
	// Backend selects the turn log and profile store: memory, redis, sqlite or postgres.
	Backend string `envconfig:"STORE_BACKEND" default:"redis"`
	// SessionBackend selects the session state store: memory or redis.
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"redis"`
	DSN            string `envconfig:"DATABASE_DSN" default:"frontdesk.db"`
	// TurnLogTTL bounds how long Redis keeps turn logs and profiles.
	TurnLogTTL time.Duration `envconfig:"TURN_LOG_TTL" default:"168h"`
}

type ServerConfig struct {
	Addr string `envconfig:"API_ADDR" default:":8080"`
}
