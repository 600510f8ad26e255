package config

import (
	"fmt"
	"strings"
	"time"

	"daggergm/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the DaggerGM service configuration. Secrets (DB password,
// JWT secret, AI API key) are loaded from Docker secret files, not env vars.
type Config struct {
	// Server
	Port     string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// PostgreSQL
	DBHost         string        `envconfig:"DB_HOST" required:"true"`
	DBPort         string        `envconfig:"DB_PORT" default:"5432"`
	DBUser         string        `envconfig:"DB_USER" required:"true"`
	DBName         string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode      string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns     int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout  time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	MigrationsPath string        `envconfig:"MIGRATIONS_PATH" default:"migrations"`
	// Secret field WITHOUT an envconfig tag
	DBPassword string

	// AI provider
	AIClientType string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL    string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel      string        `envconfig:"AI_MODEL" required:"true"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`
	// Secret field WITHOUT an envconfig tag
	AIAPIKey string

	// RabbitMQ (optional; updates are skipped when unset)
	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	UpdatesQueueName string `envconfig:"ADVENTURE_UPDATES_QUEUE" default:"adventure_updates"`

	// Secret field WITHOUT an envconfig tag
	JWTSecret string
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load daggergm configuration: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	// The API key is only required for hosted providers; a local Ollama
	// deployment runs without one.
	cfg.AIAPIKey, loadErr = utils.ReadSecret("ai_api_key")
	if loadErr != nil && strings.ToLower(cfg.AIClientType) != "ollama" {
		return nil, loadErr
	}

	return &cfg, nil
}
