package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tasktrail/core/internal/domain/entities"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Retention RetentionConfig `mapstructure:"retention"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Security  SecurityConfig  `mapstructure:"security"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig holds the local JSON state file configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ChatConfig holds the chat orchestration configuration: the two provider
// endpoints plus generation parameters shared by both.
type ChatConfig struct {
	Groq           ProviderConfig `mapstructure:"groq"`
	DeepSeek       ProviderConfig `mapstructure:"deepseek"`
	Temperature    float64        `mapstructure:"temperature"`
	MaxTokens      int            `mapstructure:"max_tokens"`
	RequestTimeout time.Duration  `mapstructure:"request_timeout"`
	HistoryLimit   int            `mapstructure:"history_limit"`
	ContextTasks   int            `mapstructure:"context_tasks"`
}

// ProviderConfig holds one provider's endpoint configuration
type ProviderConfig struct {
	URL   string `mapstructure:"url"`
	Key   string `mapstructure:"key"`
	Model string `mapstructure:"model"`
}

// RetentionConfig holds the completed-task purge configuration
type RetentionConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Window   time.Duration `mapstructure:"window"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "TaskTrail")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Server defaults
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Storage defaults
	viper.SetDefault("storage.path", "tasktrail.json")

	// Chat defaults. API keys have no defaults on purpose: a missing key is
	// a per-provider configuration error at call time, not a boot failure.
	viper.SetDefault("chat.groq.url", "https://api.groq.com/openai/v1/chat/completions")
	viper.SetDefault("chat.groq.key", "")
	viper.SetDefault("chat.groq.model", "llama-3.1-70b-versatile")
	viper.SetDefault("chat.deepseek.url", "https://api.deepseek.com/v1/chat/completions")
	viper.SetDefault("chat.deepseek.key", "")
	viper.SetDefault("chat.deepseek.model", "deepseek-chat")
	viper.SetDefault("chat.temperature", 0.7)
	viper.SetDefault("chat.max_tokens", 300)
	viper.SetDefault("chat.request_timeout", "30s")
	viper.SetDefault("chat.history_limit", 20)
	viper.SetDefault("chat.context_tasks", 10)

	// Retention defaults
	viper.SetDefault("retention.interval", "1h")
	viper.SetDefault("retention.window", "48h")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output", "stdout")

	// Security defaults
	viper.SetDefault("security.cors_allowed_origins", "*")
	viper.SetDefault("security.rate_limit_requests", 100)
	viper.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "APP_NAME")
	viper.BindEnv("app.version", "APP_VERSION")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("app.debug", "APP_DEBUG")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	// Storage
	viper.BindEnv("storage.path", "STORAGE_PATH")

	// Chat providers
	viper.BindEnv("chat.groq.url", "GROQ_API_URL")
	viper.BindEnv("chat.groq.key", "GROQ_API_KEY")
	viper.BindEnv("chat.groq.model", "GROQ_MODEL_NAME")
	viper.BindEnv("chat.deepseek.url", "DEEPSEEK_API_URL")
	viper.BindEnv("chat.deepseek.key", "DEEPSEEK_API_KEY")
	viper.BindEnv("chat.deepseek.model", "DEEPSEEK_MODEL_NAME")
	viper.BindEnv("chat.temperature", "CHAT_TEMPERATURE")
	viper.BindEnv("chat.max_tokens", "CHAT_MAX_TOKENS")
	viper.BindEnv("chat.request_timeout", "CHAT_REQUEST_TIMEOUT")

	// Retention
	viper.BindEnv("retention.interval", "RETENTION_INTERVAL")
	viper.BindEnv("retention.window", "RETENTION_WINDOW")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")

	// Security
	viper.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	viper.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	viper.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if cfg.Chat.HistoryLimit <= 0 {
		return fmt.Errorf("chat history limit must be positive")
	}

	if cfg.Retention.Window <= 0 {
		return fmt.Errorf("retention window must be positive")
	}

	return nil
}

// GroqProvider returns the primary provider configuration.
func (cfg *ChatConfig) GroqProvider() entities.ProviderConfig {
	return entities.ProviderConfig{
		Name:        "Groq",
		EndpointURL: cfg.Groq.URL,
		APIKey:      cfg.Groq.Key,
		Model:       cfg.Groq.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// DeepSeekProvider returns the fallback provider configuration.
func (cfg *ChatConfig) DeepSeekProvider() entities.ProviderConfig {
	return entities.ProviderConfig{
		Name:        "DeepSeek",
		EndpointURL: cfg.DeepSeek.URL,
		APIKey:      cfg.DeepSeek.Key,
		Model:       cfg.DeepSeek.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
