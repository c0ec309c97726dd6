package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	Server     ServerConfig
	LLM        LLMConfig
	Makcorps   MakcorpsConfig
	Chat       ChatConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, wins over the individual fields
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the cache configuration. An empty Addr disables the cache.
type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	PreferenceTTLMin int
	LocationTTLMin   int
}

// Enabled reports whether a redis address was configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	RatePerMinute  int
	RateBurst      int
}

// LLMConfig holds the completion service configuration
type LLMConfig struct {
	Provider    string // "openai" (any OpenAI-compatible endpoint) or "gemini"
	APIKey      string
	APIBase     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     int // seconds
	Enabled     bool
}

// MakcorpsConfig holds the hotel pricing provider configuration
type MakcorpsConfig struct {
	BaseURL          string
	APIKey           string
	Currency         string
	Rooms            int
	Timeout          int // seconds
	RatePerSecond    float64
	AffiliateBaseURL string // booking links are {AffiliateBaseURL}/hotel/{id}?partner={PartnerID}; empty disables
	PartnerID        string
}

// ChatConfig holds conversation level settings
type ChatConfig struct {
	DefaultGuests  int
	PersistTopN    int
	ResponseTopN   int
	CurrencySymbol string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment (and an optional .env file)
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                firstNonEmpty(v.GetString("DATABASE_URL"), v.GetString("PG_DSN")),
			Host:               v.GetString("PG_HOST"),
			Port:               v.GetInt("PG_PORT"),
			User:               v.GetString("PG_USER"),
			Password:           v.GetString("PG_PASSWORD"),
			Database:           v.GetString("PG_DATABASE"),
			SSLMode:            v.GetString("PG_SSLMODE"),
			MaxConnections:     v.GetInt("PG_MAX_CONNECTIONS"),
			MaxIdleConnections: v.GetInt("PG_MAX_IDLE_CONNECTIONS"),
		},
		Redis: RedisConfig{
			Addr:             v.GetString("REDIS_ADDR"),
			Password:         v.GetString("REDIS_PASSWORD"),
			DB:               v.GetInt("REDIS_DB"),
			PreferenceTTLMin: v.GetInt("REDIS_PREFERENCE_TTL_MIN"),
			LocationTTLMin:   v.GetInt("REDIS_LOCATION_TTL_MIN"),
		},
		Server: ServerConfig{
			Port:           v.GetInt("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
			RatePerMinute:  v.GetInt("RATE_LIMIT_PER_MINUTE"),
			RateBurst:      v.GetInt("RATE_LIMIT_BURST"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("LLM_PROVIDER")),
			APIKey:      firstNonEmpty(v.GetString("LLM_API_KEY"), v.GetString("GROQ_API_KEY")),
			APIBase:     v.GetString("LLM_API_BASE"),
			Model:       v.GetString("LLM_MODEL"),
			Temperature: v.GetFloat64("LLM_TEMPERATURE"),
			MaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
			Timeout:     v.GetInt("LLM_TIMEOUT"),
		},
		Makcorps: MakcorpsConfig{
			BaseURL:          strings.TrimRight(v.GetString("MAKCORPS_BASE_URL"), "/"),
			APIKey:           v.GetString("MAKCORPS_API_KEY"),
			Currency:         v.GetString("MAKCORPS_CURRENCY"),
			Rooms:            v.GetInt("MAKCORPS_ROOMS"),
			Timeout:          v.GetInt("MAKCORPS_TIMEOUT"),
			RatePerSecond:    v.GetFloat64("MAKCORPS_RATE_PER_SECOND"),
			AffiliateBaseURL: strings.TrimRight(v.GetString("AFFILIATE_BASE_URL"), "/"),
			PartnerID:        v.GetString("AFFILIATE_PARTNER_ID"),
		},
		Chat: ChatConfig{
			DefaultGuests:  v.GetInt("CHAT_DEFAULT_GUESTS"),
			PersistTopN:    v.GetInt("CHAT_PERSIST_TOP_N"),
			ResponseTopN:   v.GetInt("CHAT_RESPONSE_TOP_N"),
			CurrencySymbol: v.GetString("CHAT_CURRENCY_SYMBOL"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	cfg.LLM.Enabled = cfg.LLM.APIKey != ""

	if cfg.Chat.PersistTopN < 0 || cfg.Chat.ResponseTopN < 0 {
		return nil, fmt.Errorf("CHAT_PERSIST_TOP_N and CHAT_RESPONSE_TOP_N must not be negative (got %d, %d)",
			cfg.Chat.PersistTopN, cfg.Chat.ResponseTopN)
	}

	model, ok := defaultModels[cfg.LLM.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (expected openai or gemini)", cfg.LLM.Provider)
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = model
	}

	return cfg, nil
}

var defaultModels = map[string]string{
	"openai": "llama-3.1-8b-instant",
	"gemini": "gemini-2.0-flash",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_PASSWORD", "")
	v.SetDefault("PG_DATABASE", "hotelix")
	v.SetDefault("PG_SSLMODE", "disable")
	v.SetDefault("PG_MAX_CONNECTIONS", 25)
	v.SetDefault("PG_MAX_IDLE_CONNECTIONS", 5)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFERENCE_TTL_MIN", 24*60)
	v.SetDefault("REDIS_LOCATION_TTL_MIN", 7*24*60)

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_API_BASE", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM_TEMPERATURE", 0.3)
	v.SetDefault("LLM_MAX_TOKENS", 500)
	v.SetDefault("LLM_TIMEOUT", 15)

	v.SetDefault("MAKCORPS_BASE_URL", "https://api.makcorps.com")
	v.SetDefault("MAKCORPS_CURRENCY", "EUR")
	v.SetDefault("MAKCORPS_ROOMS", 1)
	v.SetDefault("MAKCORPS_TIMEOUT", 10)
	v.SetDefault("MAKCORPS_RATE_PER_SECOND", 5)
	v.SetDefault("AFFILIATE_BASE_URL", "https://www.makcorps.com")
	v.SetDefault("AFFILIATE_PARTNER_ID", "hotel_chatbot")

	v.SetDefault("CHAT_DEFAULT_GUESTS", 1)
	v.SetDefault("CHAT_PERSIST_TOP_N", 10)
	v.SetDefault("CHAT_RESPONSE_TOP_N", 5)
	v.SetDefault("CHAT_CURRENCY_SYMBOL", "€")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
