package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Transform TransformConfig `yaml:"transform"`
	Chat      ChatConfig      `yaml:"chat"`
	Settings  SettingsConfig  `yaml:"settings"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
	BcryptCost      int           `yaml:"bcryptCost"`
}

// LLMConfig contains OpenAI compatible endpoint settings. Setting APIVersion switches to Azure style auth.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	APIVersion  string  `yaml:"apiVersion"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"maxConns"`
	MinConns    int32  `yaml:"minConns"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// RedisConfig contains connection information for the Valkey cache.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// StorageConfig points at an S3 compatible bucket used for conversation exports.
type StorageConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"accessKey"`
	SecretKey  string        `yaml:"secretKey"`
	Bucket     string        `yaml:"bucket"`
	Region     string        `yaml:"region"`
	PresignTTL time.Duration `yaml:"presignTtl"`
}

// TransformConfig tunes the rewrite endpoint.
type TransformConfig struct {
	MaxTokens        int  `yaml:"maxTokens"`
	GenerateAnalysis bool `yaml:"generateAnalysis"`
}

// ChatConfig tunes the streaming assistant.
type ChatConfig struct {
	SystemPrompt       string `yaml:"systemPrompt"`
	MaxTokens          int    `yaml:"maxTokens"`
	HistoryWindow      int    `yaml:"historyWindow"`
	HistoryTokenBudget int    `yaml:"historyTokenBudget"`
	DefaultTitle       string `yaml:"defaultTitle"`
	EnableWebSearch    bool   `yaml:"enableWebSearch"`
	TokenizerModel     string `yaml:"tokenizerModel"`
}

// SettingsConfig guards and caches the prompt editor.
type SettingsConfig struct {
	PasscodeHash string        `yaml:"passcodeHash"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
}

// Load reads configuration from a YAML file, an optional .env file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setDuration(&cfg.HTTP.WriteTimeout, "HTTP_WRITE_TIMEOUT")
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")

	setString(&cfg.Auth.Secret, "JWT_SECRET_KEY")
	setString(&cfg.Auth.Secret, "AUTH_JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "AUTH_TOKEN_TTL")
	setDuration(&cfg.Auth.RefreshTokenTTL, "AUTH_REFRESH_TOKEN_TTL")
	setInt(&cfg.Auth.BcryptCost, "AUTH_BCRYPT_COST")

	setString(&cfg.LLM.APIKey, "AZURE_OPENAI_KEY")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.APIVersion, "AZURE_OPENAI_API_VERSION")
	setString(&cfg.LLM.APIVersion, "LLM_API_VERSION")
	setString(&cfg.LLM.Model, "AZURE_OPENAI_DEPLOYMENT_NAME")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setString(&cfg.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	setBool(&cfg.Postgres.AutoMigrate, "POSTGRES_AUTO_MIGRATE")

	setBool(&cfg.Redis.Enabled, "REDIS_ENABLED")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")

	setBool(&cfg.Storage.Enabled, "STORAGE_ENABLED")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, "STORAGE_REGION")

	setInt(&cfg.Transform.MaxTokens, "TRANSFORM_MAX_TOKENS")
	setBool(&cfg.Transform.GenerateAnalysis, "TRANSFORM_GENERATE_ANALYSIS")

	setString(&cfg.Chat.SystemPrompt, "CHAT_SYSTEM_PROMPT")
	setInt(&cfg.Chat.MaxTokens, "CHAT_MAX_TOKENS")
	setInt(&cfg.Chat.HistoryWindow, "CHAT_HISTORY_WINDOW")
	setInt(&cfg.Chat.HistoryTokenBudget, "CHAT_HISTORY_TOKEN_BUDGET")
	setBool(&cfg.Chat.EnableWebSearch, "CHAT_ENABLE_WEB_SEARCH")

	setString(&cfg.Settings.PasscodeHash, "SETTINGS_PASSCODE_HASH")
	setDuration(&cfg.Settings.CacheTTL, "SETTINGS_CACHE_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:     ":8080",
			ReadTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Auth: AuthConfig{
			TokenTTL:        24 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			BcryptCost:      12,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Redis: RedisConfig{
			Prefix: "brandvoice",
		},
		Storage: StorageConfig{
			Bucket:     "brandvoice-exports",
			PresignTTL: 15 * time.Minute,
		},
		Transform: TransformConfig{
			MaxTokens: 2000,
		},
		Chat: ChatConfig{
			SystemPrompt: `You are an intelligent assistant. You are helpful, accurate, and engaging.

When users ask about brand voice or content transformation, you can help with the Beforest brand voice which is:
- Authentic and genuine
- Warm and approachable
- Premium but not pretentious
- Expert yet accessible
- Nature-inspired and sustainable

For general questions, answer naturally and helpfully. Always respond directly to what the user is asking.`,
			MaxTokens:          1500,
			HistoryWindow:      20,
			HistoryTokenBudget: 6000,
			DefaultTitle:       "New Conversation",
			TokenizerModel:     "gpt-4",
		},
		Settings: SettingsConfig{
			CacheTTL: 5 * time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.RefreshTokenTTL < c.Auth.TokenTTL {
		return errors.New("auth.refreshTokenTtl cannot be shorter than auth.tokenTtl")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return errors.New("auth.bcryptCost must be between 4 and 31")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Storage.Enabled {
		if strings.TrimSpace(c.Storage.Endpoint) == "" {
			return errors.New("storage.endpoint cannot be empty when storage is enabled")
		}
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return errors.New("storage.bucket cannot be empty when storage is enabled")
		}
	}
	if c.Transform.MaxTokens <= 0 {
		return errors.New("transform.maxTokens must be positive")
	}
	if c.Chat.MaxTokens <= 0 {
		return errors.New("chat.maxTokens must be positive")
	}
	if c.Chat.HistoryWindow <= 0 {
		return errors.New("chat.historyWindow must be positive")
	}
	if c.Chat.HistoryTokenBudget < 0 {
		return errors.New("chat.historyTokenBudget cannot be negative")
	}
	if strings.TrimSpace(c.Chat.SystemPrompt) == "" {
		return errors.New("chat.systemPrompt cannot be empty")
	}
	if strings.TrimSpace(c.Chat.DefaultTitle) == "" {
		return errors.New("chat.defaultTitle cannot be empty")
	}
	if h := strings.TrimSpace(c.Settings.PasscodeHash); h != "" && len(h) != 64 {
		return errors.New("settings.passcodeHash must be a hex encoded sha256 digest")
	}
	if c.Settings.CacheTTL < 0 {
		return errors.New("settings.cacheTtl cannot be negative")
	}
	return nil
}
