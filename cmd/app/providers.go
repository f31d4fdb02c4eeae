package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/beforest/brandvoice/internal/domain/analytics"
	"github.com/beforest/brandvoice/internal/domain/auth"
	"github.com/beforest/brandvoice/internal/domain/chat"
	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/domain/transform"
	"github.com/beforest/brandvoice/internal/infra/cache"
	"github.com/beforest/brandvoice/internal/infra/chatrepo"
	"github.com/beforest/brandvoice/internal/infra/config"
	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	"github.com/beforest/brandvoice/internal/infra/postgres"
	"github.com/beforest/brandvoice/internal/infra/settingsrepo"
	"github.com/beforest/brandvoice/internal/infra/storage"
	"github.com/beforest/brandvoice/internal/infra/tokenizer"
	"github.com/beforest/brandvoice/internal/infra/transformrepo"
	"github.com/beforest/brandvoice/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		BcryptCost:      cfg.Auth.BcryptCost,
	}
}

func provideTransformConfig(cfg *config.Config) transform.Config {
	return transform.Config{
		Model:            cfg.LLM.Model,
		MaxTokens:        cfg.Transform.MaxTokens,
		GenerateAnalysis: cfg.Transform.GenerateAnalysis,
	}
}

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		SystemPrompt:       cfg.Chat.SystemPrompt,
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		MaxTokens:          cfg.Chat.MaxTokens,
		HistoryWindow:      cfg.Chat.HistoryWindow,
		HistoryTokenBudget: cfg.Chat.HistoryTokenBudget,
		DefaultTitle:       cfg.Chat.DefaultTitle,
		EnableWebSearch:    cfg.Chat.EnableWebSearch,
		ExportURLTTL:       cfg.Storage.PresignTTL,
	}
}

func provideSettingsConfig(cfg *config.Config) settings.Config {
	return settings.Config{
		PasscodeHash:      cfg.Settings.PasscodeHash,
		CacheTTL:          cfg.Settings.CacheTTL,
		DefaultDeployment: cfg.LLM.Model,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(chatgpt.Options{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		APIVersion: cfg.LLM.APIVersion,
	})
}

// providePool returns nil when Postgres is not configured or unreachable; every
// repository provider then falls back to its memory implementation.
func providePool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	if strings.TrimSpace(cfg.Postgres.DSN) == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("postgres unavailable, using memory repositories", "error", err)
		return nil, func() {}
	}
	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.Error("schema migration failed, using memory repositories", "error", err)
			pool.Close()
			return nil, func() {}
		}
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideTransformRepository(pool *pgxpool.Pool) transform.Repository {
	if pool == nil {
		return transformrepo.NewMemoryRepository()
	}
	return transformrepo.NewPostgresRepository(pool)
}

func provideChatRepository(pool *pgxpool.Pool) chat.Repository {
	if pool == nil {
		return chatrepo.NewMemoryRepository()
	}
	return chatrepo.NewPostgresRepository(pool)
}

func provideSettingsRepository(pool *pgxpool.Pool) settings.Repository {
	if pool == nil {
		return settingsrepo.NewMemoryRepository()
	}
	return settingsrepo.NewPostgresRepository(pool)
}

func provideSettingsCache(cfg *config.Config, logger *slog.Logger) (settings.Cache, func()) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), func() {}
	}
	opt, err := buildValkeyOptions(cfg.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return cache.NewMemoryCache(), func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return cache.NewMemoryCache(), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return cache.NewMemoryCache(), func() {}
	}
	logger.Info("settings valkey cache enabled", "addr", cfg.Redis.Addr)
	return cache.NewValkeyCache(client, cfg.Redis.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) chat.ObjectStorage {
	if !cfg.Storage.Enabled {
		logger.Info("object storage disabled, exports are kept in memory")
		return storage.NewMemoryStorage()
	}
	store, err := storage.NewS3Storage(storage.S3Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
	}, logger)
	if err != nil {
		logger.Error("object storage unavailable, exports are kept in memory", "error", err)
		return storage.NewMemoryStorage()
	}
	return store
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) chat.TokenCounter {
	return tokenizer.NewCounter(cfg.Chat.TokenizerModel, logger)
}

func providePromptSource(svc settings.Service) transform.PromptSource {
	return svc
}

func provideAnalyticsSource(repo transform.Repository) analytics.Source {
	return repo
}
