//go:build wireinject
// +build wireinject

package main

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/beforest/brandvoice/internal/bootstrap"
	"github.com/beforest/brandvoice/internal/domain/analytics"
	"github.com/beforest/brandvoice/internal/domain/auth"
	"github.com/beforest/brandvoice/internal/domain/chat"
	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/domain/transform"
	"github.com/beforest/brandvoice/internal/infra/config"
	"github.com/beforest/brandvoice/internal/infra/llm/chatgpt"
	httpiface "github.com/beforest/brandvoice/internal/interface/http"
)

var storageSet = wire.NewSet(
	providePool,
	provideUserRepository,
	provideTransformRepository,
	provideChatRepository,
	provideSettingsRepository,
	provideSettingsCache,
)

var settingsSet = wire.NewSet(
	provideSettingsConfig,
	settings.NewService,
)

func initializeApp(cfg *config.Config, logger *slog.Logger) (*bootstrap.App, func(), error) {
	wire.Build(
		storageSet,
		settingsSet,
		provideAuthConfig,
		provideTransformConfig,
		provideChatConfig,
		provideChatGPTClient,
		provideObjectStorage,
		provideTokenCounter,
		providePromptSource,
		provideAnalyticsSource,
		auth.NewService,
		transform.NewService,
		chat.NewService,
		analytics.NewService,
		wire.Bind(new(transform.ChatClient), new(*chatgpt.Client)),
		wire.Bind(new(chat.ChatClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

func initializeSettings(cfg *config.Config, logger *slog.Logger) (settings.Service, func(), error) {
	wire.Build(
		providePool,
		provideSettingsRepository,
		provideSettingsCache,
		settingsSet,
	)
	return nil, nil, nil
}
