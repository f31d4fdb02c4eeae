package http

import (
	"log/slog"

	"github.com/beforest/brandvoice/internal/domain/analytics"
	"github.com/beforest/brandvoice/internal/domain/auth"
	"github.com/beforest/brandvoice/internal/domain/chat"
	"github.com/beforest/brandvoice/internal/domain/settings"
	"github.com/beforest/brandvoice/internal/domain/transform"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc      auth.Service
	transformSvc transform.Service
	chatSvc      chat.Service
	settingsSvc  settings.Service
	analyticsSvc analytics.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	authSvc auth.Service,
	transformSvc transform.Service,
	chatSvc chat.Service,
	settingsSvc settings.Service,
	analyticsSvc analytics.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:      authSvc,
		transformSvc: transformSvc,
		chatSvc:      chatSvc,
		settingsSvc:  settingsSvc,
		analyticsSvc: analyticsSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
