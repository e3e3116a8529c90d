package bootstrap

import (
	"log/slog"

	"harborline/internal/handler/middleware"
	"harborline/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger reuses the request-logging middleware's slog setup so the
// bootstrap and per-request logs share one format.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log).GetSlogLogger()
}
