package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/toto/internal/config"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

func startTracing(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	dsn := strings.TrimSpace(cfg.UptraceDSN)
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
		return nil, nil
	case dsn == "":
		logger.Warn("tracing disabled", "reason", "UPTRACE_DSN empty")
		return nil, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	logger.Info("tracing enabled", "environment", cfg.AppEnv)

	return uptrace.Shutdown, nil
}
