// Package observability starts the optional telemetry backends: Uptrace
// tracing, Pyroscope profiling and a pprof debug listener.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/toto/internal/config"
	"github.com/riskibarqy/toto/internal/platform/logging"
)

// Telemetry owns whatever backends Start enabled.
type Telemetry struct {
	logger          *logging.Logger
	shutdownTracing func(context.Context) error
	stopProfiler    func() error
	debugServer     *http.Server
}

// Start brings up every backend enabled in cfg. If one fails, the ones
// already running are stopped before the error is returned.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	var err error
	if t.shutdownTracing, err = startTracing(cfg, logger.Named("uptrace")); err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	if t.stopProfiler, err = startProfiler(cfg, logger.Named("pyroscope")); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	t.debugServer = startDebugServer(cfg, logger.Named("pprof"))

	return t, nil
}

// Shutdown stops the debug listener and the profiler, then flushes spans.
// Tracing goes last so spans from the rest of shutdown are exported.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.debugServer != nil {
		if err := t.debugServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop pprof server: %w", err))
		}
	}
	if t.stopProfiler != nil {
		if err := t.stopProfiler(); err != nil {
			errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
		}
	}
	if t.shutdownTracing != nil {
		if err := t.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	return errors.Join(errs...)
}
