package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/toto/internal/config"
	"github.com/riskibarqy/toto/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "nothing enabled", cfg: config.Config{ServiceName: "toto-api", AppEnv: config.EnvDev}},
		{name: "tracing without dsn", cfg: config.Config{ServiceName: "toto-api", UptraceEnabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel, err := Start(tt.cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if tel.debugServer != nil || tel.stopProfiler != nil || tel.shutdownTracing != nil {
				t.Fatalf("expected no backend to start, got %+v", tel)
			}
			if err := tel.Shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}

func TestShutdown_NilTelemetry(t *testing.T) {
	var tel *Telemetry
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown nil telemetry: %v", err)
	}
}

func TestStart_DebugServer(t *testing.T) {
	tel, err := Start(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if tel.debugServer == nil {
		t.Fatalf("expected pprof server")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
