package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "toto-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "toto-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_GameRuleDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Rules.GamesPerRound != 16 || cfg.Rules.DoublesPerTicket != 3 {
		t.Fatalf("unexpected default rules: %+v", cfg.Rules)
	}
	if cfg.PayerPolicy != roundscore.PayerAtMaxHits {
		t.Fatalf("unexpected default payer policy: %q", cfg.PayerPolicy)
	}
	if cfg.InitialRoundStatus != round.StatusDraft {
		t.Fatalf("unexpected default initial status: %q", cfg.InitialRoundStatus)
	}
	if cfg.AutofillSeed != 0 {
		t.Fatalf("expected random autofill seed by default, got %d", cfg.AutofillSeed)
	}
	if cfg.StorageDriver != StorageDriverPostgres {
		t.Fatalf("unexpected default storage driver: %q", cfg.StorageDriver)
	}
}

func TestLoad_GameRuleValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "doubles above games", env: map[string]string{"TOTO_GAMES_PER_ROUND": "2", "TOTO_DOUBLES_PER_TICKET": "3"}},
		{name: "no games", env: map[string]string{"TOTO_GAMES_PER_ROUND": "0"}},
		{name: "negative doubles", env: map[string]string{"TOTO_DOUBLES_PER_TICKET": "-1"}},
		{name: "unknown payer policy", env: map[string]string{"TOTO_PAYER_POLICY": "random"}},
		{name: "locked initial status", env: map[string]string{"TOTO_INITIAL_ROUND_STATUS": "locked"}},
		{name: "bad seed", env: map[string]string{"TOTO_AUTOFILL_SEED": "-4"}},
		{name: "unknown storage driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "bad sweep schedule", env: map[string]string{"LOCK_SWEEP_SCHEDULE": "every now and then"}},
		{name: "zero sweep workers", env: map[string]string{"LOCK_SWEEP_WORKERS": "0"}},
		{name: "feed without token", env: map[string]string{"FIXTURE_FEED_ENABLED": "true", "FIXTURE_FEED_BASE_URL": "https://feed.example.com"}},
		{name: "feed without base url", env: map[string]string{"FIXTURE_FEED_ENABLED": "true", "FIXTURE_FEED_TOKEN": "secret"}},
		{name: "anubis circuit threshold", env: map[string]string{"ANUBIS_CIRCUIT_FAILURE_COUNT": "0"}},
		{name: "feed circuit timeout", env: map[string]string{"FIXTURE_FEED_CIRCUIT_OPEN_TIMEOUT": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", tt.env)
			}
		})
	}
}

func TestLoad_GameRuleOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("TOTO_GAMES_PER_ROUND", "13")
	t.Setenv("TOTO_DOUBLES_PER_TICKET", "0")
	t.Setenv("TOTO_PAYER_POLICY", "min_hits")
	t.Setenv("TOTO_INITIAL_ROUND_STATUS", "active")
	t.Setenv("TOTO_AUTOFILL_SEED", "99")
	t.Setenv("LOCK_SWEEP_SCHEDULE", "*/5 * * * *")
	t.Setenv("FIXTURE_FEED_ENABLED", "true")
	t.Setenv("FIXTURE_FEED_BASE_URL", "https://feed.example.com")
	t.Setenv("FIXTURE_FEED_TOKEN", "secret")
	t.Setenv("FIXTURE_FEED_CIRCUIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.Rules.GamesPerRound != 13 || cfg.Rules.DoublesPerTicket != 0 {
		t.Fatalf("unexpected rules: %+v", cfg.Rules)
	}
	if cfg.PayerPolicy != roundscore.PayerAtMinHits {
		t.Fatalf("unexpected payer policy: %q", cfg.PayerPolicy)
	}
	if cfg.InitialRoundStatus != round.StatusActive {
		t.Fatalf("unexpected initial status: %q", cfg.InitialRoundStatus)
	}
	if cfg.AutofillSeed != 99 {
		t.Fatalf("unexpected autofill seed: %d", cfg.AutofillSeed)
	}
	if cfg.LockSweepSchedule != "*/5 * * * *" {
		t.Fatalf("unexpected sweep schedule: %q", cfg.LockSweepSchedule)
	}
	if !cfg.FixtureFeedEnabled || cfg.FixtureFeedCircuit.Enabled {
		t.Fatalf("unexpected fixture feed config: enabled=%v circuit=%+v", cfg.FixtureFeedEnabled, cfg.FixtureFeedCircuit)
	}
	if !cfg.AnubisCircuit.Enabled || cfg.AnubisCircuit.FailureThreshold != 5 || cfg.AnubisCircuit.OpenTimeout != 15*time.Second {
		t.Fatalf("unexpected anubis circuit defaults: %+v", cfg.AnubisCircuit)
	}
}
