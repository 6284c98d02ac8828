package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/toto/external/fixturefeed"
	"github.com/riskibarqy/toto/internal/config"
	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/toto/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/toto/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/toto/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/toto/internal/interfaces/httpapi"
	"github.com/riskibarqy/toto/internal/interfaces/scheduler"
	basecache "github.com/riskibarqy/toto/internal/platform/cache"
	idgen "github.com/riskibarqy/toto/internal/platform/id"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
	"github.com/riskibarqy/toto/internal/usecase"
)

// App holds the long-running pieces of the service.
type App struct {
	Server    *http.Server
	LockSweep *scheduler.LockSweep
	db        *sqlx.DB
	logger    *logging.Logger
}

type repositories struct {
	members member.Repository
	rounds  round.Repository
	games   game.Repository
	tickets ticket.Repository
	scores  roundscore.Repository
	// slates fronts public slate reads only. Lifecycle, ticket and scoring
	// paths read games from the database on every call.
	slates usecase.SlateCache
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}

	repos, err := a.buildRepositories(cfg)
	if err != nil {
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	authz := usecase.NewMemberAuthorizer(repos.members)

	var fixtures usecase.FixtureSource
	if cfg.FixtureFeedEnabled {
		fixtures = fixturefeed.NewClient(fixturefeed.ClientConfig{
			BaseURL:        cfg.FixtureFeedBaseURL,
			Token:          cfg.FixtureFeedToken,
			Timeout:        cfg.FixtureFeedTimeout,
			MaxRetries:     cfg.FixtureFeedMaxRetries,
			CircuitBreaker: cfg.FixtureFeedCircuit,
			Logger:         logger.Named("fixture-feed"),
		})
	}

	autofillSvc := usecase.NewAutofillService(repos.rounds, repos.games, repos.tickets, repos.members, ids, cfg.Rules, cfg.AutofillSeed, logger)
	roundSvc := usecase.NewRoundService(repos.rounds, repos.games, repos.tickets, autofillSvc, authz, fixtures, ids,
		usecase.RoundServiceConfig{
			Rules:         cfg.Rules,
			InitialStatus: cfg.InitialRoundStatus,
			SweepWorkers:  cfg.LockSweepWorkers,
		}, logger)
	if repos.slates != nil {
		roundSvc.SetSlateCache(repos.slates)
	}
	ticketSvc := usecase.NewTicketService(repos.rounds, repos.games, repos.tickets, repos.members, ids, cfg.Rules, logger)
	scoringSvc := usecase.NewScoringService(repos.rounds, repos.games, repos.tickets, repos.scores, authz, cfg.PayerPolicy, logger)
	memberSvc := usecase.NewMemberService(repos.members, authz, logger)

	anubisClient := anubis.NewClient(anubis.ClientConfig{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectPath,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.AnubisCacheTTL,
		CircuitBreaker: cfg.AnubisCircuit,
		Logger:         logger.Named("anubis"),
	})

	routerCfg := httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = metrics.Handler()
	}

	handler := httpapi.NewHandler(roundSvc, ticketSvc, scoringSvc, memberSvc, logger)
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, anubisClient, logger, routerCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.LockSweepEnabled {
		a.LockSweep, err = scheduler.NewLockSweep(roundSvc, scheduler.Config{Schedule: cfg.LockSweepSchedule}, logger)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
	} else {
		logger.Info("lock sweep scheduler disabled", "reason", "LOCK_SWEEP_ENABLED=false")
	}

	return a, nil
}

func (a *App) buildRepositories(cfg config.Config) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		repos = repositories{
			members: memory.NewMemberRepository(store, memory.SeedMembers()),
			rounds:  memory.NewRoundRepository(store),
			games:   memory.NewGameRepository(store),
			tickets: memory.NewTicketRepository(store),
			scores:  memory.NewRoundScoreRepository(store),
		}
		a.logger.Warn("using in-memory storage, data is lost on restart")
	default:
		db, err := openDatabase(cfg)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		repos = repositories{
			members: postgres.NewMemberRepository(db),
			rounds:  postgres.NewRoundRepository(db),
			games:   postgres.NewGameRepository(db),
			tickets: postgres.NewTicketRepository(db),
			scores:  postgres.NewRoundScoreRepository(db),
		}
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		metrics.RegisterCacheStats("repository",
			func() float64 { return float64(store.Stats().Hits) },
			func() float64 { return float64(store.Stats().Misses) },
		)
		repos.slates = cache.NewGameRepository(repos.games, store)
		repos.scores = cache.NewRoundScoreRepository(repos.scores, store)
	}
	return repos, nil
}

// Start runs the background scheduler. The HTTP server is started by the caller.
func (a *App) Start() {
	if a.LockSweep != nil {
		a.LockSweep.Start()
	}
}

// Close stops the scheduler and releases the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.LockSweep != nil {
		if err := a.LockSweep.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop lock sweep: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
