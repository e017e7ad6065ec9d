package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/sportzhub/livescore/external/cricapi"
	"github.com/sportzhub/livescore/external/espn"
	"github.com/sportzhub/livescore/internal/broadcast"
	"github.com/sportzhub/livescore/internal/config"
	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/infrastructure/repository/memory"
	"github.com/sportzhub/livescore/internal/infrastructure/repository/postgres"
	"github.com/sportzhub/livescore/internal/interfaces/httpapi"
	"github.com/sportzhub/livescore/internal/platform/cache"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/sportzhub/livescore/internal/platform/resilience"
	"github.com/sportzhub/livescore/internal/usecase"
)

// App owns the wired service graph: repositories, the sync pipeline, the
// websocket hub and the HTTP server.
type App struct {
	Server    *http.Server
	Scheduler *usecase.Scheduler
	Hub       *broadcast.Hub

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db             *sqlx.DB
		matchRepo      match.Repository
		commentaryRepo commentary.Repository
	)
	if cfg.DBURL != "" {
		conn, err := openDB(cfg.DBURL)
		if err != nil {
			return nil, err
		}
		db = conn
		matchRepo = postgres.NewMatchRepository(db)
		commentaryRepo = postgres.NewCommentaryRepository(db)
		logger.Info("using postgres match store")
	} else {
		memMatches := memory.NewMatchRepository()
		if err := memory.Seed(memMatches, time.Now()); err != nil {
			return nil, fmt.Errorf("seed in-memory store: %w", err)
		}
		matchRepo = memMatches
		commentaryRepo = memory.NewCommentaryRepository()
		logger.Info("no DB_URL configured, using seeded in-memory store")
	}

	hub := broadcast.NewHub(logger, cfg.CORSAllowedOrigins)

	adapters := []usecase.SourceAdapter{
		cricapi.NewClient(cricapi.ClientConfig{
			BaseURL: cfg.CricAPIBaseURL,
			APIKey:  cfg.CricAPIKey,
			Timeout: cfg.CricAPITimeout,
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.CricAPICircuitEnabled,
				FailureThreshold: cfg.CricAPICircuitFailureCount,
				OpenTimeout:      cfg.CricAPICircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.CricAPICircuitHalfOpenMax,
			},
		}),
	}
	if cfg.ScrapeEnabled {
		adapters = append(adapters, espn.NewScraper(espn.ScraperConfig{
			Timeout: cfg.ScrapeTimeout,
			Logger:  logger,
			Endpoints: []espn.Endpoint{
				{Sport: match.SportFootball, League: "Premier League", URL: cfg.ScrapeFootballURL},
				{Sport: match.SportBasketball, League: "NBA", URL: cfg.ScrapeBasketballURL},
			},
		}))
	}

	commentarySvc := usecase.NewCommentaryService(commentaryRepo, hub, nil, logger)
	syncService := usecase.NewSyncService(adapters, matchRepo, commentarySvc, hub, cfg.AdapterTimeout, logger)

	var scheduler *usecase.Scheduler
	if cfg.SyncEnabled {
		scheduler = usecase.NewScheduler(syncService, clockwork.NewRealClock(), cfg.SyncInterval, logger)
	}

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		// Immediate expiry turns every read into a load without a second
		// handler code path.
		cacheTTL = time.Nanosecond
	}

	handler := httpapi.NewHandler(matchRepo, commentaryRepo, syncService, commentarySvc, cache.NewStore(cacheTTL), logger)
	router := httpapi.NewRouter(handler, hub, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		Hub:       hub,
		db:        db,
	}, nil
}

// Close releases everything the HTTP server does not own itself.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
