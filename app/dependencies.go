package app

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/llm-model-access/auth"
	"github.com/upb/llm-model-access/config"
	"github.com/upb/llm-model-access/internal/catalog"
	"github.com/upb/llm-model-access/internal/catalog/openrouter"
	"github.com/upb/llm-model-access/internal/enrichment"
	"github.com/upb/llm-model-access/internal/observability"
	"github.com/upb/llm-model-access/internal/runtimeconfig"
	"github.com/upb/llm-model-access/middleware"
	"github.com/upb/llm-model-access/repositories"
	"github.com/upb/llm-model-access/repositories/postgres"
	"github.com/upb/llm-model-access/services/listing"
	"github.com/upb/llm-model-access/services/plans"
	"go.uber.org/zap"
)

// Version is reported by the status endpoint.
const Version = "0.1.0"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Database (optional)
	RepoFactory *postgres.RepositoryFactory
	DB          *postgres.DB
	Users       repositories.UserRepository
	Health      repositories.HealthChecker

	// Catalog and enrichment
	Catalog *catalog.Registry
	Gate    *enrichment.Gate
	Worker  *enrichment.Worker

	// Access policy
	Policies *runtimeconfig.Store
	Reloader *runtimeconfig.Reloader

	// Services
	PlanCache *plans.PlanCache
	Plans     *plans.Service
	Listing   *listing.Service

	// Auth
	Validator         *auth.Validator
	SessionMiddleware *middleware.SessionMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	// Initialize PostgreSQL when configured
	if cfg.Database.Enabled() {
		if err := deps.initDatabase(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	} else {
		logger.Info("database not configured, plan tiers come from session claims")
	}

	if err := deps.initCatalog(cfg); err != nil {
		deps.closeDatabase()
		return nil, fmt.Errorf("failed to initialize model catalog: %w", err)
	}

	if err := deps.initPolicies(cfg); err != nil {
		deps.closeDatabase()
		return nil, fmt.Errorf("failed to initialize access policy: %w", err)
	}

	if err := deps.initAuth(cfg); err != nil {
		deps.closeDatabase()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.Listing = listing.NewService(
		deps.Gate,
		deps.Catalog,
		deps.Policies,
		cfg.Enrichment.WaitTimeout,
		logger,
		deps.Metrics,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase opens the plan-tier database and the plan service on top of it
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.HealthCheck(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("database health check failed: %w", err)
	}

	repos := factory.NewRepositories()
	d.Users = repos.Users
	d.Health = d.DB

	d.PlanCache = plans.NewPlanCache(cfg.Database.PlanCacheSize, cfg.Database.PlanCacheTTL)
	d.Plans = plans.NewService(d.Users, d.PlanCache, d.Logger)

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initCatalog loads the catalog and prepares the enrichment worker
func (d *Dependencies) initCatalog(cfg *config.Config) error {
	models, err := catalog.LoadFile(cfg.Catalog.File)
	if err != nil {
		return err
	}

	registry := catalog.NewRegistry()
	if err := registry.Register(models...); err != nil {
		return err
	}
	d.Catalog = registry
	d.Gate = enrichment.NewGate()

	d.Logger.Info("model catalog loaded",
		zap.Int("models", registry.Count()),
		zap.String("source", catalogSource(cfg.Catalog.File)))

	if !cfg.Enrichment.Enabled {
		d.Logger.Info("model enrichment disabled")
		return nil
	}

	client := openrouter.NewClient(openrouter.Config{
		BaseURL: cfg.Enrichment.BaseURL,
		APIKey:  cfg.Enrichment.APIKey,
		Timeout: cfg.Enrichment.FetchTimeout,
	})
	enricher := openrouter.NewEnricher(client, registry, d.Logger)
	d.Worker = enrichment.NewWorker(d.Gate, enricher, cfg.Enrichment.FetchTimeout, d.Logger, d.Metrics)
	return nil
}

func catalogSource(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}

// initPolicies builds the allow-list snapshot store and optional file watcher
func (d *Dependencies) initPolicies(cfg *config.Config) error {
	store, err := runtimeconfig.NewStore(
		cfg.Access.PolicyFile,
		runtimeconfig.Defaults(cfg.Access),
		d.Logger,
		d.Metrics,
	)
	if err != nil {
		return err
	}
	d.Policies = store

	if cfg.Access.PolicyFile == "" || !cfg.Access.WatchPolicyFile {
		return nil
	}

	reloader, err := runtimeconfig.NewReloader(store, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to watch policy file: %w", err)
	}
	d.Reloader = reloader
	return nil
}

// initAuth sets up token validation and the session middleware.
// Without a signing secret every caller is treated as a guest.
func (d *Dependencies) initAuth(cfg *config.Config) error {
	var validator middleware.TokenValidator
	if cfg.Auth.JWTSecret != "" {
		v, err := auth.NewValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
		if err != nil {
			return err
		}
		d.Validator = v
		validator = v
	} else {
		d.Logger.Warn("session token secret not configured, all callers are guests")
	}

	var resolver middleware.PlanResolver
	if d.Plans != nil {
		resolver = d.Plans
	}

	d.SessionMiddleware = middleware.NewSessionMiddleware(validator, resolver, d.Logger)
	return nil
}

// EnrichmentState reports the enrichment gate as completed, failed, pending
// or not_started. not_started means enrichment is disabled.
func (d *Dependencies) EnrichmentState() string {
	switch {
	case d.Gate == nil || !d.Gate.Started():
		return "not_started"
	case d.Gate.Completed():
		return "completed"
	case d.Gate.Failed():
		return "failed"
	default:
		return "pending"
	}
}

// StartPlanCacheCleanup evicts expired plan tiers until ctx is done.
// It returns immediately when no database is configured.
func (d *Dependencies) StartPlanCacheCleanup(ctx context.Context, interval time.Duration) {
	if d.PlanCache == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	stopCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stopCh)
	}()
	d.PlanCache.StartCleanupWorker(interval, stopCh)
}

func (d *Dependencies) closeDatabase() {
	if d.RepoFactory != nil {
		_ = d.RepoFactory.Close()
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
