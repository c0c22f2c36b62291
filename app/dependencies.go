package app

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/voice-admin/auth"
	"github.com/upb/voice-admin/cognito"
	"github.com/upb/voice-admin/config"
	"github.com/upb/voice-admin/handlers"
	"github.com/upb/voice-admin/middleware"
	"github.com/upb/voice-admin/repositories"
	"github.com/upb/voice-admin/repositories/postgres"
	"github.com/upb/voice-admin/services"
	"github.com/upb/voice-admin/services/elevenlabs"
	"github.com/upb/voice-admin/services/logs"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory, nil when the database is disabled
	RepoFactory *postgres.RepositoryFactory

	// Repositories, nil when the database is disabled
	Logs  repositories.LogRepository
	Users repositories.UserRepository

	// Services
	ElevenLabs *elevenlabs.Client
	LogService *logs.LogService

	// Auth
	Sessions    auth.SessionProvider
	Guard       *middleware.Guard
	authHandler *auth.Handler

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	PageHandler   *handlers.PageHandler
	HealthHandler *handlers.HealthHandler
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies creates and wires up all application dependencies. The
// database is opened only when cfg.Database.Enabled is set.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	var db *postgres.DB
	if cfg.Database.Enabled {
		factory, err := postgres.NewRepositoryFactory(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db = factory.GetDB()
	}

	deps, err := NewDependenciesWithDB(ctx, cfg, db, logger)
	if err != nil && db != nil {
		_ = db.Close()
	}
	return deps, err
}

// NewDependenciesWithDB wires the application over an already opened pool. db may be nil.
func NewDependenciesWithDB(ctx context.Context, cfg *config.Config, db *postgres.DB, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if db != nil {
		if err := deps.initDatabase(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	} else {
		logger.Warn("database disabled, log storage and user records unavailable")
	}

	deps.initServices(cfg)
	deps.initAuth(cfg)
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase ensures the schema exists and creates the repositories
func (d *Dependencies) initDatabase(ctx context.Context, db *postgres.DB) error {
	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	d.DB = db
	d.RepoFactory = postgres.NewRepositoryFactoryWithDB(db, d.Logger)

	repos := d.RepoFactory.NewRepositories()
	d.Logs = repos.Logs
	d.Users = repos.Users

	d.Logger.Info("repositories initialized")
	return nil
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.ElevenLabs = elevenlabs.NewClient(cfg.ElevenLabs, d.Logger)
	if cfg.ElevenLabs.APIKey == "" {
		d.Logger.Warn("elevenlabs API key not configured, agent endpoints will fail")
	}

	d.LogService = logs.NewLogService(d.Logs, d.Logger)
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	var validator auth.TokenValidator = rejectAllValidator{}
	if cfg.Cognito.ValidatorEnabled() {
		validator = cognito.NewCognitoValidator(cognito.Config{
			Region:      cfg.Cognito.Region,
			UserPoolID:  cfg.Cognito.UserPoolID,
			ClientID:    cfg.Cognito.ClientID,
			CacheTTL:    time.Hour,
			HTTPTimeout: 10 * time.Second,
		})
	} else {
		// Use reject-all validator so every request resolves to no session
		d.Logger.Warn("cognito user pool not configured, all requests are unauthenticated")
	}

	d.Sessions = auth.NewTokenSessionProvider(validator, d.Users, d.Logger)
	d.Guard = middleware.NewGuard(d.Sessions, cfg.Pages, d.Logger)

	var exchanger auth.TokenExchanger
	if cfg.Cognito.Enabled() {
		exchanger = services.NewCognitoTokenExchanger(cfg.Cognito)
	} else {
		d.Logger.Warn("cognito hosted UI not configured, login disabled")
	}
	d.authHandler = auth.NewHandler(cfg, exchanger, validator, d.Logger)
	d.Logger.Info("auth handler initialized")
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.APIHandler = handlers.NewAPIHandler(d.ElevenLabs, d.LogService, d.Logger)
	d.PageHandler = handlers.NewPageHandler(d.ElevenLabs, cfg.Cognito.Enabled(), d.Logger)

	// *postgres.DB must not reach the interface as a typed nil
	var checker handlers.DatabaseChecker
	if d.DB != nil {
		checker = d.DB
	}
	d.HealthHandler = handlers.NewHealthHandler(checker, d.Logger)
}

// rejectAllValidator rejects all tokens (used when Cognito is not configured)
type rejectAllValidator struct{}

func (rejectAllValidator) ValidateToken(context.Context, string) (*cognito.ParsedClaims, error) {
	return nil, fmt.Errorf("authentication not configured")
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
