package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"document-backend/internal/documents"
	"document-backend/internal/extract"
	"document-backend/internal/ingest"
	"document-backend/internal/services/health"
	"document-backend/internal/shared/auth"
	"document-backend/internal/shared/config"
	"document-backend/internal/shared/server"
	"document-backend/internal/shared/storage/db"
	"document-backend/internal/shared/telemetry"
	"document-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Signer *auth.Signer
	Engine *extract.Engine
	Log    *telemetry.Logger

	DocumentsRepo documents.Repo
	UsersRepo     users.Repo

	DocumentsService *documents.Service
	IngestService    *ingest.Service
	UsersService     *users.Service
	Health           *health.Service

	DocumentsHandler *documents.Handler
	IngestHandler    *ingest.Handler
	UsersHandler     *users.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	log := telemetry.Default()

	sqlDB, err := buildDB(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Signer: auth.NewSigner(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Log:    log,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Signer:           app.Signer,
		Health:           app.Health,
		UsersHandler:     app.UsersHandler,
		DocumentsHandler: app.DocumentsHandler,
		IngestHandler:    app.IngestHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, log *telemetry.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Warn("DATABASE_URL empty; using in-memory repositories", nil)
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Warn("database connect failed; using in-memory repositories", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	app.Engine = extract.NewEngine(extract.Options{
		Lang:         app.Config.OCRLang,
		DPI:          app.Config.OCRDPI,
		Timeout:      app.Config.OCRTimeout,
		TesseractCmd: app.Config.TesseractCmd,
		PdftoppmCmd:  app.Config.PdftoppmCmd,
	}, app.Log)

	app.DocumentsService = documents.NewService(app.DocumentsRepo, app.Log)
	app.IngestService = ingest.NewService(app.Engine, app.DocumentsRepo, app.Log, app.Config.TempDir)
	app.UsersService = users.NewService(app.UsersRepo, app.Log)
	app.Health = health.NewService(app.DB)

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.IngestHandler = ingest.NewHandler(app.IngestService)
	app.UsersHandler = users.NewHandler(app.UsersService, app.Signer)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
