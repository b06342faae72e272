package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resumepro/internal/account"
	"resumepro/internal/assistant"
	googleauth "resumepro/internal/auth"
	"resumepro/internal/credits"
	"resumepro/internal/diagrams"
	"resumepro/internal/drafts"
	"resumepro/internal/functions"
	"resumepro/internal/gateway"
	"resumepro/internal/llm"
	"resumepro/internal/llm/gemini"
	"resumepro/internal/llm/openai"
	"resumepro/internal/records"
	"resumepro/internal/resumes"
	"resumepro/internal/scoring"
	"resumepro/internal/services/health"
	"resumepro/internal/shared/config"
	"resumepro/internal/shared/server"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/storage/db"
	"resumepro/internal/shared/storage/object"
	localstore "resumepro/internal/shared/storage/object/local"
	s3store "resumepro/internal/shared/storage/object/s3"
	"resumepro/internal/users"
	"resumepro/internal/wizard"
	"resumepro/resume/templates"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.ObjectStore
	Gateway *gateway.Gateway
	LLM     llm.Client
	Catalog *templates.Catalog

	DraftStore  drafts.Store
	RecordsRepo records.Repo
	UsersRepo   users.Repo
	Credits     *credits.Service

	Wizard          *wizard.Manager
	UsersService    *users.Service
	AccountService  *account.Service
	DiagramsService *diagrams.Service
	ResumesService  *resumes.Service
	ScoringService  *scoring.Service
	ChatService     *assistant.Service
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		LLM:     client,
		Catalog: templates.Default(),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        app.Gateway,
		Health:          health.NewService(app.DB),
		AuthHandler:     googleauth.NewHandler(app.UsersService, app.Gateway),
		GoogleAuth:      app.GoogleAuth,
		UserHandler:     users.NewHandler(app.UsersService),
		WizardHandler:   wizard.NewHandler(app.Wizard),
		CreditsHandler:  credits.NewHandler(app.Gateway),
		ScoringHandler:  scoring.NewHandler(app.ScoringService),
		FunctionHandler: functions.NewHandler(app.Gateway),
		ChatHandler:     assistant.NewHandler(app.ChatService),
		ResumeHandler:   resumes.NewHandler(app.ResumesService),
		DiagramHandler:  diagrams.NewHandler(app.DiagramsService, middleware.AllowOrigin(cfg.CORSAllowOrigin)),
		AccountHandler:  account.NewHandler(app.AccountService),
	})

	return app, nil
}

// Close flushes pending wizard autosaves and releases the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Wizard != nil {
		if err := a.Wizard.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wizard shutdown: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			_ = sqlDB.Close()
			return nil, nil
		}
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLLM selects the provider. Outside dev a misconfigured provider is fatal;
// in dev the placeholder client keeps the API usable with fallback answers.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "openai":
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: %s provider unavailable; using placeholder LLM: %v", cfg.LLMProvider, err)
			return llm.PlaceholderClient{}, nil
		}
		return nil, err
	}
	return client, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.DraftStore = &drafts.PGStore{DB: app.DB}
		app.RecordsRepo = &records.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.Credits = credits.NewPostgresService(credits.NewPGStore(app.DB, app.Config.DefaultCredits))
	} else {
		app.DraftStore = drafts.NewMemoryStore()
		app.RecordsRepo = records.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		app.Credits = credits.NewService(app.Config.DefaultCredits)
	}

	gw := gateway.New(gateway.Options{
		Records: app.RecordsRepo,
		Objects: app.Store,
		Credits: app.Credits,
	})
	if err := gw.RegisterFunction(gateway.FunctionAnalyzeResume, scoring.NewAnalyzer(app.LLM).Invoke); err != nil {
		return err
	}
	if err := gw.RegisterFunction(gateway.FunctionChatAssistant, assistant.New(app.LLM).Invoke); err != nil {
		return err
	}
	app.Gateway = gw

	app.Wizard = wizard.NewManager(wizard.Deps{
		Drafts:        app.DraftStore,
		Gateway:       gw,
		Catalog:       app.Catalog,
		AutosaveDelay: app.Config.AutosaveDelay,
	})

	app.UsersService = users.NewService(app.UsersRepo)
	app.AccountService = account.NewService(app.DraftStore, app.RecordsRepo, app.Wizard)
	app.DiagramsService = diagrams.NewService(gw)
	app.ResumesService = resumes.NewService(gw, app.Catalog)
	app.ScoringService = scoring.NewService(gw)
	app.ChatService = assistant.NewService(gw)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)

	if app.Wizard == nil || app.UsersService == nil {
		return errors.New("failed to initialize services")
	}
	return nil
}
