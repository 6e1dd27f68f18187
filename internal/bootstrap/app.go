package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/spreadsheets/internal/config"
	"github.com/locvowork/spreadsheets/internal/database"
	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/handler"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/locvowork/spreadsheets/internal/repository"
	"github.com/locvowork/spreadsheets/internal/service"
	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/locvowork/spreadsheets/pkg/googlecloud"
	"github.com/locvowork/spreadsheets/pkg/style"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
	GCP  *googlecloud.Client
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{Echo: e}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH)
	if cfg.LOG_LEVEL != "" {
		if err := logger.SetLevel(cfg.LOG_LEVEL); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	repo, err := a.newFileReferenceRepository(ctx, cfg)
	if err != nil {
		return err
	}

	processors, err := config.LoadProcessorDefinitions(cfg.PROCESSOR_CONFIG_PATH)
	if err != nil {
		return fmt.Errorf("failed to load processor definitions: %w", err)
	}
	logger.InfoLog(ctx, "Loaded %d processor definitions from %s", len(processors.Processors), cfg.PROCESSOR_CONFIG_PATH)

	// Initialize dependencies
	extractor := extract.New()
	readerSvc := service.NewReaderService(cfg.STORAGE_PATH)
	extractorSvc := service.NewExtractorService(repo, readerSvc, extractor, style.NewService(cfg.STYLE_SCOPE))
	processorSvc := service.NewProcessorService(extractorSvc, cfg.STYLE_SCOPE)
	formSvc := service.NewFormElementService(repo, readerSvc, extractor)

	sheetHandler := handler.NewSpreadsheetHandler(repo, readerSvc, processorSvc, formSvc, processors)
	renderHandler := handler.NewRenderHandler(extractorSvc, cfg.STYLE_SCOPE)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(sheetHandler, renderHandler)

	return nil
}

func (a *App) newFileReferenceRepository(ctx context.Context, cfg config.EnvConfig) (domain.FileReferenceRepository, error) {
	switch cfg.FILE_REFERENCE_BACKEND {
	case config.BackendDatastore:
		gcpClient, err := googlecloud.NewClient(ctx, cfg.GCP_PROJECT_ID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCP client: %w", err)
		}
		a.GCP = gcpClient
		if host, ok := googlecloud.UsesEmulator(); ok {
			logger.InfoLog(ctx, "Using Datastore emulator at %s", host)
		}
		return repository.NewDatastoreFileReferenceRepository(gcpClient), nil

	case config.BackendMemory:
		refs, err := repository.ScanStorage(cfg.STORAGE_PATH, service.SupportedExtensions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan storage %s: %w", cfg.STORAGE_PATH, err)
		}
		logger.InfoLog(ctx, "Indexed %d files below %s", len(refs), cfg.STORAGE_PATH)
		return repository.NewMemoryFileReferenceRepository(refs...), nil

	default:
		dbConfig := database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		}
		db, err := database.NewPostgresDB(ctx, dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		if err := repository.EnsureFileReferenceSchema(ctx, db); err != nil {
			return nil, err
		}
		return repository.NewPostgresFileReferenceRepository(db), nil
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(handler.RequestIDContext)
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(sheetHandler *handler.SpreadsheetHandler, renderHandler *handler.RenderHandler) {
	api := a.Echo.Group("/api/v1")
	api.GET("/dsn", sheetHandler.ParseDSNHandler)
	api.POST("/form-element", sheetHandler.FormElementHandler)
	api.GET("/files/:uid/sheets", sheetHandler.SheetsHandler)
	api.POST("/process/:processor", sheetHandler.ProcessHandler)

	renderGroup := a.Echo.Group("/render")
	renderGroup.GET("/table", renderHandler.TableHandler)
	renderGroup.GET("/tabs", renderHandler.TabsHandler)
}

func (a *App) Run() error {
	if a.DB != nil {
		defer a.DB.Close()
	}
	if a.GCP != nil {
		defer a.GCP.Close()
	}
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
