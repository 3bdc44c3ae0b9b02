package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/contract"
	contractpg "github.com/hrlink/people-sync/internal/contract/postgres"
	"github.com/hrlink/people-sync/internal/core/events"
	"github.com/hrlink/people-sync/internal/datasync"
	datasyncpg "github.com/hrlink/people-sync/internal/datasync/postgres"
	"github.com/hrlink/people-sync/internal/integrity"
	integritypg "github.com/hrlink/people-sync/internal/integrity/postgres"
	"github.com/hrlink/people-sync/internal/profile"
	profilepg "github.com/hrlink/people-sync/internal/profile/postgres"
	"github.com/hrlink/people-sync/internal/termination"
	terminationpg "github.com/hrlink/people-sync/internal/termination/postgres"
	"github.com/hrlink/people-sync/internal/transport"
	"github.com/hrlink/people-sync/internal/transport/rest"
	"github.com/hrlink/people-sync/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	ContractHandler    *contract.Handler
	SyncHandler        *datasync.Handler
	TerminationHandler *termination.Handler
	IntegrityHandler   *integrity.Handler
	ProfileHandler     *profile.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB,
		deps.ContractHandler,
		deps.SyncHandler,
		deps.TerminationHandler,
		deps.IntegrityHandler,
		deps.ProfileHandler,
		deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// share the sqlx connection pool with GORM
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)
	baseHandler := transport.NewBaseHandler(appLogger)

	// sync orchestration
	syncStore := datasyncpg.NewStore(gormDB)
	syncService := datasync.NewService(syncStore, appLogger)
	syncHandler := datasync.NewHandler(baseHandler, syncService)
	datasync.NewEventHandler(syncService, appLogger).RegisterEventHandlers(eventBus)

	// commit-then-drain auto-sync
	coordinator := datasync.NewCoordinator(syncService, appLogger)
	if err := coordinator.Register(gormDB); err != nil {
		return nil, fmt.Errorf("failed to register auto-sync callbacks: %w", err)
	}
	if !config.Sync.AutoSyncEnabled {
		coordinator.Disable()
	}

	// contract lifecycle
	contractRepo := contractpg.NewContractRepository(gormDB)
	contractService := contract.NewService(contractRepo, eventBus, appLogger)
	contractHandler := contract.NewHandler(baseHandler, contractService)

	// termination and retention
	terminationRepo := terminationpg.NewTerminationRepository(gormDB)
	terminationService := termination.NewService(terminationRepo, config.Retention.Days(), eventBus, appLogger)
	terminationHandler := termination.NewHandler(baseHandler, terminationService)

	// integrity validator
	integrityRepo := integritypg.NewIntegrityRepository(gormDB)
	integrityService := integrity.NewService(integrityRepo, appLogger)
	integrityHandler := integrity.NewHandler(baseHandler, integrityService)

	// profile write path, the auto-sync trigger surface
	profileRepo := profilepg.NewProfileRepository(gormDB)
	profileService := profile.NewService(profileRepo, coordinator, appLogger)
	profileHandler := profile.NewHandler(baseHandler, profileService)

	return &Dependencies{
		Config:             config,
		Logger:             appLogger,
		DB:                 db,
		GormDB:             gormDB,
		Router:             chi.NewRouter(),
		ContractHandler:    contractHandler,
		SyncHandler:        syncHandler,
		TerminationHandler: terminationHandler,
		IntegrityHandler:   integrityHandler,
		ProfileHandler:     profileHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
