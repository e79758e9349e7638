package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/books"
	http_controllers "github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/metadata"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/session"
	"github.com/mrlokans/catalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	if cfg.Lookup.APIKey == "" {
		log.Printf("WARNING: API key is not set. Book search will fail. Set 'API_KEY' environment variable to enable.")
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library Catalog v%s", version)

	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	lookupClient := metadata.NewClient(cfg.Lookup)
	catalogService := catalog.NewService(books.NewRepository(db.DB), lookupClient)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		tasksPath := cfg.Database.DSN
		if !db.IsSQLite() {
			tasksPath = config.DefaultDatabasePath
		}

		taskClient, err = tasks.NewClient(tasksPath, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewBackfillISBNQueue(catalogService),
			tasks.NewBackfillAllISBNsQueue(catalogService, taskClient),
		)
		catalogService.SetBackfillQueue(taskClient)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic ISBN backfill; the sweep goes through the queue when there is one
	var sweepQueue scheduler.SweepEnqueuer
	if taskClient != nil {
		sweepQueue = taskClient
	}
	backfillScheduler := scheduler.NewISBNBackfillScheduler(cfg.Tasks.BackfillSchedule, catalogService, sweepQueue)
	if err := backfillScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start ISBN backfill scheduler: %v", err)
	}

	// Sessions live next to the catalog in SQLite, in memory otherwise
	var sessions *session.Manager
	if db.IsSQLite() {
		sqlDB, err := db.SQLDB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
		sessions, err = session.NewManager(sqlDB, cfg.Session)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}
	} else {
		sessions, err = session.NewManager(nil, cfg.Session)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}
		log.Printf("Sessions are kept in memory for PostgreSQL deployments")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:       catalogService,
		Database:      db,
		Sessions:      sessions,
		CSRFKey:       session.CSRFKey(cfg.Session.SecretKey),
		SecureCookies: cfg.Session.SecureCookies,
		TemplatesPath: cfg.UI.TemplatesPath,
		StaticPath:    cfg.UI.StaticPath,
		Version:       version,
	})

	onShutdown := func(ctx context.Context) {
		backfillScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
