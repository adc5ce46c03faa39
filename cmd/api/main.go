package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/marcinh992/bank-transactions-api/internal/api/handlers"
	"github.com/marcinh992/bank-transactions-api/internal/api/middleware"
	"github.com/marcinh992/bank-transactions-api/internal/config"
	"github.com/marcinh992/bank-transactions-api/internal/csv"
	"github.com/marcinh992/bank-transactions-api/internal/filestore"
	"github.com/marcinh992/bank-transactions-api/internal/importjob"
	"github.com/marcinh992/bank-transactions-api/internal/jobs"
	"github.com/marcinh992/bank-transactions-api/internal/jobs/inmemory"
	"github.com/marcinh992/bank-transactions-api/internal/logger"
	"github.com/marcinh992/bank-transactions-api/internal/stats"
	bqstore "github.com/marcinh992/bank-transactions-api/internal/storage/bigquery"
	"github.com/marcinh992/bank-transactions-api/internal/storage/memory"
	"github.com/marcinh992/bank-transactions-api/internal/transactions"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	ctx := context.Background()

	// Pick the storage backend. Without a project ID everything runs
	// on in-memory stores, which is enough for local development.
	var (
		jobRepo   importjob.Repository
		txRepo    transactions.Repository
		statsRepo stats.Repository
	)
	if cfg.ProjectID == "" {
		log.Warn().Msg("No GCP project configured - using in-memory storage")
		jobRepo = memory.NewJobStore()
		txRepo = memory.NewTransactionStore()
		statsRepo = memory.NewStatsStore()
	} else {
		store, err := bqstore.NewStore(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer store.Close()
		jobRepo = store.Jobs
		txRepo = store.Transactions
		statsRepo = store.Stats
	}

	// Archiving uploads is optional and best-effort.
	var archiver importjob.Archiver
	if cfg.ArchiveBucket != "" {
		gcsArchive, err := filestore.NewGCSArchive(ctx, cfg.ArchiveBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS archive")
		}
		defer gcsArchive.Close()
		archiver = gcsArchive
	} else {
		log.Warn().Msg("No archive bucket configured - uploaded files will not be archived")
	}

	// Import pipeline.
	materializer := stats.NewMaterializer(txRepo, statsRepo)
	processor := importjob.NewProcessor(
		csv.NewTransactionReader(),
		jobRepo,
		transactions.NewBatchWriter(txRepo),
		materializer,
		log,
	)

	queue := inmemory.NewQueue(cfg.QueueBuffer, cfg.Workers)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	taskHandler := func(ctx context.Context, task *jobs.ImportTask) error {
		return processor.Process(ctx, task.JobID, task.FileBytes)
	}

	log.Info().Int("workers", cfg.Workers).Msg("Starting import workers")
	if err := queue.Start(workerCtx, taskHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start import workers")
	}

	importService := importjob.NewService(jobRepo, queue, archiver, log)
	statsService := stats.NewService(statsRepo)

	importsHandler := handlers.NewImportsHandler(importService, cfg.MaxUploadBytes, log)
	statsHandler := handlers.NewStatsHandler(statsService, log)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/imports", importsHandler.CreateImport).Methods(http.MethodPost)
	api.HandleFunc("/imports/{jobId}", importsHandler.GetImport).Methods(http.MethodGet)
	api.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/monthly", statsHandler.GetMonthlyStats).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(router),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Wait for imports already running; queued tasks that never started
	// are dropped and their jobs stay in RECEIVED.
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping import queue")
	}

	log.Info().Msg("Server exited")
}
