package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scientify/api"
	"scientify/config"
	"scientify/converter"
	"scientify/extract"
	"scientify/keywords"
	"scientify/services"
	"scientify/storage"
)

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logging, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	// Setup Database
	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := storage.Migrate(db); err != nil {
		logging.Fatal("Failed to migrate database", zap.Error(err))
	}
	logging.Info("Successfully connected to publications database.", zap.String("driver", cfg.DBDriver))

	// Setup Services
	renderer := converter.NewRodRenderer(cfg.ChromeURL, logging)
	defer func() {
		if err := renderer.Close(); err != nil {
			logging.Warn("Closing renderer failed", zap.Error(err))
		}
	}()
	pipeline := converter.NewPipeline(
		converter.DefaultChains(cfg.PandocPath, renderer, converter.PDFPageCount),
		cfg.ConversionWorkers, cfg.ConversionTimeout, logging)
	ranker, err := keywords.NewRanker(cfg.KeywordLanguage)
	if err != nil {
		logging.Fatal("Keyword ranker setup failed", zap.Error(err))
	}

	svc := api.Services{
		DB:           db,
		Ingest:       services.NewIngestService(db, logging, pipeline, extract.NewDispatcher(logging), ranker, cfg.KeywordCount),
		Search:       services.NewSearchService(db, logging),
		Publications: services.NewPublicationService(db, logging),
	}

	// Setup Router
	router := api.NewRouter(api.Options{
		APISecretKey:   cfg.APISecretKey,
		CORSOrigin:     cfg.CORSOrigin,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		DebugRoutes:    cfg.DebugRoutes,
	}, svc, logging)

	// Setup Cron
	scheduler := setupArchive(cfg, db, logging)
	if scheduler != nil {
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       cfg.ConversionTimeout + 30*time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads warten auf die Konvertierung
		WriteTimeout: cfg.ConversionTimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down server...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", zap.Error(err))
	}
}

// setupArchive plant den S3-Archivspiegel, sofern konfiguriert.
func setupArchive(cfg *config.Config, db *gorm.DB, logging *zap.Logger) *cron.Cron {
	if !cfg.ArchiveEnabled() {
		logging.Info("S3 archive disabled")
		return nil
	}

	client, err := storage.NewArchiveClient(context.Background(), cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	archiver := services.NewArchiver(db, logging, client, cfg.S3URL, cfg.S3Bucket)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ArchiveSchedule, func() {
		logging.Info("Running scheduled archive job...")
		count, err := archiver.Run(context.Background())
		if err != nil {
			logging.Error("Archive job failed", zap.Error(err))
			return
		}
		logging.Info("Archive job completed", zap.Int("archived", count))
	})
	if err != nil {
		logging.Fatal("Invalid ARCHIVE_SCHEDULE", zap.String("schedule", cfg.ArchiveSchedule), zap.Error(err))
	}
	return scheduler
}
