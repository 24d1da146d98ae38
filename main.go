package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/config"
	"github.com/fixtureforge/forge-engine/pkg/database"
	"github.com/fixtureforge/forge-engine/pkg/handlers"
	"github.com/fixtureforge/forge-engine/pkg/logging"
	"github.com/fixtureforge/forge-engine/pkg/middleware"
	"github.com/fixtureforge/forge-engine/pkg/repositories"
	"github.com/fixtureforge/forge-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("output_dir", cfg.Generator.OutputDir),
		zap.String("downloads_dir", cfg.Generator.DownloadsDir),
		zap.Bool("job_store", cfg.Database.Enabled),
	)

	// Optional generation-job audit store
	var jobs repositories.JobRepository
	if cfg.Database.Enabled {
		connStr := cfg.Database.ConnectionString()
		logger.Info("Connecting to job store",
			zap.String("target", logging.SanitizeConnectionString(connStr)),
		)

		if err := database.RunMigrations(connStr, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		db, err := database.NewConnection(context.Background(), &database.Config{
			URL:            connStr,
			MaxConnections: cfg.Database.MaxConnections,
		})
		if err != nil {
			logger.Fatal("Failed to connect to job store", zap.Error(err))
		}
		defer db.Close()

		jobs = repositories.NewJobRepository(db)
	}

	// Generation pipeline
	synthesizer := services.NewRecordSynthesizer(nil, logger)
	materializer := services.NewFileMaterializer(logger)
	archiver := services.NewArchiveBuilder(cfg.Generator.DownloadsDir, logger)
	driver := services.NewIngestionDriver(synthesizer, materializer, archiver, jobs, cfg.Generator.OutputDir, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	generateHandler := handlers.NewGenerateHandler(driver, cfg, logger)
	generateHandler.RegisterRoutes(mux)

	downloadHandler := handlers.NewDownloadHandler(cfg.Generator.DownloadsDir, logger)
	downloadHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)
	addr := cfg.BindAddr + ":" + cfg.Port

	logger.Info("Starting forge-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
	)

	if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		err = http.ListenAndServeTLS(addr, cfg.TLSCertPath, cfg.TLSKeyPath, handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}
	if err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
