package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-planet/app/api"
	"github.com/lysyi3m/rss-planet/app/cfg"
	"github.com/lysyi3m/rss-planet/app/config"
	"github.com/lysyi3m/rss-planet/app/database"
	"github.com/lysyi3m/rss-planet/app/feed"
	"github.com/lysyi3m/rss-planet/app/pipeline"
	"github.com/lysyi3m/rss-planet/app/render"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting RSS Planet", "version", appCfg.Version)

	sources, err := config.NewLoader(appCfg.FeedsFile).Load()
	if err != nil {
		slog.Error("Failed to load feed list", "file", appCfg.FeedsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed list loaded", "file", appCfg.FeedsFile, "sources", len(sources))

	// The store must be ready before any source is fetched.
	db, err := database.NewConnection(appCfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Debug("Database ready", "schema_version", version, "dirty", dirty)

	entryRepo := database.NewEntryRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	renderer, err := render.NewRenderer(appCfg.TemplatesDir, appCfg.OutputDir, appCfg.Location)
	if err != nil {
		slog.Error("Failed to initialize renderer", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(feed.NewParser(), httpClient, appCfg.WorkerCount, appCfg.GetTimeout(), appCfg.UserAgent)

	var extractor pipeline.ExtractorInterface
	if appCfg.ExtractContent {
		extractor = feed.NewContentExtractor(httpClient, appCfg.GetTimeout(), appCfg.UserAgent)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.NewPipeline(fetcher, extractor, entryRepo, renderer, appCfg.LatestCount, appCfg.Location)
	if _, err := p.Run(ctx, sources); err != nil {
		slog.Error("Batch run failed", "error", err)
		os.Exit(1)
	}

	if err := settingsRepo.SetSetting("last_run_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Warn("Failed to record run timestamp", "error", err)
	}

	if !appCfg.Serve {
		return
	}

	serve(ctx, entryRepo, settingsRepo, appCfg.OutputDir, appCfg.Port)
}

// serve keeps the process alive after the batch and serves the generated
// site until interrupted.
func serve(ctx context.Context, entryRepo database.EntryRepository,
	settingsRepo database.SettingsRepository, outputDir, port string) {
	handler := api.NewHandler(entryRepo, settingsRepo, outputDir)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Preview server started", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Preview server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Preview server shutdown error", "error", err)
	} else {
		slog.Info("Preview server stopped")
	}
}
