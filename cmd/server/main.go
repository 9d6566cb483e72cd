// Package main is the entry point for the lexiflow server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexiflow/lexiflow/internal/api"
	"github.com/lexiflow/lexiflow/internal/config"
	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/domain/srs"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/lexiflow/lexiflow/internal/platform/gemini"
	"github.com/lexiflow/lexiflow/internal/platform/logger"
	"github.com/lexiflow/lexiflow/internal/platform/openai"
	"github.com/lexiflow/lexiflow/internal/platform/sqlite"
	"github.com/lexiflow/lexiflow/internal/practice"
	"github.com/lexiflow/lexiflow/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("starting lexiflow server",
		"port", cfg.Server.Port,
		"storage_path", cfg.Storage.Path)

	snapshots, err := sqlite.NewSnapshotStore(cfg.Storage.Path, log)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer func() {
		if err := snapshots.Close(); err != nil {
			log.Error("failed to close snapshot store", "error", err)
		}
	}()

	vocabStore := store.New(log)
	if err := restoreSnapshot(vocabStore, snapshots, log); err != nil {
		return err
	}

	enricher, err := enrichment.NewDynamic(vocabStore, enricherFactory(cfg, log), log)
	if err != nil {
		return fmt.Errorf("failed to create enrichment provider: %w", err)
	}

	controller, err := enrichment.NewController(vocabStore, enricher, log)
	if err != nil {
		return fmt.Errorf("failed to create enrichment controller: %w", err)
	}
	vocabStore.RegisterOnChange(controller.OnStateChange)

	persister := newSnapshotPersister(vocabStore, snapshots,
		time.Duration(cfg.Storage.FlushDebounceMillis)*time.Millisecond, log)
	vocabStore.RegisterOnChange(persister.MarkDirty)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selector := practice.NewSelector(vocabStore, rng)
	session := practice.NewSession(vocabStore, selector, enricher, srs.NewDefaultService(), log, nil)

	router := api.NewRouter(api.Deps{
		Store:    vocabStore,
		Queue:    controller,
		Enricher: enricher,
		Session:  session,
	})

	controller.Start()
	persister.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		controller.Stop()
		persister.Stop()
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-shutdownCh:
		log.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed, forcing close", "error", err)
		_ = server.Close()
	}

	// The controller waits for in-flight enrichment tasks; pending queue
	// items persist with the final snapshot and resume on next start.
	controller.Stop()
	persister.Stop()

	log.Info("server stopped")
	return nil
}

// restoreSnapshot loads the persisted document, if any, into the in-memory
// store. A missing snapshot is a normal first run.
func restoreSnapshot(vocabStore *store.Store, snapshots *sqlite.SnapshotStore, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap == nil {
		log.Info("no persisted snapshot found, starting empty")
		return nil
	}
	if err := vocabStore.ImportData(snap); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	log.Info("restored persisted snapshot",
		"words", len(snap.Words),
		"pending_queue", len(snap.ProcessingQueue))
	return nil
}

// enricherFactory builds the provider-specific enricher for the current
// settings. The dynamic provider calls it again whenever a settings change
// affects the client.
func enricherFactory(cfg *config.Config, log *slog.Logger) enrichment.Factory {
	return func(ctx context.Context, settings domain.Settings) (enrichment.Enricher, error) {
		prompts, err := enrichment.NewPromptSet(settings)
		if err != nil {
			return nil, err
		}

		switch settings.Provider {
		case domain.ProviderOpenAI:
			return openai.NewEnricher(log, openai.ConfigFromSettings(settings), prompts)
		default:
			geminiCfg := gemini.ConfigFromSettings(settings)
			geminiCfg.MaxRetries = cfg.Enrichment.MaxRetries
			geminiCfg.RetryDelaySeconds = cfg.Enrichment.RetryDelaySeconds
			return gemini.NewEnricher(ctx, log, geminiCfg, prompts)
		}
	}
}
