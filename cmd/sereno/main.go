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

	"github.com/ent0n29/sereno/internal/companion"
	"github.com/ent0n29/sereno/internal/config"
	"github.com/ent0n29/sereno/internal/emotion"
	"github.com/ent0n29/sereno/internal/httpapi"
	"github.com/ent0n29/sereno/internal/memory"
	"github.com/ent0n29/sereno/internal/observability"
	"github.com/ent0n29/sereno/internal/policy"
	"github.com/ent0n29/sereno/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	stages := observability.NewTurnStageWindow(512)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()

	if cfg.DatabaseURL == "" {
		log.Printf("memory store: in-memory")
	} else {
		log.Printf("memory store: postgres")
	}

	conversations := memory.NewConversations(store, cfg.MaxHistory)

	orchestrator := companion.NewOrchestrator(conversations, companion.Options{
		Emotions:   emotion.NewEngine(nil),
		Plans:      policy.NewEngine(),
		Engagement: policy.NewEngagementTracker(),
		Drafts:     companion.NewDraftBank(nil),
		Renderer:   render.New(),
		Metrics:    metrics,
		Stages:     stages,
	})

	api := httpapi.New(cfg, orchestrator, metrics, stages)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	if inmem, ok := store.(*memory.InMemoryStore); ok && cfg.SessionInactivityTimeout > 0 {
		inmem.SetInactivityTimeout(cfg.SessionInactivityTimeout)
		inmem.StartJanitor(runCtx, 5*time.Second)
		log.Printf("session janitor enabled, inactivity timeout %s", cfg.SessionInactivityTimeout)
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
