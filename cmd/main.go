// modoojob-search-service
//
// Incremental multi-source search aggregator for the ModooJob platform.
// Exposes a REST/SSE API used by the Gateway to implement:
//   - job search (page-numbered, firebase + work24 sources, AI summary)
//   - talent search (cursor-based, event-per-candidate)
//   - cached search state restore across page navigations
//   - job detail lookup and per-user likes
//
// Search state snapshots live in Redis when REDIS_URL is set; otherwise an
// in-process store swept by a cron janitor stands in.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modoojob/search-service/internal/config"
	"modoojob/search-service/internal/db"
	"modoojob/search-service/internal/httpapi"
	"modoojob/search-service/internal/likes"
	"modoojob/search-service/internal/search"
	"modoojob/search-service/internal/snapshot"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[search-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[search-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[search-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[search-service] PostgreSQL connected ✓")

	// ── Snapshot store ───────────────────────────────────────────────────────
	var store snapshot.Store
	if cfg.RedisURL != "" {
		log.Println("[search-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[search-service] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[search-service] Redis connected ✓")
		store = snapshot.NewRedisStore(rdb)
	} else {
		log.Println("[search-service] REDIS_URL not set — using in-process snapshot store")
		mem := snapshot.NewMemoryStore()
		janitor := snapshot.NewJanitor(mem, int(cfg.SweepInterval.Minutes()))
		if err := janitor.Start(); err != nil {
			log.Fatalf("[search-service] Janitor: %v", err)
		}
		defer janitor.Stop()
		store = mem
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()

	client := search.NewClient(cfg.JobAPIBase, cfg.TalentAPIBase)
	api := httpapi.NewHandler(client, store)
	api.DefaultRegion = cfg.DefaultRegion
	api.IdleTimeout = cfg.IdleTimeout
	api.SnapshotTTL = cfg.SnapshotTTL
	api.TalentMaxAge = cfg.SnapshotTTL
	api.RegisterRoutes(mux)

	likesHandler := likes.NewHandler(likes.NewService(pool))
	likesHandler.RegisterRoutes(mux)

	// WriteTimeout stays zero: search responses are long-lived SSE streams.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[search-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[search-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[search-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[search-service] Shutdown error: %v", err)
	}
	log.Println("[search-service] Stopped.")
}
