// internextract — structured job-offer extraction service.
//
// Turns unstructured job-offer text into structured, editable, persisted
// records and compares persisted records against each other:
//   - POST /extract  — structured extraction via the inference service
//   - /records       — per-owner persistence with a live snapshot view
//   - POST /compare  — normalized comparison of ≥2 saved records
//   - GET  /events   — SSE forward of every wholesale snapshot
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

	"github.com/joho/godotenv"

	"github.com/Malek720-420/InternExtract/internal/auth"
	"github.com/Malek720-420/InternExtract/internal/compare"
	"github.com/Malek720-420/InternExtract/internal/config"
	"github.com/Malek720-420/InternExtract/internal/db"
	"github.com/Malek720-420/InternExtract/internal/extract"
	"github.com/Malek720-420/InternExtract/internal/httpapi"
	"github.com/Malek720-420/InternExtract/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[internextract] No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[internextract] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[internextract] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[internextract] PostgreSQL: %v", err)
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("[internextract] Schema: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[internextract] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[internextract] Redis: %v", err)
	}
	defer rdb.Close()

	// ── Session ──────────────────────────────────────────────────────────────
	// A failed sign-in is not fatal: extraction and comparison stay usable,
	// every store operation reports Unauthenticated.
	ownerID := ""
	if session, err := auth.Establish(ctx, pool, cfg.OwnerID); err != nil {
		log.Printf("[internextract] Authentication failed — persistence disabled: %v", err)
	} else {
		ownerID = session.OwnerID
	}

	// ── Services ─────────────────────────────────────────────────────────────
	client := extract.NewClient(cfg.GeminiAPIKey)
	if cfg.GeminiModel != "" {
		client.Model = cfg.GeminiModel
	}
	engine := compare.NewEngine(client)

	recordStore := store.New(pool, rdb, ownerID)
	recordStore.ResyncSpec = cfg.ResyncSpec

	cache := httpapi.NewSnapshotCache()
	if ownerID != "" {
		err := recordStore.Subscribe(ctx, cache.Set, func(err error) {
			log.Printf("[internextract] Snapshot refresh failed: %v", err)
		})
		if err != nil {
			log.Fatalf("[internextract] Subscribe: %v", err)
		}
	}

	// Reachability check only — a failure here just means the first
	// extraction will report it again.
	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := client.Ping(pingCtx); err != nil {
		log.Printf("[internextract] Inference service unreachable: %v", err)
	}
	pingCancel()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := httpapi.NewHandler(client, engine, recordStore, cache)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		// No write timeout: /events streams for the connection lifetime.
	}

	go func() {
		log.Printf("[internextract] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[internextract] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[internextract] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[internextract] Shutdown error: %v", err)
	}
	log.Println("[internextract] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"internextract","version":%q}`, version)
}
