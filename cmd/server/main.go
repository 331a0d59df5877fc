package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/vecedit/internal/auth"
	"github.com/inamate/vecedit/internal/config"
	"github.com/inamate/vecedit/internal/engine"
	mw "github.com/inamate/vecedit/internal/middleware"
	"github.com/inamate/vecedit/internal/project"
	"github.com/inamate/vecedit/internal/session"
	"github.com/inamate/vecedit/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	keyHash, err := auth.HashAccessKey(cfg.AccessKey)
	if err != nil {
		slog.Error("hash access key", "error", err)
		os.Exit(1)
	}
	authService := auth.NewService(cfg.JWTSecret, keyHash, cfg.TokenTTL)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(st)
	projectHandler := project.NewHandler(projectService)

	hub := session.NewHub(projectService, engine.Options{
		SnapRadius:   cfg.SnapRadius,
		HistoryLimit: cfg.HistoryLimit,
	}, cfg.AutosaveInterval)
	go hub.Run()

	sessionHandler := session.NewHandler(hub, originPatterns(cfg.Origins()))

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	projectHandler.Routes(api)
	api.HandleFunc("/operations", sessionHandler.Operations).Methods("GET")
	api.HandleFunc("/sessions/save", sessionHandler.Save).Methods("POST")
	api.HandleFunc("/projects/{projectId}/draw", sessionHandler.Draw).Methods("GET")
	api.HandleFunc("/projects/{projectId}/commands", sessionHandler.Command).Methods("POST")

	// WebSocket endpoint; browsers pass the token as a query parameter
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(authService.AuthMiddleware)
	ws.HandleFunc("/project/{projectId}", sessionHandler.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty sessions
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "memoryStore", cfg.UseMemoryStore())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.UseMemoryStore() {
		slog.Warn("DATABASE_URL not set, projects are kept in memory")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

// originPatterns strips the scheme from allowed origins, the form the
// websocket origin check expects.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		out = append(out, o)
	}
	return out
}
