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

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/scenepix/scenepix/internal/asset"
	"github.com/scenepix/scenepix/internal/auth"
	"github.com/scenepix/scenepix/internal/config"
	"github.com/scenepix/scenepix/internal/db"
	"github.com/scenepix/scenepix/internal/fonts"
	"github.com/scenepix/scenepix/internal/history"
	mw "github.com/scenepix/scenepix/internal/middleware"
	"github.com/scenepix/scenepix/internal/output"
	"github.com/scenepix/scenepix/internal/preview"
	"github.com/scenepix/scenepix/internal/render"
	"github.com/scenepix/scenepix/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fontRegistry, err := fonts.NewRegistry()
	if err != nil {
		slog.Error("load embedded fonts", "error", err)
		os.Exit(1)
	}
	if cfg.FontDir != "" {
		if err := fontRegistry.LoadDir(cfg.FontDir); err != nil {
			slog.Error("load font dir", "error", err, "dir", cfg.FontDir)
			os.Exit(1)
		}
	}

	loader := asset.NewLoader(cfg.AssetDir)
	renderer := render.NewRenderer(fontRegistry, loader)

	outputs, err := output.NewStore(cfg.OutputDir)
	if err != nil {
		slog.Error("create output store", "error", err)
		os.Exit(1)
	}

	var store history.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store, err = history.NewPGStore(ctx, pool)
		if err != nil {
			slog.Error("prepare history store", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no database configured, keeping render history in memory")
		store = history.NewMemoryStore()
	}

	authService := auth.NewService(cfg.APIKeyHash, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)
	if !authService.Enabled() {
		slog.Warn("no api key configured, endpoints are unauthenticated")
	}

	renderHandler := render.NewHandler(renderer, outputs, store)
	historyHandler := history.NewHandler(store)

	assetHandler, err := asset.NewHandler(cfg.AssetDir)
	if err != nil {
		slog.Error("create asset dir", "error", err, "dir", cfg.AssetDir)
		os.Exit(1)
	}

	hub := preview.NewHub(renderer)
	go hub.Run()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Auth route (public)
	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Asset endpoints (public, used by scene authors)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Rendered outputs (public, URLs come from render responses)
	r.PathPrefix("/renders/").Handler(outputs.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/render", renderHandler.Render).Methods("POST", "OPTIONS")
	api.HandleFunc("/renders", historyHandler.List).Methods("GET")
	api.HandleFunc("/renders/{renderId}", historyHandler.Get).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/preview", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, cfg.AllowedOrigins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

		// Stop the hub first so preview sessions close cleanly
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *preview.Hub, authSvc *auth.Service, allowedOrigins string) {
	// Browsers cannot set headers on websocket dials, so auth rides the
	// query string.
	if authSvc.Enabled() {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if _, err := authSvc.ValidateToken(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(allowedOrigins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	session := preview.NewSession(hub, conn, typeid.NewSessionID())
	hub.Register(session)

	ctx := r.Context()
	go session.WritePump(ctx)
	session.ReadPump(ctx)
}

// originPatterns converts configured origins (full URLs) to the host
// patterns websocket.AcceptOptions expects.
func originPatterns(allowedOrigins string) []string {
	var patterns []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		origin = strings.TrimPrefix(origin, "https://")
		origin = strings.TrimPrefix(origin, "http://")
		if origin != "" {
			patterns = append(patterns, origin)
		}
	}
	return patterns
}
