package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erpdash/internal/auth"
	"erpdash/internal/config"
	"erpdash/internal/dashboard"
	"erpdash/internal/db"
	mcpserver "erpdash/internal/mcp"
	"erpdash/internal/projects"
	"erpdash/internal/statsapi"

	"github.com/mark3labs/mcp-go/server"
)

//go:embed static
var staticFS embed.FS

func main() {
	cfg := config.FromEnv()

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// Wire dependencies
	projectRepo := projects.NewRepo(database)
	if err := projectRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure indexes", "error", err)
	}
	projectSvc := projects.NewService(projectRepo)

	authMgr := auth.NewManager(cfg.JWTSecret)
	authHandler := auth.NewHandler(authMgr, logger)

	// The stats backend is optional: without a base URL the stats-backed
	// widgets are disabled, not failed.
	var statsClient dashboard.StatsClient
	if cfg.StatsEnabled() {
		statsClient = statsapi.NewClient(cfg.StatsAPIBaseURL, auth.ContextTokenSource{})
		logger.Info("stats API enabled", "base", cfg.StatsAPIBaseURL)
	} else {
		logger.Info("stats API not configured, stats widgets disabled")
	}

	dashSvc := dashboard.NewService(statsClient, projectSvc, logger)
	dashHandler := dashboard.NewHandler(dashSvc, logger)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(dashSvc)

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// REST API endpoints
	mux.HandleFunc("GET /api/dashboard", dashHandler.APIDashboard)
	mux.HandleFunc("GET /api/projects", dashHandler.APIListProjects)
	mux.HandleFunc("POST /api/projects", dashHandler.APICreateProject)
	mux.HandleFunc("PUT /api/projects/{id}", dashHandler.APIUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", dashHandler.APIDeleteProject)

	// Auth
	mux.HandleFunc("POST /auth/session", authHandler.SignIn)
	mux.HandleFunc("DELETE /auth/session", authHandler.SignOut)

	// HTMX Web UI
	mux.HandleFunc("GET /", dashHandler.HomePage)
	mux.HandleFunc("GET /fragments/close", dashHandler.CloseModal)
	mux.HandleFunc("GET /fragments/projects", dashHandler.ProjectsFragment)
	mux.HandleFunc("GET /fragments/projects/new", dashHandler.NewProjectModal)
	mux.HandleFunc("GET /fragments/projects/{id}", dashHandler.ProjectDetail)
	mux.HandleFunc("GET /fragments/projects/{id}/edit", dashHandler.EditProjectModal)
	mux.HandleFunc("GET /fragments/projects/{id}/delete", dashHandler.DeleteProjectModal)
	mux.HandleFunc("POST /fragments/projects", dashHandler.CreateProject)
	mux.HandleFunc("PUT /fragments/projects/{id}", dashHandler.UpdateProject)
	mux.HandleFunc("DELETE /fragments/projects/{id}", dashHandler.DeleteProject)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      authMgr.Middleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port)
	logger.Info("endpoints available",
		"web", "http://localhost:"+cfg.Port,
		"api", "http://localhost:"+cfg.Port+"/api",
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}
