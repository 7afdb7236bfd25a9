package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"nova/internal/auth"
	"nova/internal/config"
	"nova/internal/handler"
	"nova/internal/middleware"
	"nova/internal/repository/postgres"
	"nova/internal/service"
	"nova/internal/upstream"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"auth_mode", cfg.AuthMode,
	)

	// Select the authentication strategy at startup. "supabase" verifies
	// bearer tokens against the project JWKS; "static" trusts every
	// request as a fixed user and exists for local development only.
	var verifier auth.Verifier
	var err error
	switch cfg.AuthMode {
	case config.AuthModeStatic:
		verifier = auth.NewStaticVerifier(cfg.StaticUserID, logger)
	default:
		verifier, err = auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	threadRepo := postgres.NewThreadRepository(repoConfig)
	messageRepo := postgres.NewMessageRepository(repoConfig)
	artifactRepo := postgres.NewArtifactRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	tagRepo := postgres.NewTagRepository(repoConfig)
	assistantRepo := postgres.NewAssistantRepository(repoConfig)
	profileRepo := postgres.NewUserProfileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Route policy registry for the proxied generation endpoints
	routeRegistry, err := upstream.NewRouteRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize route registry: %v", err)
	}
	logger.Info("route registry initialized", "routes", routeRegistry.Names())

	// One upstream client per credential. Dify issues a separate bearer
	// key per application, so the three Dify routes cannot share one.
	clients := map[string]*upstream.Client{
		upstream.CredentialArtifact:  upstream.NewClient(cfg.DifyBaseURL, cfg.DifyArtifactKey, logger),
		upstream.CredentialFollowup:  upstream.NewClient(cfg.DifyBaseURL, cfg.DifyFollowupKey, logger),
		upstream.CredentialHighlight: upstream.NewClient(cfg.DifyBaseURL, cfg.DifyHighlightKey, logger),
		upstream.CredentialAgent:     upstream.NewClient(cfg.AgentBaseURL, cfg.AgentAPIKey, logger),
	}

	// Create services
	threadService := service.NewThreadService(threadRepo, messageRepo, artifactRepo, txManager, logger)
	generationService := service.NewGenerationService(routeRegistry, clients, logger)
	projectService := service.NewProjectService(projectRepo, txManager, logger)
	tagService := service.NewTagService(tagRepo, logger)
	assistantService := service.NewAssistantService(assistantRepo, logger)
	profileService := service.NewUserProfileService(profileRepo, logger)

	// Create handlers (follows Clean Architecture - no repository access)
	threadHandler := handler.NewThreadHandler(threadService, logger)
	generateHandler := handler.NewGenerateHandler(generationService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	assistantHandler := handler.NewAssistantHandler(assistantService, logger)
	profileHandler := handler.NewUserProfileHandler(profileService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", threadHandler.HealthCheck)

	// Streaming generation routes (SSE)
	mux.HandleFunc("POST /api/dify/generate-artifact", generateHandler.GenerateArtifact)
	mux.HandleFunc("POST /api/dify/generate-followup", generateHandler.GenerateFollowup)
	mux.HandleFunc("POST /api/dify/update-highlighted-text", generateHandler.UpdateHighlightedText)
	mux.HandleFunc("POST /api/agent/generate-followup", generateHandler.AgentGenerateFollowup)

	// Thread routes
	mux.HandleFunc("POST /api/threads", threadHandler.CreateThread)
	mux.HandleFunc("GET /api/threads", threadHandler.ListThreads)
	mux.HandleFunc("GET /api/threads/{id}", threadHandler.GetThread)
	mux.HandleFunc("PATCH /api/threads/{id}", threadHandler.UpdateThread)
	mux.HandleFunc("DELETE /api/threads/{id}", threadHandler.DeleteThread)
	mux.HandleFunc("GET /api/threads/{id}/state", threadHandler.GetState)
	mux.HandleFunc("PUT /api/threads/{id}/state", threadHandler.SyncState)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Tag routes
	mux.HandleFunc("GET /api/tags", tagHandler.ListTags)
	mux.HandleFunc("POST /api/tags", tagHandler.CreateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", tagHandler.DeleteTag)

	// Assistant routes
	mux.HandleFunc("GET /api/assistants", assistantHandler.ListAssistants)
	mux.HandleFunc("POST /api/assistants", assistantHandler.CreateAssistant)
	mux.HandleFunc("GET /api/assistants/{id}", assistantHandler.GetAssistant)
	mux.HandleFunc("PATCH /api/assistants/{id}", assistantHandler.UpdateAssistant)
	mux.HandleFunc("DELETE /api/assistants/{id}", assistantHandler.DeleteAssistant)

	// User profile routes
	mux.HandleFunc("GET /api/users/me/profile", profileHandler.GetProfile)
	mux.HandleFunc("PUT /api/users/me/profile", profileHandler.UpdateProfile)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
