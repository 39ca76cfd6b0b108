package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"ecosnap_server/config"
	"ecosnap_server/logger"
	"ecosnap_server/routes"
	"ecosnap_server/services"
	"ecosnap_server/socket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize AWS and the store
	log.Info("Initializing AWS clients...")
	awsCfg, err := services.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal("AWS config failed", "error", err)
	}
	table, closeTable, err := services.OpenTable(awsCfg, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", "error", err)
	}
	defer func() {
		if err := closeTable(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}()

	if cfg.S3Bucket == "" {
		log.Warn("No S3 bucket configured, uploads will fail")
	}
	blobs := services.NewS3BlobStore(services.InitializeS3Client(awsCfg), cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicBaseURL)

	hub := socket.NewHub(log)
	go func() {
		if err := hub.Serve(); err != nil {
			log.Error("Socket server stopped", "error", err)
		}
	}()
	defer hub.Close()

	// Initialize Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	router := routes.NewRouter(routes.Dependencies{
		Auth:           services.NewAuthService(table, tokens, cfg.BCryptCost, log),
		Organizations:  services.NewOrganizationService(table, log),
		Charities:      services.NewCharityService(table, log),
		Chat:           services.NewChatService(table, hub, log),
		Uploads:        services.NewUploadService(blobs, log),
		Tokens:         tokens,
		Socket:         hub,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.RequestTimeout,
		RequireAuth:    cfg.RequireAuth,
		Log:            log,
	})

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Starting server", "port", cfg.Port, "requireAuth", cfg.RequireAuth)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
