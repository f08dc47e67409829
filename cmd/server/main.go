package main

import (
	"alcyxob/exercise-tracker/internal/api"
	"alcyxob/exercise-tracker/internal/config"
	"alcyxob/exercise-tracker/internal/repository"
	"alcyxob/exercise-tracker/internal/repository/memory"
	"alcyxob/exercise-tracker/internal/repository/mongo"
	"alcyxob/exercise-tracker/internal/repository/sqlite"
	"alcyxob/exercise-tracker/internal/service"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Exercise Tracker API
// @version 1.0
// @description Personal exercise list with pending/completed tracking.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash for auth.password_hash and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := service.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		fmt.Println(hash)
		return
	}

	log.Println("Starting Exercise Tracker Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded (storage driver: %s).", cfg.Storage.Driver)

	// --- Exercise Store & Services ---
	log.Println("Initializing services...")
	exerciseService, closeStore, err := newExerciseService(cfg, openExerciseRepository)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer closeStore()

	authService := service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.PasswordHash, cfg.Auth.Expiration, nil)
	if !authService.Enabled() {
		log.Println("WARN: auth.jwt_secret is not set; exercise routes are open to anyone who can reach the server.")
	}

	// --- Initialize Gin Engine ---
	router := gin.Default()
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		router.Use(api.CORSMiddleware(cfg.Server.CORSAllowedOrigins))
		log.Printf("CORS enabled for %v", cfg.Server.CORSAllowedOrigins)
	}

	log.Println("Setting up API routes...")
	api.SetupRoutes(router, authService, exerciseService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Printf("ERROR: ListenAndServe: %v", err)
	}
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// storeOpener opens an exercise store and returns the func that releases it.
type storeOpener func(cfg config.Config) (repository.ExerciseRepository, func(), error)

// newExerciseService opens the store and seeds it when storage.seed_sample_data is set.
// On any error the store is already released; otherwise the caller must call the returned func.
func newExerciseService(cfg config.Config, open storeOpener) (service.ExerciseService, func(), error) {
	exerciseRepo, closeStore, err := open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open %s exercise store: %w", cfg.Storage.Driver, err)
	}
	exerciseService := service.NewExerciseService(exerciseRepo, nil)

	if cfg.Storage.SeedSampleData {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := exerciseService.SeedSampleData(ctx)
		cancel()
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("could not seed sample exercises: %w", err)
		}
		if n > 0 {
			log.Printf("Seeded %d sample exercises.", n)
		}
	}
	return exerciseService, closeStore, nil
}

// openExerciseRepository builds the store selected by storage.driver.
// The returned func releases the backend's connection and is safe to defer.
func openExerciseRepository(cfg config.Config) (repository.ExerciseRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.NewDB(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("SQLite database opened at %s.", cfg.SQLite.Path)
		closeFn := func() {
			log.Println("Closing SQLite database...")
			if err := sqlite.CloseDB(db); err != nil {
				log.Printf("ERROR: Failed to close SQLite database: %v", err)
			}
		}
		return sqlite.NewSQLiteExerciseRepository(db, nil), closeFn, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, nil, err
		}
		appDB := client.Database(cfg.Database.Name)
		log.Println("Database connection established.")

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		cancel()

		closeFn := func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}
		return mongo.NewMongoExerciseRepository(appDB, nil), closeFn, nil

	default:
		log.Println("Using in-memory exercise store; records are lost on restart.")
		return memory.NewMemoryExerciseRepository(nil), func() {}, nil
	}
}
