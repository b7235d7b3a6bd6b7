package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aroundu/app/internal/config"
	"github.com/aroundu/app/internal/handlers"
	"github.com/aroundu/app/internal/identity"
	appMiddleware "github.com/aroundu/app/internal/middleware"
	"github.com/aroundu/app/internal/services"
	"github.com/aroundu/app/internal/upload"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Firebase Auth (server-side verification of ID tokens)
	authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		CredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
	})
	if err != nil {
		log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
	}

	// Profile persistence
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	userService, err := services.NewMongoUserService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer userService.Close(ctx)

	// Photo storage: GCS when a bucket is configured, local disk otherwise.
	var uploader upload.Uploader
	if cfg.StorageBucket != "" {
		uploader = upload.NewGCSUploader(cfg.StorageBucket)
	} else {
		uploader = upload.NewLocalUploader(cfg.UploadDir)
	}

	profileHandler := handlers.NewProfileHandler(userService, authClient)
	photoHandler := handlers.NewPhotoHandler(uploader, cfg.MaxUploadSizeMB)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Without Firebase credentials the server falls back to the local
	// dev identity provider and its JWT tokens.
	authMiddleware := appMiddleware.FirebaseAuth(authClient)
	if authClient == nil || os.Getenv("DEV_AUTH") == "1" {
		log.Printf("Using local dev identity provider")
		localProvider, err := identity.NewLocalProvider(getEnv("DATA_DIR", "./data"), cfg.JWTSecret, cfg.JWTExpiration)
		if err != nil {
			log.Fatalf("Failed to initialize local identity provider: %v", err)
		}
		authHandler := handlers.NewAuthHandler(localProvider)
		authMiddleware = appMiddleware.JWTAuth(cfg.JWTSecret)

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Patch("/", profileHandler.PatchProfile)
			})
			r.Get("/users/{userId}", profileHandler.GetPublicProfileByUserID)
			r.Delete("/account", profileHandler.DeleteAccount)

			r.Post("/upload", photoHandler.Upload)
		})
	})

	// Serve uploaded files when using local storage
	if cfg.StorageBucket == "" {
		workDir, _ := os.Getwd()
		filesDir := http.Dir(workDir + "/" + cfg.UploadDir)
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesDir)))
	}

	log.Printf("AroundU profile API starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
