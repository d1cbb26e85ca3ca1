package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/camden-git/gallerybackend/config"
	"github.com/camden-git/gallerybackend/database"
	"github.com/camden-git/gallerybackend/handlers"
	"github.com/camden-git/gallerybackend/media"
	"github.com/camden-git/gallerybackend/metrics"
	"github.com/camden-git/gallerybackend/repository"
	"github.com/camden-git/gallerybackend/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.ArtworksPath, cfg.BlurPath, cfg.ProfilePath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeArtwork: filepath.Base(cfg.ArtworksPath),
		media.AssetTypeBlur:    filepath.Base(cfg.BlurPath),
		media.AssetTypeProfile: filepath.Base(cfg.ProfilePath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore)

	metrics.InitMetrics()

	settingsRepo := repository.NewSettingsRepository(db, cfg.MainTenantID)
	artworkRepo := repository.NewArtworkRepository(db)
	sessions := services.NewSessionManager(settingsRepo)

	if cfg.MainTenantID == "" {
		log.Printf("Warning: MAIN_TENANT_ID is not set; requests without an explicit tenant fall back to the placeholder tenant")
	} else {
		log.Printf("Main tenant id: %s", cfg.MainTenantID)
	}
	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing media in: %s", cfg.MediaStoragePath)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)
	r.Use(metrics.Middleware)

	settingsHandler := handlers.NewSettingsHandler(settingsRepo, sessions, mediaProcessor, cfg.MainTenantID)
	artworkHandler := handlers.NewArtworkHandler(artworkRepo, mediaProcessor, mediaStore, cfg.MainTenantID)

	r.Route("/api", func(r chi.Router) {
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
			r.Put("/password", settingsHandler.ChangePassword)
			r.Put("/image", settingsHandler.UploadSettingsImage)
		})

		r.Route("/artworks", func(r chi.Router) {
			r.Post("/", artworkHandler.CreateArtwork)
			r.Get("/", artworkHandler.ListArtworks)
			r.Get("/years", artworkHandler.ListYears)
			r.Route("/{artwork_id}", func(r chi.Router) {
				r.Get("/", artworkHandler.GetArtwork)
				r.Put("/", artworkHandler.UpdateArtwork)
				r.Delete("/", artworkHandler.DeleteArtwork)
				r.Put("/image", artworkHandler.UploadArtworkImage)
			})
		})

		artworksSubDir := filepath.Base(cfg.ArtworksPath)
		r.Get(fmt.Sprintf("/%s/*", artworksSubDir), handlers.AssetServer(cfg.MediaStoragePath, artworksSubDir))
		log.Printf("Registered artwork image server at /%s/*", artworksSubDir)

		blurSubDir := filepath.Base(cfg.BlurPath)
		r.Get(fmt.Sprintf("/%s/*", blurSubDir), handlers.AssetServer(cfg.MediaStoragePath, blurSubDir))
		log.Printf("Registered blur placeholder server at /%s/*", blurSubDir)

		profileSubDir := filepath.Base(cfg.ProfilePath)
		r.Get(fmt.Sprintf("/%s/*", profileSubDir), handlers.AssetServer(cfg.MediaStoragePath, profileSubDir))
		log.Printf("Registered profile image server at /%s/*", profileSubDir)
	})

	r.Handle("/metrics", metrics.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
