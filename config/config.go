package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultArtworksSubDir = "artworks"
	DefaultBlurSubDir     = "blur"
	DefaultProfileSubDir  = "profile"
)

type Config struct {
	// database path
	DatabasePath string

	// process-wide main tenant id; the effective tenant for requests that
	// carry no explicit id. Empty means only the sentinel placeholder exists.
	MainTenantID string

	// media storage configuration
	MediaStoragePath string // primary root for stored artwork assets
	ArtworksPath     string // full-calculated path for full-size images
	BlurPath         string // full-calculated path for blur placeholders
	ProfilePath      string // full-calculated path for profile imagery

	// environment name ("production" switches zap to JSON) and log level
	Env      string
	LogLevel string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "gallery.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	artworksSubDir := getEnvOrDefault("ARTWORKS_SUBDIR", DefaultArtworksSubDir)
	blurSubDir := getEnvOrDefault("BLUR_SUBDIR", DefaultBlurSubDir)
	profileSubDir := getEnvOrDefault("PROFILE_SUBDIR", DefaultProfileSubDir)

	cfg := Config{
		DatabasePath:     dbPath,
		MainTenantID:     os.Getenv("MAIN_TENANT_ID"),
		MediaStoragePath: absMediaStorage,
		ArtworksPath:     filepath.Join(absMediaStorage, artworksSubDir),
		BlurPath:         filepath.Join(absMediaStorage, blurSubDir),
		ProfilePath:      filepath.Join(absMediaStorage, profileSubDir),
		Env:              getEnvOrDefault("APP_ENV", "development"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}
