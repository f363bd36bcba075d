package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the service needs at startup
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Places     PlacesConfig
	Generation GenerationConfig
	Workflow   WorkflowConfig
}

type ServerConfig struct {
	AppEnv string
	Port   string
}

type StoreConfig struct {
	// DataDir holds the durable slot files
	DataDir string
	// RemoteURL, when set, backs the record API with a remote instance
	// instead of the local slot
	RemoteURL string
}

type PlacesConfig struct {
	GeocodeURL string
	PlacesURL  string
	APIKey     string
}

type GenerationConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type WorkflowConfig struct {
	SettleDelay  time.Duration
	DisplayDelay time.Duration
}

// Load builds the config from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv: getEnv("APP_ENV", "dev"),
			Port:   getEnv("PORT", "8080"),
		},
		Store: StoreConfig{
			DataDir:   getEnv("DATA_DIR", "./data"),
			RemoteURL: getEnv("REMOTE_STORE_URL", ""),
		},
		Places: PlacesConfig{
			GeocodeURL: getEnv("GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			PlacesURL:  getEnv("PLACES_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
			APIKey:     getEnv("MAPS_API_KEY", ""),
		},
		Generation: GenerationConfig{
			BaseURL: getEnv("GENERATION_URL", "https://generativelanguage.googleapis.com"),
			APIKey:  getEnv("GENERATION_API_KEY", ""),
			Model:   getEnv("GENERATION_MODEL", "gemini-1.5-pro"),
		},
		Workflow: WorkflowConfig{
			SettleDelay:  time.Duration(getEnvInt("SETTLE_DELAY_MS", 1200)) * time.Millisecond,
			DisplayDelay: time.Duration(getEnvInt("DISPLAY_DELAY_MS", 1500)) * time.Millisecond,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
