// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Validate when no resolver credential is set.
var ErrMissingAPIKey = errors.New("ALADIN_TTB_KEY is not set")

// Settings holds all runtime configuration.
type Settings struct {
	// External services
	ResolverAPIKey string
	RequestTimeout time.Duration

	// Default search hints
	RegionName  string
	SchoolLevel string

	// Server
	Port      string
	UploadDir string
	OutputDir string

	// Pipeline tuning
	RecordDelay         time.Duration
	PageDelay           time.Duration
	SimilarityThreshold float64
	MaxPartitions       int
}

// Load reads settings from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Settings {
	_ = godotenv.Load()

	return Settings{
		ResolverAPIKey: os.Getenv("ALADIN_TTB_KEY"),
		RequestTimeout: time.Duration(getInt("REQUEST_TIMEOUT", 12)) * time.Second,

		RegionName:  os.Getenv("REGION_NAME"),
		SchoolLevel: os.Getenv("SCHOOL_LEVEL"),

		Port:      getString("PORT", "8080"),
		UploadDir: getString("UPLOAD_DIR", "uploads"),
		OutputDir: getString("OUTPUT_DIR", "outputs"),

		RecordDelay:         time.Duration(getInt("RECORD_DELAY_MS", 100)) * time.Millisecond,
		PageDelay:           time.Duration(getInt("PAGE_DELAY_MS", 100)) * time.Millisecond,
		SimilarityThreshold: getFloat("SIMILARITY_THRESHOLD", 0.6),
		MaxPartitions:       getInt("MAX_PARTITIONS", 6),
	}
}

// Validate checks the settings required for outbound calls.
func (s Settings) Validate() error {
	if s.ResolverAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
