package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-level settings. Pipeline parameters (video path,
// sample rate) are explicit arguments, not configuration.
type Config struct {
	Port string

	// DatabaseURL enables run persistence when non-empty.
	DatabaseURL string

	// CascadePath is the pigo face cascade file.
	CascadePath string
	// EmotionModelPath is the ONNX emotion model.
	EmotionModelPath string
	// LandmarkSocket is the unix socket of the landmark sidecar.
	LandmarkSocket string

	// DefaultSampleRate applies when a request omits one.
	DefaultSampleRate int
}

// Load reads configuration from the environment, after loading a .env
// file if one is present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env file")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CascadePath:       getEnv("CASCADE_PATH", "models/facefinder"),
		EmotionModelPath:  getEnv("EMOTION_MODEL_PATH", "models/emotion.onnx"),
		LandmarkSocket:    getEnv("LANDMARK_SOCKET", "/tmp/landmarker.sock"),
		DefaultSampleRate: getEnvInt("DEFAULT_SAMPLE_RATE", 5),
	}
}

func getEnv(k, d string) string {
	if val, ok := os.LookupEnv(k); ok {
		return val
	}
	return d
}

func getEnvInt(k string, d int) int {
	if val, ok := os.LookupEnv(k); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using %d", k, val, d)
	}
	return d
}
