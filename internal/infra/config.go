package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Placeholder values shipped in sample .env files. They count as unset.
const (
	placeholderAPIKey    = "YOUR_API_KEY"
	placeholderAPISecret = "YOUR_API_SECRET"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	ScenarioAPIKey     string
	ScenarioAPISecret  string
	ScenarioBaseURL    string
	VideoModelID       string
	ImageModelID       string
	VideoResolution    string
	PollInterval       time.Duration
	PollTimeout        time.Duration
	PollMaxAttempts    int
	AllowedOrigins     []string
	DownloadAssets     bool
	DownloadDir        string
	ChromaSimilarity   float64
	ChromaBlend        float64
	RequireCredentials bool
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ScenarioAPIKey:     credentialEnv(placeholderAPIKey, "SCENARIO_ID", "SCENARIO_API_KEY"),
		ScenarioAPISecret:  credentialEnv(placeholderAPISecret, "SCENARIO_SECRET", "SCENARIO_API_SECRET"),
		ScenarioBaseURL:    getEnv("SCENARIO_BASE_URL", "https://api.cloud.scenario.com/v1"),
		VideoModelID:       getEnv("SCENARIO_VIDEO_MODEL_ID", "model_veo3-1"),
		ImageModelID:       getEnv("SCENARIO_IMAGE_MODEL_ID", "flux.1-dev"),
		VideoResolution:    getEnv("SCENARIO_VIDEO_RESOLUTION", "1080p"),
		PollInterval:       getEnvDuration("SCENARIO_POLL_INTERVAL", 3*time.Second),
		PollTimeout:        getEnvDuration("SCENARIO_POLL_TIMEOUT", 10*time.Minute),
		PollMaxAttempts:    getEnvInt("SCENARIO_POLL_MAX_ATTEMPTS", 0),
		AllowedOrigins:     parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		DownloadAssets:     getEnvBool("DOWNLOAD_ASSETS", false),
		DownloadDir:        getEnv("DOWNLOAD_DIR", "./video"),
		ChromaSimilarity:   getEnvFloat("CHROMA_KEY_SIMILARITY", 0.3),
		ChromaBlend:        getEnvFloat("CHROMA_KEY_BLEND", 0.1),
		RequireCredentials: getEnvBool("REQUIRE_CREDENTIALS", false),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("SCENARIO_POLL_INTERVAL must be positive")
	}
	if cfg.PollTimeout <= 0 {
		return nil, fmt.Errorf("SCENARIO_POLL_TIMEOUT must be positive")
	}

	return cfg, nil
}

// HasScenarioCredentials reports whether both halves of the Scenario key pair are set.
func (c *Config) HasScenarioCredentials() bool {
	return c.ScenarioAPIKey != "" && c.ScenarioAPISecret != ""
}

// MissingCredentials lists the environment variables that still need a value.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.ScenarioAPIKey == "" {
		missing = append(missing, "SCENARIO_API_KEY")
	}
	if c.ScenarioAPISecret == "" {
		missing = append(missing, "SCENARIO_API_SECRET")
	}
	return missing
}

// credentialEnv returns the first non-empty value among keys, treating the
// placeholder as unset.
func credentialEnv(placeholder string, keys ...string) string {
	for _, key := range keys {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" || v == placeholder {
			continue
		}
		return v
	}
	return ""
}

func parseOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if o := strings.TrimSpace(part); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("3s") or plain seconds ("3").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
