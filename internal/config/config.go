// Package config provides configuration loaded from environment variables.
// Shared by cmd/segment and cmd/server; command-line flags override it.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting.
type Config struct {
	// Input and output
	InputCSV  string
	OutputDir string

	// Storage. Empty DSNs select the in-memory stores.
	PostgresDSN   string
	ClickhouseDSN string

	// Language model
	OpenAIAPIKey              string
	OpenAIBaseURL             string
	OpenAIModel               string
	StrategyRequestsPerMinute int

	// HTTP server
	ServerAddr       string
	CORSAllowOrigins []string

	// Data quality thresholds
	MaxMissingPriceShare      float64
	MaxOutlierShare           float64
	MaxUnknownReputationShare float64
	MaxUnknownConditionShare  float64
	MinSellers                int
	MaxScoringErrors          int

	Verbose bool
}

// LoadEnvFiles loads .env files if present. Variables already set in the
// environment win over file values.
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		InputCSV:  envOr("SEGMENT_INPUT_CSV", ""),
		OutputDir: envOr("SEGMENT_OUTPUT_DIR", "output"),

		PostgresDSN:   envOr("POSTGRES_DSN", ""),
		ClickhouseDSN: envOr("CLICKHOUSE_DSN", ""),

		OpenAIAPIKey:              envOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:             envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:               envOr("OPENAI_MODEL", "gpt-4.1-mini"),
		StrategyRequestsPerMinute: envInt("STRATEGY_REQUESTS_PER_MINUTE", 60),

		ServerAddr: envOr("SERVER_ADDR", ":8080"),
		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		MaxMissingPriceShare:      envFloat("QUALITY_MAX_MISSING_PRICE_SHARE", 0.05),
		MaxOutlierShare:           envFloat("QUALITY_MAX_OUTLIER_SHARE", 0.02),
		MaxUnknownReputationShare: envFloat("QUALITY_MAX_UNKNOWN_REPUTATION_SHARE", 0.20),
		MaxUnknownConditionShare:  envFloat("QUALITY_MAX_UNKNOWN_CONDITION_SHARE", 0.05),
		MinSellers:                envInt("QUALITY_MIN_SELLERS", 10),
		MaxScoringErrors:          envInt("QUALITY_MAX_SCORING_ERRORS", 0),

		Verbose: envBool("SEGMENT_VERBOSE", false),
	}
}

// UseDatabases reports whether both database DSNs are configured.
func (c *Config) UseDatabases() bool {
	return c.PostgresDSN != "" && c.ClickhouseDSN != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
