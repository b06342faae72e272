package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"resumepro/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	// Persistence. An empty DatabaseURL selects in-memory repositories.
	DatabaseURL     string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider  string
	LLMModel     string
	OpenAIAPIKey string
	GeminiAPIKey string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	// AutosaveDelay is how long the wizard waits after the last edit before persisting.
	AutosaveDelay  time.Duration
	DefaultCredits int
}

// envFiles are loaded in order; variables already set win.
var envFiles = []string{".env", "cmd/.env"}

// Load reads configuration from the environment. Invalid values are logged and
// replaced by their defaults.
func Load() Config {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			telemetry.Warn("config.env_file_skipped", map[string]any{"path": path, "error": err})
		}
	}

	return Config{
		Port:            str("PORT", "8080"),
		Env:             normalizeEnv(str("ENV", "dev")),
		CORSAllowOrigin: list("CORS_ALLOW_ORIGINS", "http://localhost:5173"),

		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ObjectStoreType: oneOf("OBJECT_STORE", "local", map[string]string{"s3": "s3"}),
		LocalStoreDir:   str("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       str("AWS_REGION", ""),
		S3Bucket:        str("S3_BUCKET", ""),
		S3Prefix:        str("S3_PREFIX", ""),
		SSEKMSKeyID:     str("SSE_KMS_KEY_ID", ""),

		LLMProvider: oneOf("LLM_PROVIDER", "openai", map[string]string{
			"openai": "openai",
			"gemini": "gemini",
			"google": "gemini",
			"none":   "none",
		}),
		LLMModel:     str("LLM_MODEL", ""),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		GoogleClientID:     str("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: str("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  str("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      str("UI_REDIRECT_URL", ""),

		AutosaveDelay:  duration("AUTOSAVE_DELAY", time.Second),
		DefaultCredits: nonNegativeInt("DEFAULT_CREDITS", 3),
	}
}

// IsProduction reports whether the process runs with production guarantees.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate reports settings the process cannot run with. Outside production
// missing infrastructure falls back to local substitutes instead.
func (c Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
		if strings.TrimSpace(os.Getenv("JWT_SECRET")) == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
	}
	if c.ObjectStoreType == "s3" && (c.AWSRegion == "" || c.S3Bucket == "") {
		errs = append(errs, errors.New("OBJECT_STORE=s3 needs AWS_REGION and S3_BUCKET"))
	}
	if c.LLMProvider != "none" && strings.TrimSpace(c.LLMModel) == "" && c.IsProduction() {
		errs = append(errs, errors.New("LLM_MODEL is required when LLM_PROVIDER is set"))
	}
	return errors.Join(errs...)
}

func str(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func list(key, def string) []string {
	var out []string
	for _, p := range strings.Split(str(key, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// oneOf maps the lowercased value through allowed. Unknown values fall back to
// "none" when allowed has it and to def otherwise.
func oneOf(key, def string, allowed map[string]string) string {
	raw := strings.ToLower(str(key, def))
	if v, ok := allowed[raw]; ok {
		return v
	}
	if v, ok := allowed["none"]; ok {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	raw := str(key, "")
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val < 0 {
		invalid(key, raw)
		return def
	}
	return val
}

func nonNegativeInt(key string, def int) int {
	raw := str(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		invalid(key, raw)
		return def
	}
	return val
}

func invalid(key, raw string) {
	telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw})
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(raw) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
