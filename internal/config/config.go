package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "jobtrack-dev-secret"

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	DatabaseURL string

	// Auth
	JWTSecret                string
	TokenTTL                 time.Duration
	RequireEmailVerification bool
	AppBaseURL               string // used in verification links

	// Resume storage
	UploadDir          string
	MaxUploadBytes     int64
	StorageBucket      string // empty keeps files on local disk
	GCSCredentialsFile string

	// AI
	AIProvider    string // groq, gemini or claude
	GroqAPIKey    string
	GroqBaseURL   string
	GroqModel     string
	GeminiAPIKey  string
	GeminiModel   string
	ClaudeAPIKey  string
	ClaudeBaseURL string
	ClaudeModel   string
	AITimeout     time.Duration

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

// SetDefaults registers every key with its default on v and binds it to
// its environment variable.
func SetDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"port":                       "4000",
		"env":                        "development",
		"database_url":               "",
		"jwt_secret":                 "",
		"token_ttl":                  "2h",
		"require_email_verification": true,
		"app_base_url":               "http://localhost:5173",
		"upload_dir":                 "uploads/resumes",
		"max_upload_bytes":           5 << 20,
		"storage_bucket":             "",
		"gcs_credentials_file":       "",
		"ai_provider":                "groq",
		"groq_base_url":              "https://api.groq.com/openai/v1",
		"groq_model":                 "llama-3.1-8b-instant",
		"gemini_api_key":             "",
		"gemini_model":               "gemini-2.0-flash",
		"claude_api_key":             "",
		"claude_base_url":            "https://api.anthropic.com/v1",
		"claude_model":               "claude-sonnet-4-5-20250929",
		"ai_timeout":                 "30s",
		"rate_limit_rps":             10,
		"allowed_origins":            "http://localhost:5173,http://localhost:3000",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	// HUGGINGFACE_API_KEY is the older name for the Groq key
	_ = v.BindEnv("groq_api_key", "GROQ_API_KEY", "HUGGINGFACE_API_KEY")
}

// Load reads .env (if present) and builds the config from v. Real
// environment variables win over .env, and bound flags win over both.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	SetDefaults(v)

	cfg := &Config{
		Port:                     v.GetString("port"),
		Env:                      v.GetString("env"),
		DatabaseURL:              v.GetString("database_url"),
		JWTSecret:                v.GetString("jwt_secret"),
		TokenTTL:                 v.GetDuration("token_ttl"),
		RequireEmailVerification: v.GetBool("require_email_verification"),
		AppBaseURL:               v.GetString("app_base_url"),
		UploadDir:                v.GetString("upload_dir"),
		MaxUploadBytes:           v.GetInt64("max_upload_bytes"),
		StorageBucket:            v.GetString("storage_bucket"),
		GCSCredentialsFile:       v.GetString("gcs_credentials_file"),
		AIProvider:               strings.ToLower(v.GetString("ai_provider")),
		GroqAPIKey:               v.GetString("groq_api_key"),
		GroqBaseURL:              v.GetString("groq_base_url"),
		GroqModel:                v.GetString("groq_model"),
		GeminiAPIKey:             v.GetString("gemini_api_key"),
		GeminiModel:              v.GetString("gemini_model"),
		ClaudeAPIKey:             v.GetString("claude_api_key"),
		ClaudeBaseURL:            v.GetString("claude_base_url"),
		ClaudeModel:              v.GetString("claude_model"),
		AITimeout:                v.GetDuration("ai_timeout"),
		RateLimitRPS:             v.GetInt("rate_limit_rps"),
		AllowedOrigins:           splitList(v.GetString("allowed_origins")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	switch c.AIProvider {
	case "groq", "gemini", "claude":
	default:
		return fmt.Errorf("AI_PROVIDER must be groq, gemini or claude, got %q", c.AIProvider)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
