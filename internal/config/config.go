// Package config loads skilltrack settings from defaults, .env files and
// SKILLTRACK_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/skilltrack/internal/catalog"
	"github.com/abhisek/skilltrack/internal/llm"
	"github.com/abhisek/skilltrack/internal/store"
)

const EnvPrefix = "SKILLTRACK"

type Config struct {
	Env      string
	Log      LogConfig
	DB       DBConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Lock     LockConfig
	Proofs   ProofsConfig
	Mail     MailConfig
	Matching MatchingConfig
	Roadmap  RoadmapConfig
	LLM      llm.Config
}

type LogConfig struct {
	Mode     string
	Level    string
	Redact   bool
	HashSalt string
}

type DBConfig struct {
	// Driver is sqlite, postgres or memory.
	Driver string
	Path   string
	DSN    string
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	// RateLimit is requests per second per client.
	RateLimit float64
	RateBurst int
}

type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	PolicyPath string
}

type RedisConfig struct {
	// Addr empty means in-process locks.
	Addr string
}

type LockConfig struct {
	TTL time.Duration
}

type ProofsConfig struct {
	// Backend is local or gcs.
	Backend       string
	Dir           string
	Bucket        string
	PublicBaseURL string
}

type MailConfig struct {
	// Backend is log or sendgrid.
	Backend     string
	SendGridKey string
	FromName    string
	FromEmail   string
}

type MatchingConfig struct {
	Keywords []string
}

type RoadmapConfig struct {
	MaxRetries int
}

// New returns a viper instance with defaults applied, .env files for env
// loaded and environment binding enabled. Callers may bind flags on it
// before calling FromViper.
func New(env string) (*viper.Viper, error) {
	if env == "" {
		env = os.Getenv(EnvPrefix + "_ENV")
	}
	if env == "" {
		env = "development"
	}
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.Set("env", env)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// Load is New followed by FromViper.
func Load(env string) (*Config, error) {
	v, err := New(env)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// loadDotEnv reads config/.env.<env> then .env. Missing files are fine;
// variables already in the environment win.
func loadDotEnv(env string) error {
	for _, p := range []string{filepath.Join("config", ".env."+strings.ToLower(env)), ".env"} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.redact", true)
	v.SetDefault("log.hash_salt", "")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "")
	v.SetDefault("db.dsn", "")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.rate_limit", 20.0)
	v.SetDefault("http.rate_burst", 40)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "skilltrack")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.policy_path", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("lock.ttl", 10*time.Second)

	v.SetDefault("proofs.backend", "local")
	v.SetDefault("proofs.dir", "")
	v.SetDefault("proofs.bucket", "")
	v.SetDefault("proofs.public_base_url", "")

	v.SetDefault("mail.backend", "log")
	v.SetDefault("mail.sendgrid_key", "")
	v.SetDefault("mail.from_name", "Skillion")
	v.SetDefault("mail.from_email", "")

	v.SetDefault("matching.keywords", strings.Join(catalog.DefaultMatchKeywords, ","))
	v.SetDefault("roadmap.max_retries", 5)

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
}

// FromViper builds and validates a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Env: v.GetString("env"),
		Log: LogConfig{
			Mode:     v.GetString("log.mode"),
			Level:    v.GetString("log.level"),
			Redact:   v.GetBool("log.redact"),
			HashSalt: v.GetString("log.hash_salt"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("db.driver")),
			Path:   v.GetString("db.path"),
			DSN:    v.GetString("db.dsn"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			RateLimit:       v.GetFloat64("http.rate_limit"),
			RateBurst:       v.GetInt("http.rate_burst"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			Issuer:     v.GetString("auth.issuer"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			PolicyPath: v.GetString("auth.policy_path"),
		},
		Redis: RedisConfig{Addr: v.GetString("redis.addr")},
		Lock:  LockConfig{TTL: v.GetDuration("lock.ttl")},
		Proofs: ProofsConfig{
			Backend:       strings.ToLower(v.GetString("proofs.backend")),
			Dir:           v.GetString("proofs.dir"),
			Bucket:        v.GetString("proofs.bucket"),
			PublicBaseURL: v.GetString("proofs.public_base_url"),
		},
		Mail: MailConfig{
			Backend:     strings.ToLower(v.GetString("mail.backend")),
			SendGridKey: v.GetString("mail.sendgrid_key"),
			FromName:    v.GetString("mail.from_name"),
			FromEmail:   v.GetString("mail.from_email"),
		},
		Matching: MatchingConfig{Keywords: catalog.ParseKeywords(v.GetString("matching.keywords"))},
		Roadmap:  RoadmapConfig{MaxRetries: v.GetInt("roadmap.max_retries")},
		LLM:      llmConfig(v),
	}

	if c.DB.Path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		c.DB.Path = p
	}
	if c.Proofs.Dir == "" {
		c.Proofs.Dir = filepath.Join(filepath.Dir(c.DB.Path), "proofs")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func llmConfig(v *viper.Viper) llm.Config {
	c := llm.DefaultConfig()
	c.Provider = v.GetString("llm.provider")
	c.Timeout = v.GetDuration("llm.timeout")
	c.Anthropic.APIKey = v.GetString("llm.anthropic.api_key")
	c.Anthropic.Model = v.GetString("llm.anthropic.model")
	c.OpenAI.APIKey = v.GetString("llm.openai.api_key")
	c.OpenAI.Model = v.GetString("llm.openai.model")
	c.OpenAI.BaseURL = v.GetString("llm.openai.base_url")
	c.Gemini.APIKey = v.GetString("llm.gemini.api_key")
	c.Gemini.Model = v.GetString("llm.gemini.model")
	c.Retry.MaxAttempts = v.GetInt("llm.retry.max_attempts")

	if c.Provider == "" {
		if found, ok := llm.DiscoverConfig(); ok {
			found.Timeout = c.Timeout
			found.Retry = c.Retry
			return found
		}
	}
	return c
}

// Validate checks choices that would only fail later at wiring time.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown db.driver %q (want sqlite, postgres or memory)", c.DB.Driver)
	}

	switch c.Proofs.Backend {
	case "local":
	case "gcs":
		if c.Proofs.Bucket == "" {
			return fmt.Errorf("proofs.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown proofs.backend %q (want local or gcs)", c.Proofs.Backend)
	}

	switch c.Mail.Backend {
	case "log":
	case "sendgrid":
		if c.Mail.SendGridKey == "" || c.Mail.FromEmail == "" {
			return fmt.Errorf("mail.sendgrid_key and mail.from_email are required for the sendgrid backend")
		}
	default:
		return fmt.Errorf("unknown mail.backend %q (want log or sendgrid)", c.Mail.Backend)
	}

	if c.Roadmap.MaxRetries < 1 {
		return fmt.Errorf("roadmap.max_retries must be at least 1")
	}
	if c.HTTP.RateLimit <= 0 || c.HTTP.RateBurst < 1 {
		return fmt.Errorf("http.rate_limit and http.rate_burst must be positive")
	}
	return nil
}

// RequireServe checks what only the HTTP server needs.
func (c *Config) RequireServe() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be set to at least 16 characters (SKILLTRACK_AUTH_JWT_SECRET)")
	}
	return nil
}
