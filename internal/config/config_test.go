package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SKILLTRACK_DB", filepath.Join(dir, "data", "skilltrack.db"))
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "SKILLTRACK_ENV"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Env != "development" {
		t.Errorf("Env = %q", c.Env)
	}
	if c.DB.Driver != "sqlite" || c.DB.Path != filepath.Join(dir, "data", "skilltrack.db") {
		t.Errorf("DB = %+v", c.DB)
	}
	if c.HTTP.Addr != ":8080" || c.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("HTTP = %+v", c.HTTP)
	}
	if c.HTTP.RateLimit != 20 || c.HTTP.RateBurst != 40 {
		t.Errorf("rate = %v/%d", c.HTTP.RateLimit, c.HTTP.RateBurst)
	}
	if c.Auth.Issuer != "skilltrack" || c.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth = %+v", c.Auth)
	}
	if c.Lock.TTL != 10*time.Second || c.Roadmap.MaxRetries != 5 {
		t.Errorf("lock/roadmap = %v/%d", c.Lock.TTL, c.Roadmap.MaxRetries)
	}
	if c.Proofs.Backend != "local" || c.Proofs.Dir != filepath.Join(dir, "data", "proofs") {
		t.Errorf("Proofs = %+v", c.Proofs)
	}
	if c.Mail.Backend != "log" || c.Mail.FromName != "Skillion" {
		t.Errorf("Mail = %+v", c.Mail)
	}
	if len(c.Matching.Keywords) != 11 || c.Matching.Keywords[0] != "html" {
		t.Errorf("Keywords = %v", c.Matching.Keywords)
	}
	if c.LLM.Provider != "" {
		t.Errorf("LLM.Provider = %q, want empty", c.LLM.Provider)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SKILLTRACK_HTTP_ADDR", ":9090")
	t.Setenv("SKILLTRACK_ROADMAP_MAX_RETRIES", "3")
	t.Setenv("SKILLTRACK_MATCHING_KEYWORDS", "Go, Rust,,")
	t.Setenv("SKILLTRACK_LLM_PROVIDER", "mock")
	t.Setenv("SKILLTRACK_AUTH_TOKEN_TTL", "1h")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q", c.HTTP.Addr)
	}
	if c.Roadmap.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", c.Roadmap.MaxRetries)
	}
	if strings.Join(c.Matching.Keywords, ",") != "go,rust" {
		t.Errorf("Keywords = %v", c.Matching.Keywords)
	}
	if c.LLM.Provider != "mock" {
		t.Errorf("LLM.Provider = %q", c.LLM.Provider)
	}
	if c.Auth.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v", c.Auth.TokenTTL)
	}
}

func TestDotEnvPerEnvironment(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", ".env.staging"), []byte("SKILLTRACK_REDIS_ADDR=redis:6379\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load sets process env; make sure it is cleared afterwards.
	t.Setenv("SKILLTRACK_REDIS_ADDR", "")
	os.Unsetenv("SKILLTRACK_REDIS_ADDR")

	c, err := Load("staging")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Env != "staging" || c.Redis.Addr != "redis:6379" {
		t.Errorf("Env = %q, Redis.Addr = %q", c.Env, c.Redis.Addr)
	}
}

func TestDiscoversLLMFromVendorKeys(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LLM.Provider != "openai" || c.LLM.OpenAI.APIKey != "sk-test" {
		t.Errorf("LLM = %+v", c.LLM)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad driver", map[string]string{"SKILLTRACK_DB_DRIVER": "mysql"}, "unknown db.driver"},
		{"postgres without dsn", map[string]string{"SKILLTRACK_DB_DRIVER": "postgres"}, "db.dsn"},
		{"gcs without bucket", map[string]string{"SKILLTRACK_PROOFS_BACKEND": "gcs"}, "proofs.bucket"},
		{"sendgrid without key", map[string]string{"SKILLTRACK_MAIL_BACKEND": "sendgrid"}, "mail.sendgrid_key"},
		{"zero retries", map[string]string{"SKILLTRACK_ROADMAP_MAX_RETRIES": "0"}, "max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRequireServe(t *testing.T) {
	c := &Config{}
	if err := c.RequireServe(); err == nil {
		t.Error("empty secret accepted")
	}
	c.Auth.JWTSecret = "0123456789abcdef"
	if err := c.RequireServe(); err != nil {
		t.Errorf("RequireServe: %v", err)
	}
}
