package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider = %q, want openai", cfg.LLM.Provider)
	}
	if cfg.LLM.Enabled {
		t.Error("LLM should be disabled without an API key")
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("LLM.Model = %q, want llama-3.1-8b-instant", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 15 {
		t.Errorf("LLM.Timeout = %d, want 15", cfg.LLM.Timeout)
	}
	if cfg.Makcorps.Timeout != 10 {
		t.Errorf("Makcorps.Timeout = %d, want 10", cfg.Makcorps.Timeout)
	}
	if cfg.Chat.PersistTopN != 10 || cfg.Chat.ResponseTopN != 5 {
		t.Errorf("Chat top N = %d/%d, want 10/5", cfg.Chat.PersistTopN, cfg.Chat.ResponseTopN)
	}
	if cfg.Makcorps.AffiliateBaseURL != "https://www.makcorps.com" || cfg.Makcorps.PartnerID != "hotel_chatbot" {
		t.Errorf("affiliate = %q/%q", cfg.Makcorps.AffiliateBaseURL, cfg.Makcorps.PartnerID)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAKCORPS_BASE_URL", "http://makcorps.local/")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.LLM.Enabled || cfg.LLM.APIKey != "gsk_test" {
		t.Errorf("LLM key not picked up: %+v", cfg.LLM)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("LLM = %s/%s, want gemini/gemini-2.0-flash", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.Makcorps.BaseURL != "http://makcorps.local" {
		t.Errorf("Makcorps.BaseURL = %q, trailing slash should be trimmed", cfg.Makcorps.BaseURL)
	}
	if !cfg.Redis.Enabled() {
		t.Error("Redis should be enabled when REDIS_ADDR is set")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "mystery")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestLoad_RejectsNegativeTopN(t *testing.T) {
	tests := map[string]string{
		"CHAT_PERSIST_TOP_N":  "-1",
		"CHAT_RESPONSE_TOP_N": "-3",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", "")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error for %s=%s", key, value)
			}
		})
	}
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "hotelix", SSLMode: "disable",
	}}
	want := "host=db port=5432 user=u password=p dbname=hotelix sslmode=disable"
	if got := cfg.GetPostgreSQLDSN(); got != want {
		t.Errorf("GetPostgreSQLDSN() = %q, want %q", got, want)
	}

	cfg.PostgreSQL.DSN = "postgres://x"
	if got := cfg.GetPostgreSQLDSN(); got != "postgres://x" {
		t.Errorf("explicit DSN should win, got %q", got)
	}
}
