package config

import "testing"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("LLM_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMBaseURL != "https://api.openai.com/v1" {
		t.Errorf("LLMBaseURL = %q", cfg.LLMBaseURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LLM_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() without required vars should fail")
	}
}

func TestAdminAndAllowlist(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_IDS", "1,2")
	t.Setenv("ALLOWED_IDS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.IsAdmin(1) || cfg.IsAdmin(5) {
		t.Error("IsAdmin() misread ADMIN_IDS")
	}
	if !cfg.IsAllowed(5) {
		t.Error("listed user should be allowed")
	}
	if cfg.IsAllowed(9) {
		t.Error("unlisted user should be denied when allowlist is set")
	}
	if !cfg.IsAllowed(2) {
		t.Error("admins bypass the allowlist")
	}
}

func TestEmptyAllowlistIsPublic(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.IsAllowed(12345) {
		t.Error("empty allowlist should admit everyone")
	}
}
