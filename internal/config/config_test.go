package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_SECRET", "TOKEN_TTL_HOURS", "DATA_DIR", "UPLOAD_DIR", "MAX_UPLOAD_MB", "DEDUP_WINDOW_MS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != 168*time.Hour {
		t.Errorf("expected 168h token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Storage.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("expected 10MB upload cap, got %d", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Chat.DedupWindow != time.Second {
		t.Errorf("expected 1s dedup window, got %v", cfg.Chat.DedupWindow)
	}
}

func TestLoadPortForms(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"9090", ":9090"},
		{":9090", ":9090"},
		{"127.0.0.1:9090", "127.0.0.1:9090"},
	}
	for _, tc := range cases {
		t.Setenv("PORT", tc.value)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load with PORT=%q: %v", tc.value, err)
		}
		if cfg.Server.Addr != tc.want {
			t.Errorf("PORT=%q: expected %q, got %q", tc.value, tc.want, cfg.Server.Addr)
		}
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "80 80")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}
}

func TestLoadDedupWindowOverride(t *testing.T) {
	t.Setenv("DEDUP_WINDOW_MS", "250")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chat.DedupWindow != 250*time.Millisecond {
		t.Errorf("expected 250ms window, got %v", cfg.Chat.DedupWindow)
	}

	// Zero disables dedup and is allowed; negative is not.
	t.Setenv("DEDUP_WINDOW_MS", "0")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load with zero window: %v", err)
	}
	if cfg.Chat.DedupWindow != 0 {
		t.Errorf("expected zero window, got %v", cfg.Chat.DedupWindow)
	}

	t.Setenv("DEDUP_WINDOW_MS", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative window")
	}
}

func TestLoadRejectsNonNumericTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric TOKEN_TTL_HOURS")
	}
}
