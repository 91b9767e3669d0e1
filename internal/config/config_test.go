package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBPath != "./data/sandbox.db" {
		t.Errorf("Expected default db path, got %q", cfg.DBPath)
	}
	if cfg.SessionMaxIdle != 24*time.Hour {
		t.Errorf("Expected 24h idle default, got %v", cfg.SessionMaxIdle)
	}
	if cfg.ReapInterval != time.Hour {
		t.Errorf("Expected 1h reap default, got %v", cfg.ReapInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_MAX_IDLE", "30m")
	t.Setenv("REAP_INTERVAL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %q", cfg.Port)
	}
	if cfg.SessionMaxIdle != 30*time.Minute {
		t.Errorf("Expected 30m idle, got %v", cfg.SessionMaxIdle)
	}
	if cfg.ReapInterval != 5*time.Minute {
		t.Errorf("Expected 5m reap interval, got %v", cfg.ReapInterval)
	}
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_MAX_IDLE", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.SessionMaxIdle != 24*time.Hour {
		t.Errorf("Expected fallback to 24h, got %v", cfg.SessionMaxIdle)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: "8080", DBPath: "x.db", SessionMaxIdle: time.Hour, ReapInterval: time.Minute}, false},
		{"empty port", Config{DBPath: "x.db", SessionMaxIdle: time.Hour, ReapInterval: time.Minute}, true},
		{"empty db path", Config{Port: "8080", SessionMaxIdle: time.Hour, ReapInterval: time.Minute}, true},
		{"zero idle", Config{Port: "8080", DBPath: "x.db", ReapInterval: time.Minute}, true},
		{"zero reap", Config{Port: "8080", DBPath: "x.db", SessionMaxIdle: time.Hour}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://app.lucidra.io", false},
	}
	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.url}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
