package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/sandbox"
)

func TestData_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, http.StatusOK, map[string]int{"count": 3})

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if !env.Success {
		t.Error("Expected success=true")
	}
}

func TestError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "bad input")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if env.Success {
		t.Error("Expected success=false")
	}
	if env.Error != "bad input" {
		t.Errorf("Expected error message, got %q", env.Error)
	}
}

func TestDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("mission x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"quota", domain.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"invalid state", fmt.Errorf("owned by another user: %w", domain.ErrInvalidState), http.StatusForbidden},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		DomainError(rec, tt.err)
		if rec.Code != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.want, rec.Code)
		}
	}
}

func TestDomainError_QuotaCarriesUsage(t *testing.T) {
	rec := httptest.NewRecorder()
	DomainError(rec, &sandbox.QuotaError{
		Reason: "Token limit exceeded (1000)",
		Usage:  &domain.UsageStats{SessionID: "s1", TokensUsed: 1050},
	})

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rec.Code)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if env.Error != "Token limit exceeded (1000)" {
		t.Errorf("Expected denial reason, got %q", env.Error)
	}
	var stats domain.UsageStats
	if err := json.Unmarshal(env.Usage, &stats); err != nil {
		t.Fatalf("Failed to decode usage snapshot: %v", err)
	}
	if stats.TokensUsed != 1050 {
		t.Errorf("Expected tokensUsed=1050, got %d", stats.TokensUsed)
	}
}
