package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lucidra/sandbox-server/internal/store"
)

// pingRepo stubs the repository with a configurable ping result.
type pingRepo struct {
	store.Repository
	err error
}

func (r *pingRepo) Ping(ctx context.Context) error { return r.err }

func healthResponse(t *testing.T, repo store.Repository) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	r := chi.NewRouter()
	NewHealthHandler(repo).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	return rec, body
}

func TestGetHealth_WithoutRepository(t *testing.T) {
	rec, body := healthResponse(t, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if body["status"] != "ok" || body["database"] != "disabled" {
		t.Errorf("Expected ok/disabled, got %v", body)
	}
}

func TestGetHealth_DatabaseOK(t *testing.T) {
	rec, body := healthResponse(t, &pingRepo{})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if body["database"] != "ok" {
		t.Errorf("Expected database ok, got %v", body)
	}
}

func TestGetHealth_DatabaseUnreachable(t *testing.T) {
	rec, body := healthResponse(t, &pingRepo{err: errors.New("connection refused")})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
	if body["status"] != "degraded" || body["database"] != "unreachable" {
		t.Errorf("Expected degraded/unreachable, got %v", body)
	}
}
