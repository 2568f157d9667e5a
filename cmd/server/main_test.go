package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-quest/internal/platform/config"
)

func TestNewApp_Defaults(t *testing.T) {
	t.Setenv("LEARN_DATABASE_URL", "")
	t.Setenv("LEARN_CACHE_URL", "")
	t.Setenv("LEARN_CATALOG_SOURCE", "yaml")
	t.Setenv("LEARN_CATALOG_PATH", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	a, err := newApp(t.Context(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "builtin catalog served",
			path:       "/modules/html-foundations",
			wantStatus: http.StatusOK,
			wantBody:   `"id":"html-foundations"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			a.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestLoadCatalog_MissingDir(t *testing.T) {
	if _, err := loadCatalog(t.TempDir() + "/missing"); err == nil {
		t.Fatal("loadCatalog() should fail for a missing directory")
	}
}
