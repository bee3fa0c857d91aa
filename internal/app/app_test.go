package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/karkasai/karkasai-backend/internal/config"
	"github.com/karkasai/karkasai-backend/internal/observability"
)

func testConfig() *config.Config {
	return &config.Config{
		Profile:        "dev",
		HTTPAddr:       "127.0.0.1:0",
		JWTSecret:      strings.Repeat("k", 32),
		JWTIssuer:      "karkasai",
		JWTAudience:    "karkasai-clients",
		AccessTokenTTL: 10 * time.Minute,
		SessionTTL:     72 * time.Hour,
		CORSOrigins:    []string{"http://localhost:5173"},
		AdminUsername:  "admin",
		AdminEmail:     "admin@admin.com",
		AdminPassword:  "Bootstrap1",
	}
}

func testRuntime() *observability.Runtime {
	return &observability.Runtime{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNewWiresServerAndSeedsAdmin(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(), testRuntime())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if a.Server == nil || a.Server.Handler == nil {
		t.Fatal("server not wired")
	}
	if a.bridge != nil || a.rdb != nil {
		t.Fatal("redis components must stay nil without REDIS_ADDR")
	}

	// The admin seeded at construction time can log in immediately.
	body := `{"username":"admin","password":"Bootstrap1"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	a.Server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin login: %d body=%s", rr.Code, rr.Body.String())
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatal("login returned no access token")
	}

	// The seeded admin reaches admin-only routes.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/all", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.AccessToken)
	a.Server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin overview: %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(), testRuntime())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:5173", "https://app.example.com", "not a url"})
	want := []string{"localhost:5173", "app.example.com"}
	if len(got) != len(want) {
		t.Fatalf("patterns = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("patterns[%d] = %q want %q", i, got[i], want[i])
		}
	}
}
