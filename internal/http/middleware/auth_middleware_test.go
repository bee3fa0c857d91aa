package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/security"
)

func newTestCodec() *security.TokenCodec {
	return security.NewTokenCodec("0123456789abcdef0123456789abcdef", "karkasai", "karkasai-clients", 10*time.Minute)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticateMissingToken(t *testing.T) {
	h := Authenticate(newTestCodec())(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/groups", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", rr.Code)
	}
}

func TestAuthenticateGarbageToken(t *testing.T) {
	h := Authenticate(newTestCodec())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rr.Code)
	}
}

func TestAuthenticateValidTokenExposesClaims(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.IssueAccessToken("alice", "u1", []string{domain.RoleMember})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var sawSubject string
	h := Authenticate(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims missing from context")
		}
		sawSubject = claims.Subject
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if sawSubject != "u1" {
		t.Fatalf("subject = %q", sawSubject)
	}
}

func TestRequireRole(t *testing.T) {
	codec := newTestCodec()
	memberToken, _ := codec.IssueAccessToken("alice", "u1", []string{domain.RoleMember})
	adminToken, _ := codec.IssueAccessToken("root", "u2", []string{domain.RoleMember, domain.RoleAdmin})

	h := Authenticate(codec)(RequireRole(domain.RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/all", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("member on admin route: expected 403, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/all", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("admin on admin route: expected 204, got %d", rr.Code)
	}
}
