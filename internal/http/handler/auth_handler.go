package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/observability"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/security"
	"github.com/karkasai/karkasai-backend/internal/service"
)

// AuthHandler orchestrates the credential lifecycle: register, login,
// refresh, logout. It composes the token codec, the session manager, and the
// credential store; all session-liveness decisions live in SessionService.
type AuthHandler struct {
	codec         *security.TokenCodec
	sessions      *service.SessionService
	users         service.CredentialStore
	log           *slog.Logger
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(codec *security.TokenCodec, sessions *service.SessionService, users service.CredentialStore, log *slog.Logger, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		codec:         codec,
		sessions:      sessions,
		users:         users,
		log:           log,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register creates an account and assigns the default member role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.users.FindByUsername(r.Context(), req.Username); err == nil {
		response.Error(w, r, http.StatusUnprocessableEntity, "USERNAME_TAKEN", "Username already taken", nil)
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		writeServiceError(w, r, err)
		return
	}

	user, fieldErrs, err := h.users.CreateAccount(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "account rejected", fieldErrs)
		return
	}
	if err := h.users.AssignRole(r.Context(), user.ID, domain.RoleMember); err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.Audit(r, "account.registered", "user_id", user.ID, "username", user.Username)
	response.JSON(w, r, http.StatusCreated, map[string]string{"id": user.ID, "username": user.Username})
}

// Login verifies credentials, mints a session with access and refresh
// tokens, and places the refresh token in the HTTP-only cookie. The access
// token is the only credential returned in the body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin(r.Context(), "unknown_user")
			response.Error(w, r, http.StatusUnprocessableEntity, "LOGIN_FAILED", "User does not exist", nil)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	if !h.users.VerifyPassword(user, req.Password) {
		observability.RecordAuthLogin(r.Context(), "bad_password")
		response.Error(w, r, http.StatusUnprocessableEntity, "LOGIN_FAILED", "Username or password is incorrect", nil)
		return
	}

	sessionID := uuid.New()
	expiresAt := time.Now().Add(h.sessionTTL)

	accessToken, err := h.codec.IssueAccessToken(user.Username, user.ID, h.users.ListRoles(user))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	refreshToken, err := h.codec.IssueRefreshToken(sessionID, user.ID, expiresAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.sessions.CreateSession(r.Context(), sessionID, user.ID, refreshToken, expiresAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	security.SetRefreshCookie(w, refreshToken, expiresAt, h.secureCookies)
	observability.RecordAuthLogin(r.Context(), "success")
	observability.Audit(r, "session.created", "user_id", user.ID, "session_id", sessionID.String())
	response.JSON(w, r, http.StatusOK, accessTokenResponse{AccessToken: accessToken})
}

// Refresh rotates the refresh token and mints a new access token. Every
// failure collapses to the same generic outcome so callers cannot tell a
// revoked session from an expired or forged token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshCookieName)
	if raw == "" {
		h.refreshRejected(w, r, "missing_cookie")
		return
	}
	claims, ok := h.codec.TryParseRefreshToken(raw)
	if !ok {
		h.refreshRejected(w, r, "unparseable")
		return
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		h.refreshRejected(w, r, "missing_session_claim")
		return
	}
	valid, err := h.sessions.IsSessionValid(r.Context(), sessionID, raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !valid {
		h.refreshRejected(w, r, "session_invalid")
		return
	}
	user, err := h.users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.refreshRejected(w, r, "unknown_user")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	expiresAt := time.Now().Add(h.sessionTTL)
	accessToken, err := h.codec.IssueAccessToken(user.Username, user.ID, h.users.ListRoles(user))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	refreshToken, err := h.codec.IssueRefreshToken(sessionID, user.ID, expiresAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.sessions.ExtendSession(r.Context(), sessionID, refreshToken, expiresAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	security.SetRefreshCookie(w, refreshToken, expiresAt, h.secureCookies)
	observability.RecordAuthRefresh(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, accessTokenResponse{AccessToken: accessToken})
}

func (h *AuthHandler) refreshRejected(w http.ResponseWriter, r *http.Request, reason string) {
	observability.RecordAuthRefresh(r.Context(), reason)
	response.Error(w, r, http.StatusUnprocessableEntity, "INVALID_REFRESH_TOKEN", "Invalid refresh token", nil)
}

// Logout invalidates the session referenced by the refresh cookie, when one
// is present and parseable, and clears the cookie unconditionally. It never
// fails loudly for "already logged out".
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshCookieName)
	if claims, ok := h.codec.TryParseRefreshToken(raw); ok {
		if sessionID, err := uuid.Parse(claims.SessionID); err == nil {
			if err := h.sessions.InvalidateSession(r.Context(), sessionID); err != nil {
				h.log.Error("invalidate session on logout", "error", err)
			} else {
				observability.Audit(r, "session.revoked", "session_id", sessionID.String())
			}
		}
	}
	security.ClearRefreshCookie(w, h.secureCookies)
	observability.RecordAuthLogout(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}
