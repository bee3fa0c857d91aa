package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/http/middleware"
	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/service"
)

const maxMultipartMemory = 10 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return false
	}
	return true
}

func uintParam(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// actor rebuilds the calling user from the verified access claims. Enough
// for authorship and ownership checks without a store round-trip.
func actor(r *http.Request) (*domain.User, bool, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, false, false
	}
	return &domain.User{ID: claims.Subject, Username: claims.Username}, middleware.IsAdmin(claims), true
}

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "multipart/form-data"
}

// uploadFormImage stores the optional "image" part and returns its URL.
func uploadFormImage(r *http.Request, images service.ImageStore) (*string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	url, err := images.Upload(r.Context(), header.Filename, file)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, nil
	}
	return &url, nil
}

func parseUintList(raw string) []uint {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uint, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		out = append(out, uint(v))
	}
	return out
}

// writeServiceError maps domain and repository errors onto API responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrGroupNotFound),
		errors.Is(err, repository.ErrPostNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrTagNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "not allowed", nil)
	case errors.Is(err, service.ErrGroupFull):
		response.Error(w, r, http.StatusConflict, "GROUP_FULL", err.Error(), nil)
	case errors.Is(err, service.ErrAlreadyMember):
		response.Error(w, r, http.StatusConflict, "ALREADY_MEMBER", err.Error(), nil)
	case errors.Is(err, service.ErrNotMember):
		response.Error(w, r, http.StatusForbidden, "NOT_MEMBER", err.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
