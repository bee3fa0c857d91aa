package handler

import (
	"net/http"

	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/service"
)

type TagHandler struct {
	tags *service.TagService
}

func NewTagHandler(tags *service.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

type tagRequest struct {
	Name   string `json:"name"`
	Usable *bool  `json:"usable"`
}

// List is public and only shows usable tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.tags.ListTags(r.Context(), false)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

// ListAll includes retired tags. Mounted behind the admin role.
func (h *TagHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.tags.ListTags(r.Context(), true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	usable := true
	if req.Usable != nil {
		usable = *req.Usable
	}
	view, fieldErrs, err := h.tags.CreateTag(r.Context(), req.Name, usable)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "tag rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "tagID")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "tag not found", nil)
		return
	}
	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	usable := true
	if req.Usable != nil {
		usable = *req.Usable
	}
	view, fieldErrs, err := h.tags.UpdateTag(r.Context(), id, req.Name, usable)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "tag rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "tagID")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "tag not found", nil)
		return
	}
	if err := h.tags.DeleteTag(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
