package handler

import (
	"net/http"

	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
	images   service.ImageStore
}

func NewCommentHandler(comments *service.CommentService, images service.ImageStore) *CommentHandler {
	return &CommentHandler{comments: comments, images: images}
}

type commentRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

func (h *CommentHandler) parseCommentInput(w http.ResponseWriter, r *http.Request) (service.CommentInput, bool) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed multipart form", nil)
			return service.CommentInput{}, false
		}
		imageURL, err := uploadFormImage(r, h.images)
		if err != nil {
			writeServiceError(w, r, err)
			return service.CommentInput{}, false
		}
		return service.CommentInput{Content: r.FormValue("content"), ImageURL: imageURL}, true
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return service.CommentInput{}, false
	}
	return service.CommentInput{Content: req.Content, ImageURL: req.ImageURL}, true
}

func commentPath(w http.ResponseWriter, r *http.Request) (groupID, postID uint, ok bool) {
	groupID, ok1 := uintParam(r, "groupID")
	postID, ok2 := uintParam(r, "postID")
	if !ok1 || !ok2 {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		return 0, 0, false
	}
	return groupID, postID, true
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	groupID, postID, ok := commentPath(w, r)
	if !ok {
		return
	}
	in, ok := h.parseCommentInput(w, r)
	if !ok {
		return
	}
	view, fieldErrs, err := h.comments.CreateComment(r.Context(), groupID, postID, user, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "comment rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, postID, ok := commentPath(w, r)
	if !ok {
		return
	}
	views, err := h.comments.ListComments(r.Context(), groupID, postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, isAdmin, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	groupID, postID, ok := commentPath(w, r)
	if !ok {
		return
	}
	commentID, okID := uintParam(r, "commentID")
	if !okID {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "comment not found", nil)
		return
	}
	in, ok := h.parseCommentInput(w, r)
	if !ok {
		return
	}
	view, fieldErrs, err := h.comments.UpdateComment(r.Context(), groupID, postID, commentID, user.ID, isAdmin, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "comment rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, isAdmin, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	groupID, postID, ok := commentPath(w, r)
	if !ok {
		return
	}
	commentID, okID := uintParam(r, "commentID")
	if !okID {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "comment not found", nil)
		return
	}
	if err := h.comments.DeleteComment(r.Context(), groupID, postID, commentID, user.ID, isAdmin); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
