package handler

import (
	"net/http"

	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/service"
)

type PostHandler struct {
	posts  *service.PostService
	images service.ImageStore
}

func NewPostHandler(posts *service.PostService, images service.ImageStore) *PostHandler {
	return &PostHandler{posts: posts, images: images}
}

type postRequest struct {
	Title    string  `json:"title"`
	ImageURL *string `json:"imageUrl"`
}

func (h *PostHandler) parsePostInput(w http.ResponseWriter, r *http.Request) (service.PostInput, bool) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed multipart form", nil)
			return service.PostInput{}, false
		}
		imageURL, err := uploadFormImage(r, h.images)
		if err != nil {
			writeServiceError(w, r, err)
			return service.PostInput{}, false
		}
		return service.PostInput{Title: r.FormValue("title"), ImageURL: imageURL}, true
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return service.PostInput{}, false
	}
	return service.PostInput{Title: req.Title, ImageURL: req.ImageURL}, true
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	groupID, okID := uintParam(r, "groupID")
	if !okID {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "group not found", nil)
		return
	}
	in, ok := h.parsePostInput(w, r)
	if !ok {
		return
	}
	view, fieldErrs, err := h.posts.CreatePost(r.Context(), groupID, user, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "post rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, ok1 := uintParam(r, "groupID")
	postID, ok2 := uintParam(r, "postID")
	if !ok1 || !ok2 {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		return
	}
	view, err := h.posts.GetPost(r.Context(), groupID, postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	groupID, ok := uintParam(r, "groupID")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "group not found", nil)
		return
	}
	views, err := h.posts.ListPosts(r.Context(), groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, isAdmin, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	groupID, ok1 := uintParam(r, "groupID")
	postID, ok2 := uintParam(r, "postID")
	if !ok1 || !ok2 {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		return
	}
	in, ok := h.parsePostInput(w, r)
	if !ok {
		return
	}
	view, fieldErrs, err := h.posts.UpdatePost(r.Context(), groupID, postID, user.ID, isAdmin, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "post rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, isAdmin, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	groupID, ok1 := uintParam(r, "groupID")
	postID, ok2 := uintParam(r, "postID")
	if !ok1 || !ok2 {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		return
	}
	if err := h.posts.DeletePost(r.Context(), groupID, postID, user.ID, isAdmin); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
