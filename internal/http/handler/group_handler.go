package handler

import (
	"net/http"
	"strconv"

	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/service"
)

type GroupHandler struct {
	groups *service.GroupService
	users  service.CredentialStore
	images service.ImageStore
}

func NewGroupHandler(groups *service.GroupService, users service.CredentialStore, images service.ImageStore) *GroupHandler {
	return &GroupHandler{groups: groups, users: users, images: images}
}

type groupRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	MaxMembers  int     `json:"maxMembers"`
	ImageURL    *string `json:"imageUrl"`
	TagIDs      []uint  `json:"tagIds"`
}

// parseGroupInput accepts either a JSON body or a multipart form carrying an
// optional image part.
func (h *GroupHandler) parseGroupInput(w http.ResponseWriter, r *http.Request) (service.GroupInput, bool) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed multipart form", nil)
			return service.GroupInput{}, false
		}
		maxMembers, _ := strconv.Atoi(r.FormValue("maxMembers"))
		imageURL, err := uploadFormImage(r, h.images)
		if err != nil {
			writeServiceError(w, r, err)
			return service.GroupInput{}, false
		}
		return service.GroupInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			MaxMembers:  maxMembers,
			ImageURL:    imageURL,
			TagIDs:      parseUintList(r.FormValue("tagIds")),
		}, true
	}

	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return service.GroupInput{}, false
	}
	return service.GroupInput{
		Title:       req.Title,
		Description: req.Description,
		MaxMembers:  req.MaxMembers,
		ImageURL:    req.ImageURL,
		TagIDs:      req.TagIDs,
	}, true
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	in, ok := h.parseGroupInput(w, r)
	if !ok {
		return
	}
	view, fieldErrs, err := h.groups.CreateGroup(r.Context(), user, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "group rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "groupID")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "group not found", nil)
		return
	}
	view, err := h.groups.GetGroup(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	result, err := h.groups.ListGroups(r.Context(), repository.PageRequest{Page: page, PageSize: pageSize})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, isAdmin, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, okID := uintParam(r, "groupID")
	if !okID {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "group not found", nil)
		return
	}
	in, ok := h.parseGroupInput(w, r)
	if !ok {
		return
	}
	view, fieldErrs, err := h.groups.UpdateGroup(r.Context(), user.ID, isAdmin, id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, r, "group rejected", fieldErrs)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, _, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, okID := uintParam(r, "groupID")
	if !okID {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "group not found", nil)
		return
	}
	// Joining writes a membership row, so resolve the full user record.
	member, err := h.users.FindByID(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	view, err := h.groups.JoinGroup(r.Context(), id, member)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, isAdmin, ok := actor(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, okID := uintParam(r, "groupID")
	if !okID {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "group not found", nil)
		return
	}
	if err := h.groups.DeleteGroup(r.Context(), user.ID, isAdmin, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
