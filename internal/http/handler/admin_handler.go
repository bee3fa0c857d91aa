package handler

import (
	"net/http"

	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/service"
)

type AdminHandler struct {
	groups *service.GroupService
}

func NewAdminHandler(groups *service.GroupService) *AdminHandler {
	return &AdminHandler{groups: groups}
}

// Overview returns every group fully expanded with members, tags, posts,
// and comment threads. Mounted behind the admin role.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	details, err := h.groups.AdminOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, details)
}
