package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/erp-api/internal/usecase"
)

// AdminHandler handles HTTP requests reserved to platform administrators.
type AdminHandler struct {
	admin  usecase.GlobalCategoryAdmin
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin usecase.GlobalCategoryAdmin, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// DeleteGlobalCategory handles DELETE /admin/global-categories/{id}.
// The delete is unconditional: no in-use check applies to catalog entries.
func (h *AdminHandler) DeleteGlobalCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid category id"})
		return
	}

	if err := h.admin.DeleteGlobal(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
