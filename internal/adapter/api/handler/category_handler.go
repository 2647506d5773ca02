package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/user/erp-api/internal/adapter/api/middleware"
	"github.com/user/erp-api/internal/domain"
	"github.com/user/erp-api/internal/usecase"
)

// MergeStrategyHeader names the merge strategy of the listing response.
const MergeStrategyHeader = "X-Merge-Strategy"

const mergeStrategy = "tenant-overrides-global"

var codePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// CategoryHandler serves the tenant-scoped category endpoints.
type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	logger  *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(uc usecase.CategoryUseCase, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{useCase: uc, logger: logger}
}

func tenantID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		// The tenant middleware guarantees the id; reaching here means a
		// wiring bug, not a client error.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return "", false
	}
	return id, true
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	params := usecase.ListParams{
		Search:    q.Get("search"),
		Type:      domain.CategoryType(q.Get("type")),
		Page:      page,
		Limit:     limit,
		SortField: usecase.SortField(q.Get("sort")),
		SortDir:   usecase.SortDirection(q.Get("dir")),
	}
	if params.Type != "" && !params.Type.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unknown category type %q", params.Type)})
		return
	}

	res, err := h.useCase.ListUnion(r.Context(), tenant, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set(MergeStrategyHeader, mergeStrategy)
	writeJSON(w, http.StatusOK, res)
}

type createRequest struct {
	Code        string `json:"code"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
	Icone       string `json:"icone"`
	TypeGlobal  string `json:"typeGlobal"`
	Scope       string `json:"scope"`
}

// normalizeCode uppercases and underscores a raw code.
func normalizeCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	return strings.ReplaceAll(code, " ", "_")
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	code := normalizeCode(req.Code)
	if code == "" || req.Nom == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "code and nom are required"})
		return
	}
	if !codePattern.MatchString(code) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid code %q", code)})
		return
	}

	scope := usecase.ScopeTenant
	switch req.Scope {
	case "", string(usecase.ScopeTenant):
	case "global", string(usecase.ScopeGlobal):
		scope = usecase.ScopeGlobal
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unknown scope %q", req.Scope)})
		return
	}

	typeGlobal := domain.CategoryType(req.TypeGlobal)
	if typeGlobal == "" {
		typeGlobal = domain.TypeExploitation
	}

	res, err := h.useCase.Create(r.Context(), tenant, usecase.CreateParams{
		Code:        code,
		Nom:         req.Nom,
		Description: req.Description,
		Icone:       req.Icone,
		TypeGlobal:  typeGlobal,
		Scope:       scope,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type updateRequest struct {
	Nom         *string `json:"nom"`
	Description *string `json:"description"`
	Icone       *string `json:"icone"`
	TypeGlobal  *string `json:"typeGlobal"`
}

// Update handles PATCH /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	ref, err := domain.ParseCategoryRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	params := usecase.UpdateParams{
		Nom:         req.Nom,
		Description: req.Description,
		Icone:       req.Icone,
	}
	if req.TypeGlobal != nil {
		t := domain.CategoryType(*req.TypeGlobal)
		params.TypeGlobal = &t
	}

	row, err := h.useCase.Update(r.Context(), tenant, ref, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.ViewOfTenant(*row))
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	ref, err := domain.ParseCategoryRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if err := h.useCase.Remove(r.Context(), tenant, ref, force); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Seed handles POST /categories/seed.
func (h *CategoryHandler) Seed(w http.ResponseWriter, r *http.Request) {
	tenant, ok := tenantID(w, r)
	if !ok {
		return
	}

	res, err := h.useCase.SeedDefaults(r.Context(), tenant)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
