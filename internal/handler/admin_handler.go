package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler handles requests reserved for administrators. The router
// only mounts it behind the admin role check.
type AdminHandler struct {
	admin  service.AdminService
	users  service.UserService
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin service.AdminService, users service.UserService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		users:  users,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders handles GET /api/admin/orders requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status *model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, ok := model.ParseOrderStatus(raw)
		if !ok {
			writeError(w, r, model.ErrInvalidStatus, h.logger)
			return
		}
		status = &s
	}

	orders, err := h.admin.ListOrders(r.Context(), status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// TransitionOrder handles PUT /api/admin/orders/{id}/status requests.
func (h *AdminHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.admin.TransitionOrder(r.Context(), orderID, req.Status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// CreateMenuItem handles POST /api/admin/menu requests.
func (h *AdminHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item model.MenuItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.admin.CreateMenuItem(r.Context(), &item); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/admin/menu/{id} requests. The path ID wins
// over any ID in the body.
func (h *AdminHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item model.MenuItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	item.ID = chi.URLParam(r, "id")

	if err := h.admin.UpdateMenuItem(r.Context(), &item); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/admin/menu/{id} requests.
func (h *AdminHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteMenuItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRole handles PUT /api/admin/users/{id}/role requests.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req model.RoleUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.users.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /api/admin/users requests.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateCategory handles POST /api/admin/categories requests. Any ID in the
// body is ignored.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if err := decodeJSON(r, &category); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	category.ID = 0

	if err := h.admin.CreateCategory(r.Context(), &category); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/admin/categories/{id} requests. The path ID
// wins over any ID in the body.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var category model.Category
	if err := decodeJSON(r, &category); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	category.ID = id

	if err := h.admin.UpdateCategory(r.Context(), &category); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/admin/categories/{id} requests.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.admin.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
