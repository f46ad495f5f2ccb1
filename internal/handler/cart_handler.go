package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CartHandler handles the caller's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Quantity < 0 || req.Quantity > model.MaxQuantity {
		writeError(w, r, model.ErrInvalidQuantity, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), actor.UserID, req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// SetQuantity handles PUT /api/cart/items/{itemId} requests.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if !model.ValidQuantity(req.Quantity) {
		writeError(w, r, model.ErrInvalidQuantity, h.logger)
		return
	}

	cart, err := h.service.SetQuantity(r.Context(), actor.UserID, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{itemId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), actor.UserID, chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), actor.UserID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
