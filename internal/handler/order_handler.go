package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/lifecycle"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader carries the client's checkout retry key.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles checkout and the customer side of the order lifecycle.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var draft model.DraftOrder
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	draft.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

	result, err := h.service.Submit(r.Context(), actor.UserID, draft)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// History handles GET /api/orders requests.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	filter := model.HistoryFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = model.FilterAll
	}

	history, err := h.service.History(r.Context(), actor.UserID, filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), actor.UserID, orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// countdownEvent is the data payload of one server-sent countdown event.
type countdownEvent struct {
	RemainingSeconds int64  `json:"remainingSeconds"`
	Label            string `json:"label"`
	Cancelable       bool   `json:"cancelable"`
}

// Countdown handles GET /api/orders/{id}/countdown as a server-sent event
// stream. One "countdown" event is sent per tick; the stream ends with an
// "expired" event once the window closes.
func (h *OrderHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	ticks, err := h.service.Countdown(r.Context(), actor.UserID, orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug().Err(err).Str("order_id", orderID.String()).Msg("failed to clear write deadline for countdown stream")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for remaining := range ticks {
		name := "countdown"
		if remaining <= 0 {
			name = "expired"
		}
		if err := writeEvent(w, name, countdownEvent{
			RemainingSeconds: int64(remaining / time.Second),
			Label:            lifecycle.FormatRemaining(remaining),
			Cancelable:       remaining > 0,
		}); err != nil {
			h.logger.Debug().Err(err).Str("order_id", orderID.String()).Msg("countdown client went away")
			return
		}
		if err := rc.Flush(); err != nil {
			h.logger.Error().Err(err).Msg("response does not support streaming")
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
