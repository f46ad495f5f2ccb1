package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	errInvalidJSON    = model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	errInvalidOrderID = model.NewDomainError(model.ErrCodeValidation, "invalid order ID format")
	errInvalidCatID   = model.NewDomainError(model.ErrCodeValidation, "invalid category ID format")
	errInternal       = model.NewDomainError(model.ErrCodeInternalError, "internal server error")
)

// statusByCode maps domain error codes to HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:       http.StatusBadRequest,
	model.ErrCodeValidation:        http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:   http.StatusBadRequest,
	model.ErrCodeInvalidMenuItem:   http.StatusBadRequest,
	model.ErrCodeInvalidCategory:   http.StatusBadRequest,
	model.ErrCodeInvalidRole:       http.StatusBadRequest,
	model.ErrCodeInvalidStatus:     http.StatusBadRequest,
	model.ErrCodeUnauthenticated:   http.StatusUnauthorized,
	model.ErrCodeUnauthorised:      http.StatusUnauthorized,
	model.ErrCodeForbidden:         http.StatusForbidden,
	model.ErrCodeOrderNotFound:     http.StatusNotFound,
	model.ErrCodeMenuItemNotFound:  http.StatusNotFound,
	model.ErrCodeCategoryNotFound:  http.StatusNotFound,
	model.ErrCodeUserNotFound:      http.StatusNotFound,
	model.ErrCodeAlreadyTerminal:   http.StatusConflict,
	model.ErrCodeInvalidTransition: http.StatusConflict,
	model.ErrCodeStaleOrder:        http.StatusConflict,
	model.ErrCodeMenuItemExists:    http.StatusConflict,
	model.ErrCodeMenuItemInUse:     http.StatusConflict,
	model.ErrCodeCategoryExists:    http.StatusConflict,
	model.ErrCodeCategoryInUse:     http.StatusConflict,
	model.ErrCodeDuplicateRequest:  http.StatusConflict,
	model.ErrCodeWindowExpired:     http.StatusUnprocessableEntity,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// errorResponse converts err into a status code and response body.
func errorResponse(err error) (int, model.ErrorResponse) {
	var verr *model.ValidationErrors
	if errors.As(err, &verr) {
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "checkout form is incomplete",
			Fields:  verr.Fields,
		}
	}

	var subErr *model.SubmissionError
	if errors.As(err, &subErr) {
		return http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   model.ErrCodeSubmission,
			Message: "order could not be placed, your cart was kept; please retry",
		}
	}

	var domErr *model.DomainError
	if errors.As(err, &domErr) {
		if status, ok := statusByCode[domErr.Code]; ok {
			return status, model.ErrorResponse{Error: domErr.Code, Message: domErr.Message}
		}
	}

	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   errInternal.Code,
		Message: errInternal.Message,
	}
}

// writeError maps err to a status code and writes the error body.
// Server-side failures are logged at error level, client mistakes at debug.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, body := errorResponse(err)

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("handler error")

	writeJSON(w, status, body)
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// actorFrom returns the authenticated caller placed by the identity middleware.
func actorFrom(r *http.Request) (model.Actor, error) {
	actor, ok := model.ActorFrom(r.Context())
	if !ok {
		return model.Actor{}, model.ErrUnauthenticated
	}
	return actor, nil
}

func parseOrderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidOrderID
	}
	return id, nil
}

func parseCategoryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidCatID
	}
	return id, nil
}
