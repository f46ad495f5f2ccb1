package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeSubmission        = "SUBMISSION_FAILED"
	ErrCodeUnauthenticated   = "UNAUTHENTICATED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeAlreadyTerminal   = "ALREADY_TERMINAL"
	ErrCodeWindowExpired     = "WINDOW_EXPIRED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeStaleOrder        = "STALE_ORDER"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeMenuItemNotFound  = "MENU_ITEM_NOT_FOUND"
	ErrCodeMenuItemExists    = "MENU_ITEM_EXISTS"
	ErrCodeMenuItemInUse     = "MENU_ITEM_IN_USE"
	ErrCodeInvalidMenuItem   = "INVALID_MENU_ITEM"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryExists    = "CATEGORY_EXISTS"
	ErrCodeCategoryInUse     = "CATEGORY_IN_USE"
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
	ErrCodeInvalidRole       = "INVALID_ROLE"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeDuplicateRequest  = "DUPLICATE_REQUEST"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnauthenticated   = NewDomainError(ErrCodeUnauthenticated, "Sign in is required")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Administrator role is required")
	ErrAlreadyTerminal   = NewDomainError(ErrCodeAlreadyTerminal, "Order is already completed or cancelled")
	ErrWindowExpired     = NewDomainError(ErrCodeWindowExpired, "Cancellation window has closed")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Status transition is not allowed")
	ErrCustomerForbidden = NewDomainError(ErrCodeForbidden, "Customers may only cancel their orders")
	ErrStaleOrder        = NewDomainError(ErrCodeStaleOrder, "Order changed concurrently, refresh and retry")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrMenuItemNotFound  = NewDomainError(ErrCodeMenuItemNotFound, "Menu item not found")
	ErrMenuItemExists    = NewDomainError(ErrCodeMenuItemExists, "Menu item with this ID already exists")
	ErrMenuItemInUse     = NewDomainError(ErrCodeMenuItemInUse, "Menu item is referenced by existing orders")
	ErrInvalidMenuItem   = NewDomainError(ErrCodeInvalidMenuItem, "Menu item requires an ID, a name, an existing category and a non-negative price")
	ErrCategoryNotFound  = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrCategoryExists    = NewDomainError(ErrCodeCategoryExists, "Category with this name already exists")
	ErrCategoryInUse     = NewDomainError(ErrCodeCategoryInUse, "Category still has menu items")
	ErrInvalidCategory   = NewDomainError(ErrCodeInvalidCategory, "Category name must be 1 to 100 characters")
	ErrInvalidRole       = NewDomainError(ErrCodeInvalidRole, "Role must be customer or admin")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrUserNotFound      = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 999")
	ErrDuplicateRequest  = NewDomainError(ErrCodeDuplicateRequest, "A checkout with this idempotency key is in progress")
)

// FieldError describes one invalid checkout field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors collects every field problem found in a draft order.
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationErrors) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Empty reports whether no field errors were recorded.
func (e *ValidationErrors) Empty() bool {
	return len(e.Fields) == 0
}

// SubmissionError reports a failed checkout write. The cart is preserved.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
