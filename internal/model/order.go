package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a single order row.
type OrderStatus string

const (
	StatusPreparing OrderStatus = "preparing"
	StatusShipping  OrderStatus = "shipping"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus converts a wire value into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPreparing, StatusShipping, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label returns the storefront display label.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPreparing:
		return "Sedang Disiapkan"
	case StatusShipping:
		return "Dalam Pengiriman"
	case StatusCompleted:
		return "Selesai"
	case StatusCancelled:
		return "Dibatalkan"
	}
	return string(s)
}

// Order represents one persisted order row. A checkout produces one row
// per cart line item, all sharing BatchID and CreatedAt.
type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	BatchID         uuid.UUID     `json:"batchId" db:"batch_id"`
	UserID          string        `json:"userId" db:"user_id"`
	ItemID          string        `json:"itemId" db:"item_id"`
	Quantity        int           `json:"quantity" db:"quantity"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
	Status          OrderStatus   `json:"status" db:"status"`
	DeliveryAddress string        `json:"deliveryAddress" db:"delivery_address"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentAuxInfo  *string       `json:"paymentAuxInfo,omitempty" db:"payment_aux_info"`
}

// DraftOrder carries the checkout form fields.
type DraftOrder struct {
	DeliveryAddress string        `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	PaymentAuxInfo  string        `json:"paymentAuxInfo,omitempty"`
	IdempotencyKey  string        `json:"-"`
}

// SubmitResult is returned by a successful checkout.
type SubmitResult struct {
	BatchID   uuid.UUID   `json:"batchId"`
	OrderIDs  []uuid.UUID `json:"orderIds"`
	CreatedAt time.Time   `json:"createdAt"`
	Total     int64       `json:"total"`
}

// StatusUpdateRequest is the admin payload for a status transition.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// HistoryFilter selects a subset of a customer's order history.
type HistoryFilter string

const (
	FilterAll        HistoryFilter = "all"
	FilterCompleted  HistoryFilter = "completed"
	FilterInProgress HistoryFilter = "in_progress"
	FilterCancelled  HistoryFilter = "cancelled"
)

// Matches reports whether an order status belongs to the filter.
func (f HistoryFilter) Matches(s OrderStatus) bool {
	switch f {
	case FilterCompleted:
		return s == StatusCompleted
	case FilterInProgress:
		return s == StatusPreparing || s == StatusShipping
	case FilterCancelled:
		return s == StatusCancelled
	default:
		return true
	}
}

// OrderView is an order row joined with its menu item, as shown in history.
type OrderView struct {
	Order
	ItemName   string `json:"itemName"`
	UnitPrice  int64  `json:"unitPrice"`
	LineTotal  int64  `json:"lineTotal"`
	ImageRef   string `json:"imageRef"`
	StatusText string `json:"statusLabel"`
	Cancelable bool   `json:"cancelable"`
	Remaining  string `json:"remaining,omitempty"`
}

// HistoryResponse is the payload for a customer's order history.
type HistoryResponse struct {
	Filter HistoryFilter         `json:"filter"`
	Counts map[HistoryFilter]int `json:"counts"`
	Orders []OrderView           `json:"orders"`
}
