// Package checkout decides whether a draft order may be submitted.
package checkout

import (
	"strings"

	"storefront/internal/model"
)

// Field names reported in validation errors.
const (
	FieldDeliveryAddress = "deliveryAddress"
	FieldPaymentMethod   = "paymentMethod"
	FieldPaymentAuxInfo  = "paymentAuxInfo"
	FieldCart            = "cart"
)

// Validate checks a draft against the cart contents. Every rule is
// evaluated so the caller can display all problems at once. It returns nil
// or a *model.ValidationErrors with at least one entry.
func Validate(draft model.DraftOrder, items []model.CartLineItem) error {
	errs := &model.ValidationErrors{}

	if strings.TrimSpace(draft.DeliveryAddress) == "" {
		errs.Add(FieldDeliveryAddress, "delivery address is required")
	}

	aux := strings.TrimSpace(draft.PaymentAuxInfo)

	switch draft.PaymentMethod {
	case model.PaymentBankTransfer, model.PaymentQRIS:
		if aux == "" {
			errs.Add(FieldPaymentAuxInfo, draft.PaymentMethod.AuxInfoField()+" is required for "+draft.PaymentMethod.Label())
		}
	case model.PaymentCashOnDelivery:
		if aux != "" {
			errs.Add(FieldPaymentAuxInfo, "must be empty for cash on delivery")
		}
	case "":
		errs.Add(FieldPaymentMethod, "payment method is required")
	default:
		errs.Add(FieldPaymentMethod, "unrecognised payment method "+string(draft.PaymentMethod))
	}

	if len(items) == 0 {
		errs.Add(FieldCart, "cart is empty")
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

// NormalizeAuxInfo returns the value to persist for the draft's auxiliary
// payment field: trimmed text for methods that need it, nil otherwise.
func NormalizeAuxInfo(draft model.DraftOrder) *string {
	if !draft.PaymentMethod.RequiresAuxInfo() {
		return nil
	}
	aux := strings.TrimSpace(draft.PaymentAuxInfo)
	return &aux
}
