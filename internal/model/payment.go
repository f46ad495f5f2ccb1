package model

// PaymentMethod is the tagged payment variant chosen at checkout.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentQRIS           PaymentMethod = "qris"
)

// Valid reports whether the method is one of the recognised variants.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentBankTransfer, PaymentQRIS:
		return true
	}
	return false
}

// RequiresAuxInfo reports whether the method needs an auxiliary field.
// Unknown methods report false; callers check Valid first.
func (m PaymentMethod) RequiresAuxInfo() bool {
	switch m {
	case PaymentBankTransfer, PaymentQRIS:
		return true
	case PaymentCashOnDelivery:
		return false
	}
	return false
}

// AuxInfoField names what the auxiliary field holds for this method.
func (m PaymentMethod) AuxInfoField() string {
	switch m {
	case PaymentBankTransfer:
		return "account number"
	case PaymentQRIS:
		return "phone number"
	}
	return ""
}

// Label returns the storefront display label.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCashOnDelivery:
		return "COD (Cash on Delivery)"
	case PaymentBankTransfer:
		return "Bank Transfer"
	case PaymentQRIS:
		return "QRIS"
	}
	return string(m)
}
