package model

// MaxQuantity caps the quantity of a single cart line.
const MaxQuantity = 999

// ValidQuantity reports whether qty is an acceptable line quantity.
func ValidQuantity(qty int) bool {
	return qty >= 1 && qty <= MaxQuantity
}

// CartLineItem is one distinct menu item in a cart with a price snapshot.
type CartLineItem struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	ImageRef  string `json:"imageRef"`
}

// LineTotal returns unit price times quantity.
func (i CartLineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// CartItemRequest is the payload for adding or updating a cart line.
type CartItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CartResponse is the payload describing a cart.
type CartResponse struct {
	Items []CartLineItem `json:"items"`
	Total int64          `json:"total"`
}
