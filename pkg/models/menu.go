package models

// Menu reference data. Owned by the menu subsystem; the order service only
// reads it to validate ids at order-creation time.

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"category_id"`
	PriceSolo   int64  `json:"price_solo"`
	PriceCombo  *int64 `json:"price_combo,omitempty"`
	IsAvailable bool   `json:"is_available"`
	CanBeCombo  bool   `json:"can_be_combo"`
}

// Extra is an add-on, either scoped to a single product or global.
type Extra struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     int64   `json:"price"`
	ProductID *string `json:"product_id,omitempty"`
	IsGlobal  bool    `json:"is_global"`
}
