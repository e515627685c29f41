package models

// CartItem is one line of the cart: a chosen product variant and how many of it.
// Display fields are copied when the item is created and never re-read from the catalog.
type CartItem struct {
	ID        string  `json:"id" validate:"required"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"gte=0"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
}

// VariantKey identifies the purchasable unit a line item refers to
type VariantKey struct {
	ProductID int64
	Size      string
	Color     string
}

// Key returns the variant key of the item
func (i CartItem) Key() VariantKey {
	return VariantKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// Color is a selectable product color
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Product represents a product in the catalog
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description,omitempty"`
	Sizes       []string `json:"sizes"`
	Colors      []Color  `json:"colors"`
}
