package domain

// Rating is the aggregated review score of a product.
type Rating struct {
	Rate  float64 `json:"rate" validate:"gte=0,lte=5"`
	Count int     `json:"count" validate:"gte=0"`
}

// Product is a catalog item. Products are never mutated locally.
type Product struct {
	ID          int64   `json:"id" validate:"gt=0"`
	Title       string  `json:"title"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty" validate:"omitempty"`
}

// HasRating reports whether the product carries a rating record.
func (p Product) HasRating() bool {
	return p.Rating != nil
}
