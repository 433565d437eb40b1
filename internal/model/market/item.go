package market

import "time"

// Item is a marketplace listing.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Condition   string    `json:"condition"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	SellerID    string    `json:"sellerId"`
	Sold        bool      `json:"sold"`
	CreatedAt   time.Time `json:"createdAt"`
}
