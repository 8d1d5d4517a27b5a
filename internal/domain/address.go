package domain

import "time"

// DefaultCountry is applied when an address is created without a country.
const DefaultCountry = "India"

// Address belongs to exactly one customer. At most one address per
// customer carries IsPrimary at any time.
type Address struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Pincode    string    `json:"pincode"`
	Country    string    `json:"country"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
