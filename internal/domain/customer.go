package domain

import "time"

// Customer is a CRM customer record. OnlyOneAddress is derived: it is
// recomputed from the address count after every address insert or delete
// and must never be set directly by a client.
type Customer struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Phone          string    `json:"phone"`
	Email          *string   `json:"email"`
	AccountType    *string   `json:"account_type"`
	OnlyOneAddress bool      `json:"only_one_address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CustomerListItem is a customer row in the paginated listing, annotated
// with a concatenated "city|pincode" summary of its addresses.
type CustomerListItem struct {
	Customer
	AddressesSummary *string `json:"addresses_summary"`
}

// CustomerAddressCount is an aggregate row for customers holding more
// than one address.
type CustomerAddressCount struct {
	CustomerID   int64  `json:"customer_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressCount int    `json:"address_count"`
}

// ValidAccountType reports whether v is a permitted account type.
func ValidAccountType(v string) bool {
	return v == "regular" || v == "premium"
}
