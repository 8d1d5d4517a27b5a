package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type customerSeed struct {
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	AccountType string
	Addresses   []addressSeed
}

type addressSeed struct {
	Line1     string
	Line2     string
	City      string
	State     string
	Pincode   string
	Country   string
	IsPrimary bool
}

// Apply inserts basic seed data for manual testing. Customers are upserted
// by phone; addresses are only inserted when the customer has none yet, so
// repeated runs do not multiply rows.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	customers := []customerSeed{
		{
			FirstName: "Sita", LastName: "Kumar", Phone: "9876543210",
			Email: "sita@example.com", AccountType: "regular",
			Addresses: []addressSeed{
				{Line1: "House 1", Line2: "Near Park", City: "Vijayawada", State: "AP", Pincode: "520001", Country: "India", IsPrimary: true},
			},
		},
		{
			FirstName: "Ravi", LastName: "Shah", Phone: "9123456780",
			Email: "ravi@example.com", AccountType: "premium",
			Addresses: []addressSeed{
				{Line1: "Flat 302", Line2: "MG Road", City: "Hyderabad", State: "Telangana", Pincode: "500001", Country: "India", IsPrimary: true},
				{Line1: "Office 5", Line2: "Banjara Hills", City: "Hyderabad", State: "Telangana", Pincode: "500034", Country: "India", IsPrimary: false},
			},
		},
	}

	for _, c := range customers {
		if err := upsertCustomer(ctx, pool, c); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.Phone, err)
		}
	}
	return nil
}

func upsertCustomer(ctx context.Context, pool *pgxpool.Pool, c customerSeed) error {
	const q = `
INSERT INTO customers (first_name, last_name, phone, email, account_type)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (phone) DO UPDATE
SET first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    email = EXCLUDED.email,
    account_type = EXCLUDED.account_type
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, c.FirstName, c.LastName, c.Phone, c.Email, c.AccountType).Scan(&id); err != nil {
		return err
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE customer_id = $1`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, a := range c.Addresses {
		const insert = `
INSERT INTO addresses (customer_id, line1, line2, city, state, pincode, country, is_primary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
		if _, err := pool.Exec(ctx, insert, id, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.Country, a.IsPrimary); err != nil {
			return err
		}
	}

	_, err := pool.Exec(ctx, `
UPDATE customers
SET only_one_address = ((SELECT COUNT(*) FROM addresses WHERE customer_id = $1) = 1)
WHERE id = $1
`, id)
	return err
}
