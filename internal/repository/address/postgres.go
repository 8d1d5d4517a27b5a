package address

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"crm-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addressColumns = "id, customer_id, line1, line2, city, state, pincode, country, is_primary, created_at, updated_at"

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create inserts the address and recomputes the owning customer's
// only-one-address flag in a single transaction. When the new address is
// primary, the customer's other primaries are cleared before the insert,
// so at most one primary is ever readable.
func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if a.IsPrimary {
		if err := clearOtherPrimaries(ctx, tx, a.CustomerID, 0); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO addresses (customer_id, line1, line2, city, state, pincode, country, is_primary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + addressColumns
	out, err := r.scanAddress(tx.QueryRow(ctx, q,
		a.CustomerID, a.Line1, a.Line2, a.City, a.State, a.Pincode, a.Country, a.IsPrimary))
	if err != nil {
		return nil, err
	}

	if err := recomputeOnlyOneAddress(ctx, tx, a.CustomerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE id = $1
`
	return r.scanAddress(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE customer_id = $1
ORDER BY is_primary DESC, id ASC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		r.logger.Printf("address repo: list customer_id=%d error=%v", customerID, err)
		return nil, err
	}
	defer rows.Close()
	return collectAddresses(rows)
}

// Update applies a partial column update. When is_primary is being set,
// the customer's other primaries are cleared first inside the same
// transaction, keeping the single-primary invariant atomic.
func (r *postgresRepo) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var customerID int64
	err = tx.QueryRow(ctx, `SELECT customer_id FROM addresses WHERE id = $1`, id).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if in.IsPrimary != nil && *in.IsPrimary {
		if err := clearOtherPrimaries(ctx, tx, customerID, id); err != nil {
			return nil, err
		}
	}

	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.Line1 != nil {
		add("line1", *in.Line1)
	}
	if in.Line2 != nil {
		add("line2", *in.Line2)
	}
	if in.City != nil {
		add("city", *in.City)
	}
	if in.State != nil {
		add("state", *in.State)
	}
	if in.Pincode != nil {
		add("pincode", *in.Pincode)
	}
	if in.Country != nil {
		add("country", *in.Country)
	}
	if in.IsPrimary != nil {
		add("is_primary", *in.IsPrimary)
	}
	if len(sets) == 0 {
		return nil, domain.ErrNoFields
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	q := fmt.Sprintf(`
UPDATE addresses
SET %s
WHERE id = $%d
RETURNING `+addressColumns, strings.Join(sets, ", "), len(args))
	out, err := r.scanAddress(tx.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the address and recomputes the owning customer's
// only-one-address flag in a single transaction.
func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var customerID int64
	err = tx.QueryRow(ctx, `SELECT customer_id FROM addresses WHERE id = $1`, id).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id); err != nil {
		return err
	}
	if err := recomputeOnlyOneAddress(ctx, tx, customerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) Search(ctx context.Context, f SearchFilter) ([]domain.Address, error) {
	conds := []string{}
	args := []interface{}{}
	add := func(column, value string) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.City != "" {
		add("city", f.City)
	}
	if f.State != "" {
		add("state", f.State)
	}
	if f.Pincode != "" {
		add("pincode", f.Pincode)
	}

	q := `
SELECT ` + addressColumns + `
FROM addresses
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY is_primary DESC, id ASC
`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("address repo: search error=%v", err)
		return nil, err
	}
	defer rows.Close()
	return collectAddresses(rows)
}

func (r *postgresRepo) CustomersWithMultipleAddresses(ctx context.Context) ([]domain.CustomerAddressCount, error) {
	const q = `
SELECT c.id, c.first_name, c.last_name, COUNT(a.id) AS address_count
FROM customers c
JOIN addresses a ON a.customer_id = c.id
GROUP BY c.id
HAVING COUNT(a.id) > 1
ORDER BY address_count DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("address repo: multiple-addresses error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.CustomerAddressCount
	for rows.Next() {
		var row domain.CustomerAddressCount
		if err := rows.Scan(&row.CustomerID, &row.FirstName, &row.LastName, &row.AddressCount); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeOnlyOneAddress is the idempotent repair operation: it sets the
// customer's flag to whether exactly one address row references it.
func (r *postgresRepo) RecomputeOnlyOneAddress(ctx context.Context, customerID int64) (bool, error) {
	const q = `
UPDATE customers
SET only_one_address = ((SELECT COUNT(*) FROM addresses WHERE customer_id = $1) = 1),
    updated_at = now()
WHERE id = $1
RETURNING only_one_address
`
	var onlyOne bool
	if err := r.pool.QueryRow(ctx, q, customerID).Scan(&onlyOne); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		r.logger.Printf("address repo: recompute customer_id=%d error=%v", customerID, err)
		return false, err
	}
	return onlyOne, nil
}

// clearOtherPrimaries drops the primary flag on every other address of the
// customer. excludeID is zero on insert paths, where no row exists yet.
func clearOtherPrimaries(ctx context.Context, tx pgx.Tx, customerID, excludeID int64) error {
	_, err := tx.Exec(ctx, `
UPDATE addresses
SET is_primary = FALSE, updated_at = now()
WHERE customer_id = $1 AND id <> $2 AND is_primary
`, customerID, excludeID)
	return err
}

func recomputeOnlyOneAddress(ctx context.Context, tx pgx.Tx, customerID int64) error {
	_, err := tx.Exec(ctx, `
UPDATE customers
SET only_one_address = ((SELECT COUNT(*) FROM addresses WHERE customer_id = $1) = 1),
    updated_at = now()
WHERE id = $1
`, customerID)
	return err
}

func (r *postgresRepo) scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.State,
		&a.Pincode,
		&a.Country,
		&a.IsPrimary,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// FK violation: the referenced customer is gone.
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("address repo: scan error=%v", err)
		return nil, err
	}
	return &a, nil
}

func collectAddresses(rows pgx.Rows) ([]domain.Address, error) {
	var result []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID,
			&a.CustomerID,
			&a.Line1,
			&a.Line2,
			&a.City,
			&a.State,
			&a.Pincode,
			&a.Country,
			&a.IsPrimary,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
