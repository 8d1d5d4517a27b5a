package customer

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

const customerColumns = "id, first_name, last_name, phone, email, account_type, only_one_address, created_at, updated_at"

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

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (first_name, last_name, phone, email, account_type)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q, c.FirstName, c.LastName, c.Phone, c.Email, c.AccountType))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context, q ListQuery) ([]domain.CustomerListItem, int, error) {
	pageSQL, countSQL, pageArgs, countArgs := buildListQuery(q)

	rows, err := r.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		r.logger.Printf("customer repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.CustomerListItem, 0, q.Limit)
	for rows.Next() {
		var item domain.CustomerListItem
		if err := rows.Scan(
			&item.ID,
			&item.FirstName,
			&item.LastName,
			&item.Phone,
			&item.Email,
			&item.AccountType,
			&item.OnlyOneAddress,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.AddressesSummary,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("customer repo: list rows error=%v", err)
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		r.logger.Printf("customer repo: count error=%v", err)
		return nil, 0, err
	}
	return items, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Customer, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.FirstName != nil {
		add("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		add("last_name", *in.LastName)
	}
	if in.Phone != nil {
		add("phone", *in.Phone)
	}
	if in.Email != nil {
		add("email", *in.Email)
	}
	if in.AccountType != nil {
		add("account_type", *in.AccountType)
	}
	if len(sets) == 0 {
		return nil, domain.ErrNoFields
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	q := fmt.Sprintf(`
UPDATE customers
SET %s
WHERE id = $%d
RETURNING `+customerColumns, strings.Join(sets, ", "), len(args))
	return r.scanCustomer(r.pool.QueryRow(ctx, q, args...))
}

// Delete removes the customer's addresses and the customer row in one
// transaction, so a failure cannot leave orphaned addresses behind.
func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE customer_id = $1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}

// HasDuplicate reports whether another customer already uses the supplied
// phone or email. Absent fields are excluded from the comparison entirely,
// so they can never collide with rows holding empty values.
func (r *postgresRepo) HasDuplicate(ctx context.Context, phone, email *string, excludeID int64) (bool, error) {
	conds := []string{}
	args := []interface{}{}
	if phone != nil {
		args = append(args, *phone)
		conds = append(conds, fmt.Sprintf("phone = $%d", len(args)))
	}
	if email != nil {
		args = append(args, *email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(conds) == 0 {
		return false, nil
	}

	q := "SELECT EXISTS (SELECT 1 FROM customers WHERE (" + strings.Join(conds, " OR ") + ")"
	if excludeID != 0 {
		args = append(args, excludeID)
		q += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	q += ")"

	var exists bool
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&exists); err != nil {
		r.logger.Printf("customer repo: duplicate check error=%v", err)
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.Email,
		&c.AccountType,
		&c.OnlyOneAddress,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: scan error=%v", err)
		return nil, err
	}
	return &c, nil
}
