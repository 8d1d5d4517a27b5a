package address

import (
	"context"

	"crm-backend/internal/domain"
)

// UpdateInput carries the optional columns of a partial address update.
// Nil fields are left untouched. A true IsPrimary clears the flag on the
// customer's other addresses first.
type UpdateInput struct {
	Line1     *string
	Line2     *string
	City      *string
	State     *string
	Pincode   *string
	Country   *string
	IsPrimary *bool
}

// SearchFilter holds the equality filters of the address search. The
// service guarantees at least one field is set.
type SearchFilter struct {
	City    string
	State   string
	Pincode string
}

// Repository persists addresses and maintains the derived customer flag.
type Repository interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*domain.Address, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, f SearchFilter) ([]domain.Address, error)
	CustomersWithMultipleAddresses(ctx context.Context) ([]domain.CustomerAddressCount, error)
	RecomputeOnlyOneAddress(ctx context.Context, customerID int64) (bool, error)
}
