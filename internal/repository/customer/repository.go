package customer

import (
	"context"

	"crm-backend/internal/domain"
)

// UpdateInput carries the optional columns of a partial customer update.
// Nil fields are left untouched.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Email       *string
	AccountType *string
}

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context, q ListQuery) ([]domain.CustomerListItem, int, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	HasDuplicate(ctx context.Context, phone, email *string, excludeID int64) (bool, error)
}
