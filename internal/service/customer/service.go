package customer

import (
	"context"
	"regexp"
	"strings"

	"crm-backend/internal/domain"
	addrrepo "crm-backend/internal/repository/address"
	custrepo "crm-backend/internal/repository/customer"
)

var phoneRe = regexp.MustCompile(`^\d{10}$`)

// Service validates and orchestrates customer operations.
type Service struct {
	repo      custrepo.Repository
	addresses addrrepo.Repository
}

// New creates a Service.
func New(repo custrepo.Repository, addresses addrrepo.Repository) *Service {
	return &Service{repo: repo, addresses: addresses}
}

// CreateInput captures the fields expected by the create-customer endpoint.
type CreateInput struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Phone       string  `json:"phone"`
	Email       *string `json:"email"`
	AccountType *string `json:"account_type"`
}

// UpdateInput captures the optional fields of a partial customer update.
type UpdateInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	AccountType *string `json:"account_type"`
}

// ListInput mirrors the listing query parameters after the handler has
// parsed the numeric ones.
type ListInput struct {
	Page    int
	Limit   int
	SortBy  string
	Order   string
	City    string
	State   string
	Pincode string
	Q       string
}

// ListResult is one page of the customer listing plus the filter-wide total.
type ListResult struct {
	Page      int                       `json:"page"`
	Limit     int                       `json:"limit"`
	Total     int                       `json:"total"`
	Customers []domain.CustomerListItem `json:"customers"`
}

// Create validates the input, rejects duplicate phone/email, and inserts
// the customer.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Customer, error) {
	var fields []domain.FieldError
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, domain.FieldError{Field: "first_name", Message: "first name required"})
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields = append(fields, domain.FieldError{Field: "last_name", Message: "last name required"})
	}
	if !phoneRe.MatchString(in.Phone) {
		fields = append(fields, domain.FieldError{Field: "phone", Message: "phone must be 10 digits"})
	}
	if in.AccountType != nil && !domain.ValidAccountType(*in.AccountType) {
		fields = append(fields, domain.FieldError{Field: "account_type", Message: "account type must be regular or premium"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	dup, err := s.repo.HasDuplicate(ctx, &in.Phone, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, domain.ErrAlreadyExists
	}

	return s.repo.Create(ctx, domain.Customer{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Phone:       in.Phone,
		Email:       in.Email,
		AccountType: in.AccountType,
	})
}

// List returns one filtered, sorted page of customers plus the total count.
// Page and limit fall back to 1 and 10 when unset or non-positive.
func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	items, total, err := s.repo.List(ctx, custrepo.ListQuery{
		Page:    in.Page,
		Limit:   in.Limit,
		SortBy:  in.SortBy,
		Order:   in.Order,
		City:    in.City,
		State:   in.State,
		Pincode: in.Pincode,
		Q:       in.Q,
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{Page: in.Page, Limit: in.Limit, Total: total, Customers: items}, nil
}

// Get returns the customer and its addresses, primary address first.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Customer, []domain.Address, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	addrs, err := s.addresses.ListByCustomer(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return c, addrs, nil
}

// Update applies a partial update after validating the supplied fields and
// checking that a supplied phone/email is not used by another customer.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Customer, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var fields []domain.FieldError
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) == "" {
		fields = append(fields, domain.FieldError{Field: "first_name", Message: "first name must not be empty"})
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) == "" {
		fields = append(fields, domain.FieldError{Field: "last_name", Message: "last name must not be empty"})
	}
	if in.Phone != nil && !phoneRe.MatchString(*in.Phone) {
		fields = append(fields, domain.FieldError{Field: "phone", Message: "phone must be 10 digits"})
	}
	if in.AccountType != nil && *in.AccountType != "" && !domain.ValidAccountType(*in.AccountType) {
		fields = append(fields, domain.FieldError{Field: "account_type", Message: "account type must be regular or premium"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	if in.FirstName == nil && in.LastName == nil && in.Phone == nil && in.Email == nil && in.AccountType == nil {
		return nil, domain.ErrNoFields
	}

	if in.Phone != nil || in.Email != nil {
		dup, err := s.repo.HasDuplicate(ctx, in.Phone, in.Email, id)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, domain.ErrAlreadyExists
		}
	}

	return s.repo.Update(ctx, id, custrepo.UpdateInput{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Phone:       in.Phone,
		Email:       in.Email,
		AccountType: in.AccountType,
	})
}

// Delete removes the customer and all of its addresses.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// RecomputeOnlyOneAddress is the explicit repair operation for the derived
// flag. It is idempotent.
func (s *Service) RecomputeOnlyOneAddress(ctx context.Context, id int64) (bool, error) {
	return s.addresses.RecomputeOnlyOneAddress(ctx, id)
}
