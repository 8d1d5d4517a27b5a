package address

import (
	"context"
	"strings"

	"crm-backend/internal/domain"
	addrrepo "crm-backend/internal/repository/address"
	custrepo "crm-backend/internal/repository/customer"
)

const minPincodeLen = 3

// Service validates and orchestrates address operations.
type Service struct {
	repo      addrrepo.Repository
	customers custrepo.Repository
}

// New creates a Service.
func New(repo addrrepo.Repository, customers custrepo.Repository) *Service {
	return &Service{repo: repo, customers: customers}
}

// CreateInput captures the fields expected by the add-address endpoint.
type CreateInput struct {
	CustomerID int64   `json:"customer_id"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Pincode    string  `json:"pincode"`
	Country    string  `json:"country"`
	IsPrimary  bool    `json:"is_primary"`
}

// UpdateInput captures the optional fields of a partial address update.
type UpdateInput struct {
	Line1     *string `json:"line1"`
	Line2     *string `json:"line2"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Pincode   *string `json:"pincode"`
	Country   *string `json:"country"`
	IsPrimary *bool   `json:"is_primary"`
}

// SearchInput holds the address search filters; at least one is required.
type SearchInput struct {
	City    string
	State   string
	Pincode string
}

// Create validates the input, requires the owning customer to exist, and
// inserts the address. The repository keeps the primary-address and
// only-one-address invariants inside the insert transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Address, error) {
	var fields []domain.FieldError
	if in.CustomerID <= 0 {
		fields = append(fields, domain.FieldError{Field: "customer_id", Message: "customer_id required"})
	}
	if strings.TrimSpace(in.Line1) == "" {
		fields = append(fields, domain.FieldError{Field: "line1", Message: "line1 required"})
	}
	if strings.TrimSpace(in.City) == "" {
		fields = append(fields, domain.FieldError{Field: "city", Message: "city required"})
	}
	if strings.TrimSpace(in.State) == "" {
		fields = append(fields, domain.FieldError{Field: "state", Message: "state required"})
	}
	if len(in.Pincode) < minPincodeLen {
		fields = append(fields, domain.FieldError{Field: "pincode", Message: "pincode must be at least 3 characters"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	country := in.Country
	if country == "" {
		country = domain.DefaultCountry
	}

	return s.repo.Create(ctx, domain.Address{
		CustomerID: in.CustomerID,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		Pincode:    in.Pincode,
		Country:    country,
		IsPrimary:  in.IsPrimary,
	})
}

// Update applies a partial update after validating the supplied fields.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Address, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var fields []domain.FieldError
	if in.Line1 != nil && strings.TrimSpace(*in.Line1) == "" {
		fields = append(fields, domain.FieldError{Field: "line1", Message: "line1 must not be empty"})
	}
	if in.City != nil && strings.TrimSpace(*in.City) == "" {
		fields = append(fields, domain.FieldError{Field: "city", Message: "city must not be empty"})
	}
	if in.State != nil && strings.TrimSpace(*in.State) == "" {
		fields = append(fields, domain.FieldError{Field: "state", Message: "state must not be empty"})
	}
	if in.Pincode != nil && len(*in.Pincode) < minPincodeLen {
		fields = append(fields, domain.FieldError{Field: "pincode", Message: "pincode must be at least 3 characters"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	if in.Line1 == nil && in.Line2 == nil && in.City == nil && in.State == nil &&
		in.Pincode == nil && in.Country == nil && in.IsPrimary == nil {
		return nil, domain.ErrNoFields
	}

	return s.repo.Update(ctx, id, addrrepo.UpdateInput{
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		Pincode:   in.Pincode,
		Country:   in.Country,
		IsPrimary: in.IsPrimary,
	})
}

// Delete removes the address; the repository recomputes the owning
// customer's flag in the same transaction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Search returns addresses matching the equality filters, primary first.
// A request with no filter at all is rejected.
func (s *Service) Search(ctx context.Context, in SearchInput) ([]domain.Address, error) {
	if in.City == "" && in.State == "" && in.Pincode == "" {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "query", Message: "provide at least one of city, state, pincode"},
		}}
	}
	return s.repo.Search(ctx, addrrepo.SearchFilter{City: in.City, State: in.State, Pincode: in.Pincode})
}

// CustomersWithMultipleAddresses returns the aggregate of customers
// holding more than one address, most addresses first.
func (s *Service) CustomersWithMultipleAddresses(ctx context.Context) ([]domain.CustomerAddressCount, error) {
	return s.repo.CustomersWithMultipleAddresses(ctx)
}
