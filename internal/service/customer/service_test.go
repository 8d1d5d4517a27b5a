package customer

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"crm-backend/internal/domain"
	addrrepo "crm-backend/internal/repository/address"
	custrepo "crm-backend/internal/repository/customer"
)

// memoryRepo is a lightweight in-memory customer repository for tests. It
// mirrors the store's uniqueness behavior on phone and email.
type memoryRepo struct {
	nextID    int64
	customers map[int64]domain.Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: make(map[int64]domain.Customer)}
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	for _, ex := range r.customers {
		if ex.Phone == c.Phone {
			return nil, domain.ErrAlreadyExists
		}
		if c.Email != nil && ex.Email != nil && *ex.Email == *c.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.customers[c.ID] = c
	clone := c
	return &clone, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := c
	return &clone, nil
}

func (r *memoryRepo) List(_ context.Context, q custrepo.ListQuery) ([]domain.CustomerListItem, int, error) {
	ids := make([]int64, 0, len(r.customers))
	for id := range r.customers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := len(ids)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	items := make([]domain.CustomerListItem, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, domain.CustomerListItem{Customer: r.customers[id]})
	}
	return items, total, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, in custrepo.UpdateInput) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.AccountType != nil {
		c.AccountType = in.AccountType
	}
	c.UpdatedAt = time.Now().UTC()
	r.customers[id] = c
	clone := c
	return &clone, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *memoryRepo) HasDuplicate(_ context.Context, phone, email *string, excludeID int64) (bool, error) {
	for id, ex := range r.customers {
		if id == excludeID {
			continue
		}
		if phone != nil && ex.Phone == *phone {
			return true, nil
		}
		if email != nil && ex.Email != nil && *ex.Email == *email {
			return true, nil
		}
	}
	return false, nil
}

// stubAddressRepo serves the customer service's read paths.
type stubAddressRepo struct {
	byCustomer map[int64][]domain.Address
}

func (r *stubAddressRepo) Create(_ context.Context, a domain.Address) (*domain.Address, error) {
	return &a, nil
}

func (r *stubAddressRepo) GetByID(_ context.Context, _ int64) (*domain.Address, error) {
	return nil, domain.ErrNotFound
}

func (r *stubAddressRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.Address, error) {
	return r.byCustomer[customerID], nil
}

func (r *stubAddressRepo) Update(_ context.Context, _ int64, _ addrrepo.UpdateInput) (*domain.Address, error) {
	return nil, domain.ErrNotFound
}

func (r *stubAddressRepo) Delete(_ context.Context, _ int64) error {
	return domain.ErrNotFound
}

func (r *stubAddressRepo) Search(_ context.Context, _ addrrepo.SearchFilter) ([]domain.Address, error) {
	return nil, nil
}

func (r *stubAddressRepo) CustomersWithMultipleAddresses(_ context.Context) ([]domain.CustomerAddressCount, error) {
	return nil, nil
}

func (r *stubAddressRepo) RecomputeOnlyOneAddress(_ context.Context, customerID int64) (bool, error) {
	return len(r.byCustomer[customerID]) == 1, nil
}

func newService(repo *memoryRepo) *Service {
	return New(repo, &stubAddressRepo{byCustomer: make(map[int64][]domain.Address)})
}

func strPtr(s string) *string { return &s }

func TestCreate_RejectsInvalidFields(t *testing.T) {
	svc := newService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		FirstName: "",
		LastName:  "Kumar",
		Phone:     "12345",
	})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", verr.Fields)
	}
}

func TestCreate_RejectsUnknownAccountType(t *testing.T) {
	svc := newService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		FirstName:   "Sita",
		LastName:    "Kumar",
		Phone:       "9876543210",
		AccountType: strPtr("gold"),
	})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreate_DuplicatePhoneInsertsNothing(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FirstName: "Sita", LastName: "Kumar", Phone: "9876543210"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateInput{FirstName: "Ravi", LastName: "Shah", Phone: "9876543210"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if len(repo.customers) != 1 {
		t.Fatalf("duplicate create must not insert, have %d rows", len(repo.customers))
	}
}

func TestUpdate_NoFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{FirstName: "Sita", LastName: "Kumar", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, created.ID, UpdateInput{}); !errors.Is(err, domain.ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}
}

func TestUpdate_MissingCustomer(t *testing.T) {
	svc := newService(newMemoryRepo())

	_, err := svc.Update(context.Background(), 42, UpdateInput{FirstName: strPtr("X")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_DuplicateEmailOfOtherCustomer(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FirstName: "Sita", LastName: "Kumar", Phone: "9876543210", Email: strPtr("sita@example.com")}); err != nil {
		t.Fatalf("create sita: %v", err)
	}
	ravi, err := svc.Create(ctx, CreateInput{FirstName: "Ravi", LastName: "Shah", Phone: "9123456780", Email: strPtr("ravi@example.com")})
	if err != nil {
		t.Fatalf("create ravi: %v", err)
	}

	_, err = svc.Update(ctx, ravi.ID, UpdateInput{Email: strPtr("sita@example.com")})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdate_KeepsOwnPhone(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{FirstName: "Sita", LastName: "Kumar", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Re-submitting the customer's own phone must not count as a duplicate.
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Phone: strPtr("9876543210"), FirstName: strPtr("Seetha")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Seetha" || updated.LastName != "Kumar" {
		t.Fatalf("partial update wrong result: %+v", updated)
	}
}

func TestList_SecondPageDistinctAndTotal(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FirstName: "Sita", LastName: "Kumar", Phone: "9876543210"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{FirstName: "Ravi", LastName: "Shah", Phone: "9123456780"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	page1, err := svc.List(ctx, ListInput{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	page2, err := svc.List(ctx, ListInput{Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}

	if page1.Total != 2 || page2.Total != 2 {
		t.Fatalf("expected total 2, got %d and %d", page1.Total, page2.Total)
	}
	if len(page2.Customers) != 1 {
		t.Fatalf("expected 1 customer on page 2, got %d", len(page2.Customers))
	}
	if page1.Customers[0].ID == page2.Customers[0].ID {
		t.Fatalf("pages must not overlap, both returned id %d", page1.Customers[0].ID)
	}
}

func TestList_DefaultsPageAndLimit(t *testing.T) {
	svc := newService(newMemoryRepo())

	result, err := svc.List(context.Background(), ListInput{Page: -3, Limit: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Page != 1 || result.Limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got %d/%d", result.Page, result.Limit)
	}
}

func TestGet_ReturnsAddresses(t *testing.T) {
	repo := newMemoryRepo()
	addrs := &stubAddressRepo{byCustomer: make(map[int64][]domain.Address)}
	svc := New(repo, addrs)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{FirstName: "Ravi", LastName: "Shah", Phone: "9123456780"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	addrs.byCustomer[created.ID] = []domain.Address{
		{ID: 2, CustomerID: created.ID, City: "Hyderabad", IsPrimary: true},
		{ID: 1, CustomerID: created.ID, City: "Vijayawada"},
	}

	customer, got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if customer.ID != created.ID || len(got) != 2 {
		t.Fatalf("unexpected result %+v %+v", customer, got)
	}

	if _, _, err := svc.Get(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}
