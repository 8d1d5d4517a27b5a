package httpserver

import (
	"context"
	"log"

	"crm-backend/internal/domain"
	addresssvc "crm-backend/internal/service/address"
	customersvc "crm-backend/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService is the customer surface the handlers depend on.
type CustomerService interface {
	Create(ctx context.Context, in customersvc.CreateInput) (*domain.Customer, error)
	List(ctx context.Context, in customersvc.ListInput) (*customersvc.ListResult, error)
	Get(ctx context.Context, id int64) (*domain.Customer, []domain.Address, error)
	Update(ctx context.Context, id int64, in customersvc.UpdateInput) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	RecomputeOnlyOneAddress(ctx context.Context, id int64) (bool, error)
}

// AddressService is the address surface the handlers depend on.
type AddressService interface {
	Create(ctx context.Context, in addresssvc.CreateInput) (*domain.Address, error)
	Update(ctx context.Context, id int64, in addresssvc.UpdateInput) (*domain.Address, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, in addresssvc.SearchInput) ([]domain.Address, error)
	CustomersWithMultipleAddresses(ctx context.Context) ([]domain.CustomerAddressCount, error)
}

// Deps bundles the services the router needs.
type Deps struct {
	CustomerSvc CustomerService
	AddressSvc  AddressService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(corsOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = corsOrigins
		router.Use(cors.New(cfg))
	}

	router.GET("/health", healthHandler)
	router.GET("/readyz", readyHandler(db))

	customers := &customerAPI{svc: deps.CustomerSvc, logger: logger}
	addresses := &addressAPI{svc: deps.AddressSvc, logger: logger}

	api := router.Group("/api")

	c := api.Group("/customers")
	c.POST("", customers.create)
	c.GET("", customers.list)
	c.GET("/:id", customers.get)
	c.PUT("/:id", customers.update)
	c.DELETE("/:id", customers.remove)
	c.POST("/:id/update-only-one-flag", customers.recomputeFlag)

	a := api.Group("/addresses")
	a.POST("", addresses.create)
	a.PUT("/:id", addresses.update)
	a.DELETE("/:id", addresses.remove)
	a.GET("/search", addresses.search)
	a.GET("/customers-with-multiple-addresses", addresses.multipleAddresses)

	return router
}
