package service

import (
	"context"

	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/server"
)

// CustomerService manages customer records.
type CustomerService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewCustomerService(s *server.Server, repos *repository.Repositories) *CustomerService {
	return &CustomerService{
		server: s,
		repos:  repos,
	}
}

// CreateCustomer inserts c and returns it with its generated key.
func (s *CustomerService) CreateCustomer(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	session := s.repos.NewSession()
	if err := session.Customers.Add(c); err != nil {
		return nil, err
	}

	if _, err := session.SaveChanges(ctx); err != nil {
		return nil, err
	}

	s.server.Logger.Info().Int64("customer_id", c.ID).Msg("customer created")
	return c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return s.repos.NewSession().Customers.Find(ctx, id)
}

// ListCustomers returns one page of customers ordered by last name.
func (s *CustomerService) ListCustomers(ctx context.Context, page, limit int) (*model.PaginatedResponse[model.Customer], error) {
	session := s.repos.NewSession()

	total, err := session.Customers.Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	customers, err := session.Customers.List(ctx, repository.Query{
		OrderBy:    "last_name",
		Limit:      limit,
		Offset:     model.Offset(page, limit),
		NoTracking: true,
	})
	if err != nil {
		return nil, err
	}

	return model.NewPaginatedResponse(customers, page, limit, total), nil
}

// UpdateCustomer loads the customer, applies the changes and writes only the
// columns that changed.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, apply func(*model.Customer)) (*model.Customer, error) {
	session := s.repos.NewSession()

	c, err := session.Customers.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(c)

	if _, err := session.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer removes the customer together with its orders.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	session := s.repos.NewSession()

	c, err := session.Customers.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := session.Customers.Remove(c); err != nil {
		return err
	}

	if _, err := session.SaveChanges(ctx); err != nil {
		return err
	}

	s.server.Logger.Info().Int64("customer_id", id).Msg("customer deleted")
	return nil
}
