// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and opens repository sessions to
// read and write the data
package service

import (
	"github.com/deppfellow/contosopizza/internal/lib/job"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/server"
)

type Services struct {
	Auth      *AuthService
	Customers *CustomerService
	Products  *ProductService
	Orders    *OrderService
	Job       *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	var notifier OrderNotifier
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		Job:       s.Job,
		Auth:      authService,
		Customers: NewCustomerService(s, repos),
		Products:  NewProductService(s, repos),
		Orders:    NewOrderService(s, repos, notifier),
	}, nil
}
