package service

import (
	"context"

	"github.com/deppfellow/contosopizza/internal/lib/cache"
	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/server"
)

// ProductService manages the menu. Reads go through the product cache when
// one is configured; every write invalidates the cached catalog.
type ProductService struct {
	server *server.Server
	repos  *repository.Repositories
	cache  *cache.ProductCache
}

func NewProductService(s *server.Server, repos *repository.Repositories) *ProductService {
	return &ProductService{
		server: s,
		repos:  repos,
		cache:  s.Cache,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	session := s.repos.NewSession()
	if err := session.Products.Add(p); err != nil {
		return nil, err
	}

	if _, err := session.SaveChanges(ctx); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	gen, fill := s.generation(ctx)

	p, err := s.repos.NewSession().Products.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if fill {
		s.cache.Set(ctx, gen, p)
	}
	return p, nil
}

// ListProducts returns one page of the catalog ordered by name.
func (s *ProductService) ListProducts(ctx context.Context, page, limit int) (*model.PaginatedResponse[model.Product], error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetPage(ctx, page, limit); ok {
			return cached, nil
		}
	}

	gen, fill := s.generation(ctx)
	session := s.repos.NewSession()

	total, err := session.Products.Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	products, err := session.Products.List(ctx, repository.Query{
		OrderBy:    "name",
		Limit:      limit,
		Offset:     model.Offset(page, limit),
		NoTracking: true,
	})
	if err != nil {
		return nil, err
	}

	resp := model.NewPaginatedResponse(products, page, limit, total)
	if fill {
		s.cache.SetPage(ctx, gen, resp)
	}
	return resp, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int64, apply func(*model.Product)) (*model.Product, error) {
	session := s.repos.NewSession()

	p, err := session.Products.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(p)

	if _, err := session.SaveChanges(ctx); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return p, nil
}

// DeleteProduct removes the product. Order lines referencing it are removed
// by the database.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	session := s.repos.NewSession()

	p, err := session.Products.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := session.Products.Remove(p); err != nil {
		return err
	}

	if _, err := session.SaveChanges(ctx); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// CacheStats reports the product cache counters, nil without a cache.
func (s *ProductService) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	stats := s.cache.Stats()
	return &stats
}

// generation reports the catalog generation to fill the cache under, and
// false when nothing should be cached.
func (s *ProductService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	return gen, err == nil
}

func (s *ProductService) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.server.Logger.Warn().Err(err).Ints64("product_ids", ids).Msg("catalog cache may be stale")
	}
}
