package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// Service handles product business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, companyID, id string) (Product, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID, search string, limit, offset int) ([]Product, int, error) {
	return s.repo.List(ctx, companyID, search, limit, offset)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(p); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(p); err != nil {
		return Product{}, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if p.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", httpx.ErrValidation)
	}
	if p.VATRate < 0 || p.VATRate > 1 {
		return fmt.Errorf("%w: vat rate must be between 0 and 1", httpx.ErrValidation)
	}
	return nil
}
