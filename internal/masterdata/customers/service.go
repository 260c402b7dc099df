package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// Service handles customer business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, companyID, id string) (Customer, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID, search string, limit, offset int) ([]Customer, int, error) {
	return s.repo.List(ctx, companyID, search, limit, offset)
}

func (s *Service) Create(ctx context.Context, c Customer) (Customer, error) {
	if err := s.validate(c); err != nil {
		return Customer{}, err
	}
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, c Customer) (Customer, error) {
	if err := s.validate(c); err != nil {
		return Customer{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.repo.Delete(ctx, companyID, id)
}

func (s *Service) validate(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}
	return nil
}
