package companies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// Service handles company settings.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (Company, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, c Company) (Company, error) {
	if strings.TrimSpace(c.Name) == "" {
		return Company{}, fmt.Errorf("%w: company name is required", httpx.ErrValidation)
	}
	if !validVATRate(c.DefaultVATRate) {
		return Company{}, fmt.Errorf("%w: default vat rate %.2f is not an allowed rate", httpx.ErrValidation, c.DefaultVATRate)
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return Company{}, err
	}
	return c, nil
}

func validVATRate(rate float64) bool {
	for _, allowed := range AllowedVATRates {
		if rate == allowed {
			return true
		}
	}
	return false
}
