package stats

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	calls   atomic.Int64
	mu      sync.Mutex
	monthly []MonthlyRevenue
	ranked  []CustomerRevenue
	view    Overview
}

func (r *stubRepo) MonthlyRevenue(ctx context.Context, companyID string, year int) ([]MonthlyRevenue, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.monthly, nil
}

func (r *stubRepo) TopCustomers(ctx context.Context, companyID string, limit int) ([]CustomerRevenue, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ranked, nil
}

func (r *stubRepo) Overview(ctx context.Context, companyID string) (Overview, error) {
	r.calls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view, nil
}

func newCachedService(t *testing.T) (*Service, *stubRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubRepo{
		monthly: []MonthlyRevenue{{Month: "2026-03", Net: 1400, VAT: 266, Gross: 1666}},
		ranked:  []CustomerRevenue{{CustomerID: "cust-1", CustomerName: "Kunde AG", Gross: 1666, DocumentCount: 1}},
		view:    Overview{OpenAmount: 1000, OpenCount: 2},
	}
	return NewService(slog.New(slog.DiscardHandler), repo, client, time.Minute), repo
}

func TestMonthlyRevenueCachesResult(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	first, err := svc.MonthlyRevenue(ctx, "company-1", 2026)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.InDelta(t, 1666.0, first[0].Gross, 1e-9)

	repo.mu.Lock()
	repo.monthly = nil
	repo.mu.Unlock()

	second, err := svc.MonthlyRevenue(ctx, "company-1", 2026)
	require.NoError(t, err)
	require.Equal(t, first, second, "second read must come from the cache")
	require.EqualValues(t, 1, repo.calls.Load())
}

func TestCacheKeysAreTenantScoped(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Overview(ctx, "company-1")
	require.NoError(t, err)
	_, err = svc.Overview(ctx, "company-2")
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.calls.Load())
}

func TestInvalidateDropsCompanyKeys(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Overview(ctx, "company-1")
	require.NoError(t, err)
	_, err = svc.TopCustomers(ctx, "company-1", 5)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.calls.Load())

	svc.Invalidate(ctx, "company-1")

	_, err = svc.Overview(ctx, "company-1")
	require.NoError(t, err)
	require.EqualValues(t, 3, repo.calls.Load())
}

func TestServiceWithoutCache(t *testing.T) {
	repo := &stubRepo{view: Overview{DraftCount: 4}}
	svc := NewService(slog.New(slog.DiscardHandler), repo, nil, time.Minute)

	for range 3 {
		view, err := svc.Overview(context.Background(), "company-1")
		require.NoError(t, err)
		require.Equal(t, 4, view.DraftCount)
	}
	require.EqualValues(t, 3, repo.calls.Load())
}
