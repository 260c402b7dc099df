package numbering

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryCounterRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newMemoryCounterRepo() *memoryCounterRepo {
	return &memoryCounterRepo{seqs: make(map[string]int64)}
}

func (r *memoryCounterRepo) NextSequence(ctx context.Context, companyID, counterType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := companyID + ":" + counterType
	r.seqs[key]++
	return r.seqs[key], nil
}

func TestNextNumberFormat(t *testing.T) {
	auth := NewAuthority(newMemoryCounterRepo())

	num, err := auth.NextNumber(context.Background(), "c1", "INVOICE", "INV")
	require.NoError(t, err)
	require.Equal(t, "INV-000001", num)

	num, err = auth.NextNumber(context.Background(), "c1", "INVOICE", "INV")
	require.NoError(t, err)
	require.Equal(t, "INV-000002", num)
}

func TestNextNumberIndependentPerType(t *testing.T) {
	auth := NewAuthority(newMemoryCounterRepo())

	inv, err := auth.NextNumber(context.Background(), "c1", "INVOICE", "INV")
	require.NoError(t, err)
	quo, err := auth.NextNumber(context.Background(), "c1", "QUOTE", "QUO")
	require.NoError(t, err)

	require.Equal(t, "INV-000001", inv)
	require.Equal(t, "QUO-000001", quo)
}

func TestNextNumberConcurrentUniqueness(t *testing.T) {
	auth := NewAuthority(newMemoryCounterRepo())

	const n = 64
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := auth.NextNumber(context.Background(), "c1", "INVOICE", "INV")
			require.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for num := range results {
		require.False(t, seen[num], "duplicate number %s", num)
		seen[num] = true
	}
	// contiguous: every sequence 1..n must be present
	for i := 1; i <= n; i++ {
		require.True(t, seen[fmt.Sprintf("INV-%06d", i)])
	}
}
