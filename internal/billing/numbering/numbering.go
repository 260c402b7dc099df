// Package numbering issues sequential, gapless document numbers per document
// type. Counters are incremented through a single atomic upsert so concurrent
// creators can never observe the same sequence value.
package numbering

import (
	"context"
	"fmt"
)

// CounterRepository abstracts the atomic counter store.
type CounterRepository interface {
	// NextSequence atomically increments and returns the counter for the
	// given company and counter type.
	NextSequence(ctx context.Context, companyID, counterType string) (int64, error)
}

// Authority formats sequential document numbers.
type Authority struct {
	repo CounterRepository
}

// NewAuthority builds an Authority instance.
func NewAuthority(repo CounterRepository) *Authority {
	return &Authority{repo: repo}
}

// NextNumber returns the next document number for the given type, formatted
// as {prefix}-{six digit zero padded sequence}.
func (a *Authority) NextNumber(ctx context.Context, companyID, docType, prefix string) (string, error) {
	seq, err := a.repo.NextSequence(ctx, companyID, "document_"+docType)
	if err != nil {
		return "", fmt.Errorf("numbering: next sequence for %s: %w", docType, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, seq), nil
}
