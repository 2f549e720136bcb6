package processor

import (
	"context"

	"bank_ledger/internal/domain"
	"bank_ledger/internal/repository"
)

// Cursor is the bounded claim iterator of one batch pass. It selects a single
// page of CREATED transactions (most recently updated first) and yields each
// one only after winning the atomic CREATED to PENDING claim, so rows taken
// by a concurrent pass are skipped rather than settled twice.
type Cursor struct {
	repo     repository.TransactionRepository
	pageSize int
	fetched  bool
	page     []*domain.Transaction
	pos      int
	skipped  int
}

func NewCursor(repo repository.TransactionRepository, pageSize int) *Cursor {
	return &Cursor{repo: repo, pageSize: pageSize}
}

// Next returns the next claimed transaction, or nil when the page is
// exhausted. The iteration is single-pass: claimed rows are never revisited.
func (c *Cursor) Next(ctx context.Context) (*domain.Transaction, error) {
	if !c.fetched {
		page, err := c.repo.GetByStatus(ctx, domain.StatusCreated, c.pageSize, 0)
		if err != nil {
			return nil, err
		}
		c.page = page
		c.fetched = true
	}

	for c.pos < len(c.page) {
		tx := c.page[c.pos]
		c.pos++

		claimed, err := c.repo.Claim(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			c.skipped++
			continue
		}

		tx.OperationStatus = domain.StatusPending
		return tx, nil
	}

	return nil, nil
}

// Skipped reports how many selected rows were lost to a concurrent claimer.
func (c *Cursor) Skipped() int {
	return c.skipped
}
