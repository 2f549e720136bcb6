package memory

import (
	"sync"

	"bank_ledger/internal/domain"
)

// Store holds every entity map behind one lock so multi-entity commits
// (balance batch plus linked transaction rows) are atomic.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	aliasIndex   map[string]string
	users        map[string]*domain.User
	emailIndex   map[string]string
	transactions map[string]*domain.Transaction
	currencies   map[string]*domain.Currency
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]*domain.Account),
		aliasIndex:   make(map[string]string),
		users:        make(map[string]*domain.User),
		emailIndex:   make(map[string]string),
		transactions: make(map[string]*domain.Transaction),
		currencies:   make(map[string]*domain.Currency),
	}
}
