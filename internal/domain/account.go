package domain

import (
	"time"
)

type AccountStatus string

const (
	AccountCreated  AccountStatus = "created"
	AccountActive   AccountStatus = "active"
	AccountBlocked  AccountStatus = "blocked"
	AccountInactive AccountStatus = "inactive"
)

// Account is the authoritative balance record for one currency position of a
// user. Total is never allowed below zero; every balance mutation goes through
// the ledger contract in internal/repository.
type Account struct {
	ID          string        `json:"id"`
	Alias       string        `json:"alias"`
	UserID      string        `json:"user_id"`
	Status      AccountStatus `json:"status"`
	Currency    string        `json:"currency"`
	Total       float64       `json:"total"`
	CreatedAt   time.Time     `json:"created_at"`
	LastUpdated time.Time     `json:"last_updated"`
}

// BalanceUpdate is one entry of an atomic batch balance commit.
type BalanceUpdate struct {
	AccountID string
	NewTotal  float64
}
