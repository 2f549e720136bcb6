package domain

import (
	"time"

	"github.com/google/uuid"
)

type OperationType string
type OperationStatus string

const (
	OperationDeposit    OperationType = "deposit"
	OperationWithdrawal OperationType = "withdrawal"
	OperationTransfer   OperationType = "transfer"
	OperationFee        OperationType = "fee"

	StatusCreated   OperationStatus = "created"
	StatusPending   OperationStatus = "pending"
	StatusCancelled OperationStatus = "cancelled"
	StatusFailed    OperationStatus = "failed"
	StatusDone      OperationStatus = "done"
)

// Transaction is a single money-movement request. Total is the origin
// account's balance snapshot at settlement time and stays nil until the row
// reaches a terminal status.
type Transaction struct {
	ID                   string          `json:"id"`
	LinkedTransactionID  string          `json:"linked_transaction_id,omitempty"`
	Amount               float64         `json:"amount"`
	Total                *float64        `json:"total,omitempty"`
	Operation            OperationType   `json:"operation"`
	OperationStatus      OperationStatus `json:"operation_status"`
	OriginAccountID      string          `json:"origin_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Currency             string          `json:"currency"`
	UserID               string          `json:"user_id"`
	Reference            string          `json:"reference,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	LastUpdated          time.Time       `json:"last_updated"`
}

// Transition edges of the operation lifecycle. PENDING has no reverse edge: a
// row claimed by a run that crashes stays pending until operator action.
var transitions = map[OperationStatus][]OperationStatus{
	StatusCreated: {StatusPending, StatusCancelled},
	StatusPending: {StatusDone, StatusFailed},
}

func (s OperationStatus) CanTransition(to OperationStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further mutation.
func (s OperationStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCancelled
}

func NewTransaction(op OperationType, amount float64, currency string) *Transaction {
	return &Transaction{
		ID:              uuid.NewString(),
		Operation:       op,
		OperationStatus: StatusCreated,
		Amount:          amount,
		Currency:        currency,
		CreatedAt:       time.Now(),
		LastUpdated:     time.Now(),
	}
}

func (tx *Transaction) WithAccounts(originID, destinationID string) *Transaction {
	tx.OriginAccountID = originID
	tx.DestinationAccountID = destinationID
	return tx
}

func (tx *Transaction) WithUser(userID string) *Transaction {
	tx.UserID = userID
	return tx
}

func (tx *Transaction) WithReference(reference string) *Transaction {
	tx.Reference = reference
	return tx
}
