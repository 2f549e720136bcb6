package domain

import (
	"time"
)

// Currency exists so account and transaction currency codes reference a known
// set. The name is the identity; there is no other mutable state.
type Currency struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
