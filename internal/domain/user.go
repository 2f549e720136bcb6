package domain

import (
	"time"
)

type UserStatus string

const (
	UserCreated  UserStatus = "created"
	UserActive   UserStatus = "active"
	UserBlocked  UserStatus = "blocked"
	UserInactive UserStatus = "inactive"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Status       UserStatus `json:"status"`
	Profile      string     `json:"profile"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUpdated  time.Time  `json:"last_updated"`
}
