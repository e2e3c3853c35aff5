package domain

import (
	"context"
	"time"
)

// User represents a registered account
type User struct {
	ID           string // UUID
	Email        string // Unique email address
	Username     string // Unique display name
	PasswordHash string // Bcrypt hashed password (not returned in API)
	Role         string // user, moderator or admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
}
