package domain

import "time"

// User is the domain entity for a user account. HashedPassword is the bcrypt
// digest, never the plaintext.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
}
