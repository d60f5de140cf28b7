package domain

import "time"

type (
	Email    = string
	Password = string
	UserId   = int64
)

type Credentials struct {
	Email    Email
	Password Password
}

// Identity is an authenticated principal as reported by the identity provider.
type Identity struct {
	Id    UserId
	Email Email
}

type User struct {
	Id       UserId
	Email    Email
	PassHash string
}

// ResetData holds a pending password reset.
type ResetData struct {
	Email    Email
	CodeHash string
	Expires  time.Time
}

// Session is what the auth middleware extracts from a valid token.
type Session struct {
	Identity
	TokenId   string
	ExpiresAt time.Time
}
