package domain

import "time"

type UserId = int64

type User struct {
	Id       UserId
	Name     string
	Email    string
	PassHash string

	// Pending password-reset state. Both fields are set while a reset
	// code is outstanding and zero otherwise; the storage layer enforces
	// this with a CHECK constraint.
	OtpCode    string
	OtpExpires time.Time

	CreatedAt time.Time
}

type Credentials struct {
	Email    string
	Password string
}
