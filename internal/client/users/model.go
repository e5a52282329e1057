package users

import "time"

// User is an account record, stored as plain JSON in the durable substrate:
// it must be readable before any password has been entered, so it is never
// sealed. PasswordHash is a one-way digest; CryptoSalt is the base64 of the
// per-user 16-byte salt, generated once and never rotated implicitly.
// A legacy record may have an empty CryptoSalt until the next login
// backfills it.
type User struct {
	ID              string     `json:"id"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	PhoneVerified   bool       `json:"phoneVerified"`
	PhoneVerifiedAt *time.Time `json:"phoneVerifiedAt"`
	CryptoSalt      string     `json:"cryptoSalt"`
	PasswordHash    string     `json:"passwordHash"`
	CreatedAt       time.Time  `json:"createdAt"`
}
