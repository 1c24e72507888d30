package auth

import "time"

// ApiKey is the durable record created by the admin API's key-management
// endpoints. KeyHash is the lowercase hex SHA-256 fingerprint produced by
// Fingerprint; the cleartext key is accepted only at creation time and is
// never persisted.
type ApiKey struct {
	ID        int64
	Name      string
	KeyHash   string
	CreatedAt time.Time
}
