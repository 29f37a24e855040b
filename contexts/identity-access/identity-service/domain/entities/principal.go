package entities

import "time"

// Principal is an authenticated identity. The credential hash is opaque to
// every caller outside the identity service.
type Principal struct {
	PrincipalID    string    `json:"principal_id"`
	Email          string    `json:"email"`
	CredentialHash string    `json:"-"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Profile carries the legacy single-role field kept alongside the newer
// many-role system. Both sources feed the superadmin predicate.
type Profile struct {
	PrincipalID string    `json:"principal_id"`
	LegacyRole  string    `json:"legacy_role"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
