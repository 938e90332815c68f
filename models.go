package signup

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record. Registration creates it unverified; only a
// successful token redemption flips IsVerified.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsVerified    bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Redemption marks an activation token as consumed. Rows are keyed by the
// token digest so recording doubles as the replay lock, and they carry their
// own retention window so the table can be purged independently of users.
type Redemption struct {
	bun.BaseModel `bun:"table:redemptions,alias:rdm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TokenDigest   string     `bun:"token_digest,notnull,unique" json:"token_digest,omitempty"`
	RecordedAt    *time.Time `bun:"recorded_at,nullzero,default:current_timestamp" json:"recorded_at,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
}

// RegistrationDraft is the transient registration payload carried inside the
// activation token. Password here is the bcrypt hash, never the cleartext:
// the token travels back through the client and we do not want credential
// material recoverable from it.
type RegistrationDraft struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
