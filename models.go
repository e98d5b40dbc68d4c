package flightdeck

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record. IDs are numeric because the token claim
// schema carries an integer id. Accounts start inactive and are never
// physically deleted; deactivation flips is_active back off.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	UserID       int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name         string     `bun:"username,notnull,unique" json:"username,omitempty"`
	EmailAddress string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	Active       bool       `bun:"is_active,notnull,default:false" json:"is_active"`
	Staff        bool       `bun:"is_staff,notnull,default:false" json:"is_staff,omitempty"`
	Superuser    bool       `bun:"is_superuser,notnull,default:false" json:"is_superuser,omitempty"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ID implements Identity
func (u *User) ID() int64 { return u.UserID }

// Username implements Identity
func (u *User) Username() string { return u.Name }

// Email implements Identity
func (u *User) Email() string { return u.EmailAddress }

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool { return u.Active }

var _ Identity = (*User)(nil)

// Profile is the empty companion record created alongside every new
// user. Its fields are managed by the profile collaborator; only
// creation belongs to this core.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	UserID    int64      `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User      *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	FirstName string     `bun:"first_name" json:"first_name,omitempty"`
	LastName  string     `bun:"last_name" json:"last_name,omitempty"`
	Bio       string     `bun:"bio" json:"bio,omitempty"`
	ImageURL  string     `bun:"image_url" json:"image_url,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// BlacklistedToken is an append-only revocation record. Entries key on
// the literal encoded token string, so two structurally different
// tokens for the same identity revoke independently. ExpiresAt mirrors
// the token's own expiry claim and only drives purge retention.
type BlacklistedToken struct {
	bun.BaseModel `bun:"table:blacklisted_tokens,alias:blt"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Token     string     `bun:"token,notnull,unique" json:"token,omitempty"`
	RevokedAt *time.Time `bun:"revoked_at,nullzero,default:current_timestamp" json:"revoked_at,omitempty"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
}
