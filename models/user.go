package models

import "time"

// User roles. Every authenticated request carries exactly one of these.
const (
	RoleRenter   = "RENTER"
	RoleProvider = "PROVIDER"
	RoleAdmin    = "ADMIN"
)

// User represents a platform account: renter, provider or admin.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Lastname     string    `bson:"lastname" json:"lastname"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string    `bson:"role" json:"role"`
	PhotoURL     string    `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Verified     bool      `bson:"verified" json:"verified"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Actor identifies the authenticated caller of a service operation.
// It is populated by the auth middleware from JWT claims.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
