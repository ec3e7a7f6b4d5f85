package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the permission tier of a user. The set is closed: every switch over
// Role must handle all four values.
type Role string

const (
	RoleCommunity  Role = "community"
	RoleIndustry   Role = "industry"
	RoleGovernment Role = "government"
	RoleAdmin      Role = "admin"
)

// DefaultRole is the lowest-privilege tier.
const DefaultRole = RoleCommunity

// Roles lists every role in ascending privilege order.
var Roles = []Role{RoleCommunity, RoleIndustry, RoleGovernment, RoleAdmin}

// ParseRole converts s into a Role, rejecting anything outside the enum.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCommunity, RoleIndustry, RoleGovernment, RoleAdmin:
		return r, nil
	default:
		return "", Validation(fmt.Sprintf("role must be one of: %s", joinRoles(Roles)))
	}
}

// SelfRegistrable reports whether a user may pick this role at sign-up.
func (r Role) SelfRegistrable() bool {
	switch r {
	case RoleCommunity, RoleIndustry, RoleGovernment:
		return true
	case RoleAdmin:
		return false
	}
	return false
}

// Valid reports whether r is exactly one of the enum values. Unlike
// ParseRole it does not normalise case, so a valid Role always matches RBAC.
func (r Role) Valid() bool {
	switch r {
	case RoleCommunity, RoleIndustry, RoleGovernment, RoleAdmin:
		return true
	}
	return false
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// Organization is the optional employer/agency block attached to a user.
type Organization struct {
	Name    string `json:"name,omitempty" bson:"name,omitempty"`
	Type    string `json:"type,omitempty" bson:"type,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
}

// User is the credential record. PasswordHash never leaves the service layer;
// use PublicProfile before serialising.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Organization *Organization
	Phone        string
	IsVerified   bool
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID           string        `json:"id"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Organization *Organization `json:"organization,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	IsVerified   bool          `json:"isVerified"`
	IsActive     bool          `json:"isActive"`
	LastLoginAt  *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// PublicProfile strips the password hash and derives the display name.
func PublicProfile(u *User) *PublicUser {
	if u == nil {
		return nil
	}
	var org *Organization
	if u.Organization != nil {
		o := *u.Organization
		org = &o
	}
	return &PublicUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Name:         u.DisplayName(),
		Email:        u.Email,
		Role:         u.Role,
		Organization: org,
		Phone:        u.Phone,
		IsVerified:   u.IsVerified,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is what the auth middleware extracts from a verified token.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}
