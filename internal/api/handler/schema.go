package handler

import (
	"github.com/bluecarbon/registry/internal/core/domain"
)

// envelope is the body shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// --- Request types ---

type organizationRequest struct {
	Name    string `json:"name"    validate:"max=200"`
	Type    string `json:"type"    validate:"max=100"`
	Address string `json:"address" validate:"max=300"`
}

// registerRequest leaves presence checks to the service so the missing
// fields are reported together.
type registerRequest struct {
	FirstName    string               `json:"firstName"    validate:"max=100"`
	LastName     string               `json:"lastName"     validate:"max=100"`
	Email        string               `json:"email"        validate:"omitempty,email"`
	Password     string               `json:"password"     validate:"max=72"`
	Role         string               `json:"role"         validate:"omitempty,oneof=community industry government admin"`
	Organization *organizationRequest `json:"organization" validate:"omitempty"`
	Phone        string               `json:"phone"        validate:"max=32"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FirstName    *string              `json:"firstName"    validate:"omitempty,max=100"`
	LastName     *string              `json:"lastName"     validate:"omitempty,max=100"`
	Phone        *string              `json:"phone"        validate:"omitempty,max=32"`
	Organization *organizationRequest `json:"organization" validate:"omitempty"`
}

type locationRequest struct {
	Address  string `json:"address"  validate:"max=300"`
	District string `json:"district" validate:"max=100"`
	State    string `json:"state"    validate:"max=100"`
}

type demographicsRequest struct {
	Population int `json:"population" validate:"min=0"`
	Households int `json:"households" validate:"min=0"`
}

type contactInfoRequest struct {
	Phone string `json:"phone" validate:"max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

type communityProfileRequest struct {
	Name         string              `json:"name"         validate:"required,max=200"`
	Type         string              `json:"type"         validate:"required,max=100"`
	Description  string              `json:"description"  validate:"max=2000"`
	Location     locationRequest     `json:"location"`
	Demographics demographicsRequest `json:"demographics"`
	ContactInfo  contactInfoRequest  `json:"contactInfo"`
}

type listUsersRequest struct {
	Role   string `query:"role"   validate:"omitempty,oneof=community industry government admin"`
	Active string `query:"active" validate:"omitempty,oneof=true false"`
	Search string `query:"search" validate:"max=100"`
	Page   int    `query:"page"   validate:"min=0"`
	Limit  int    `query:"limit"  validate:"min=0"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=community industry government admin"`
}

type setStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// --- Response types ---

type authData struct {
	User  *domain.PublicUser `json:"user"`
	Token string             `json:"token"`
}

type userData struct {
	User *domain.PublicUser `json:"user"`
}

type profileData struct {
	Profile *domain.CommunityProfile `json:"profile"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type usersData struct {
	Users      []*domain.PublicUser `json:"users"`
	Pagination pagination           `json:"pagination"`
}

type dashboardData struct {
	Dashboard domain.Dashboard `json:"dashboard"`
}
