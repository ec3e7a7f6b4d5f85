package domain

import "time"

// Location is where a community is based.
type Location struct {
	Address  string `json:"address" bson:"address"`
	District string `json:"district" bson:"district"`
	State    string `json:"state" bson:"state"`
}

// Demographics describes the size of a community.
type Demographics struct {
	Population int `json:"population" bson:"population"`
	Households int `json:"households" bson:"households"`
}

// ContactInfo is how the registry reaches a community.
type ContactInfo struct {
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

// CommunityProfile belongs to exactly one user of role community.
type CommunityProfile struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	UserID       string       `json:"userId" bson:"user_id"`
	Name         string       `json:"name" bson:"name"`
	Type         string       `json:"type" bson:"type"`
	Description  string       `json:"description,omitempty" bson:"description,omitempty"`
	Location     Location     `json:"location" bson:"location"`
	Demographics Demographics `json:"demographics" bson:"demographics"`
	ContactInfo  ContactInfo  `json:"contactInfo" bson:"contact_info"`
	CreatedAt    time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updated_at"`
}

// Dashboard describes the landing view a role is routed to.
type Dashboard struct {
	Role     Role     `json:"role"`
	Path     string   `json:"path"`
	Features []string `json:"features"`
}

// DashboardFor returns the dashboard descriptor of r.
func DashboardFor(r Role) Dashboard {
	switch r {
	case RoleCommunity:
		return Dashboard{Role: r, Path: "/community-dashboard", Features: []string{"profile", "projects", "credits"}}
	case RoleIndustry:
		return Dashboard{Role: r, Path: "/industry-dashboard", Features: []string{"marketplace", "purchases", "certificates"}}
	case RoleGovernment:
		return Dashboard{Role: r, Path: "/government-dashboard", Features: []string{"verification", "projects", "reports"}}
	case RoleAdmin:
		return Dashboard{Role: r, Path: "/admin-dashboard", Features: []string{"users", "projects", "reports", "system"}}
	}
	return Dashboard{Role: DefaultRole, Path: "/login", Features: []string{}}
}
