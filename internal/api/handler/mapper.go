package handler

import (
	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

// toRegisterInput maps the HTTP request DTO to the service input.
func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Organization: toOrganization(req.Organization),
		Phone:        req.Phone,
	}
}

func toProfileUpdateInput(req updateProfileRequest) ports.ProfileUpdateInput {
	return ports.ProfileUpdateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Organization: toOrganization(req.Organization),
	}
}

func toOrganization(req *organizationRequest) *domain.Organization {
	if req == nil {
		return nil
	}
	return &domain.Organization{
		Name:    req.Name,
		Type:    req.Type,
		Address: req.Address,
	}
}

func toCommunityProfileInput(req communityProfileRequest) ports.CommunityProfileInput {
	return ports.CommunityProfileInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Location: domain.Location{
			Address:  req.Location.Address,
			District: req.Location.District,
			State:    req.Location.State,
		},
		Demographics: domain.Demographics{
			Population: req.Demographics.Population,
			Households: req.Demographics.Households,
		},
		ContactInfo: domain.ContactInfo{
			Phone: req.ContactInfo.Phone,
			Email: req.ContactInfo.Email,
		},
	}
}

func toListUsersInput(req listUsersRequest) ports.ListUsersInput {
	var active *bool
	if req.Active != "" {
		v := req.Active == "true"
		active = &v
	}
	return ports.ListUsersInput{
		Role:   req.Role,
		Active: active,
		Search: req.Search,
		Page:   req.Page,
		Limit:  req.Limit,
	}
}

func toUsersData(res *ports.ListUsersResult) usersData {
	return usersData{
		Users: res.Items,
		Pagination: pagination{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	}
}
