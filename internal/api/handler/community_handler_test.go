package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

type stubCommunityService struct {
	profiles map[string]*domain.CommunityProfile
	lastIn   ports.CommunityProfileInput
}

func (s *stubCommunityService) MyProfile(_ context.Context, userID string) (*domain.CommunityProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubCommunityService) CreateProfile(_ context.Context, userID string, in ports.CommunityProfileInput) (*domain.CommunityProfile, error) {
	s.lastIn = in
	p := &domain.CommunityProfile{ID: "p1", UserID: userID, Name: in.Name, Type: in.Type}
	s.profiles[userID] = p
	return p, nil
}

func (s *stubCommunityService) UpdateProfile(_ context.Context, userID string, in ports.CommunityProfileInput) (*domain.CommunityProfile, error) {
	if _, ok := s.profiles[userID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	return s.CreateProfile(context.Background(), userID, in)
}

func TestCommunityHandler_Flow(t *testing.T) {
	svc := &stubCommunityService{profiles: map[string]*domain.CommunityProfile{}}
	h := NewCommunityHandler(svc)
	id := &domain.Identity{UserID: "u1", Role: domain.RoleCommunity}

	c, _ := newContext(http.MethodGet, "/api/community/my-profile", "")
	withIdentity(c, id)
	if err := h.MyProfile(c); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	c, rec := newContext(http.MethodPost, "/api/community/profile",
		`{"name":"Delta Fishers","type":"fishing","location":{"district":"Khulna"},"demographics":{"population":90}}`)
	withIdentity(c, id)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.lastIn.Location.District != "Khulna" || svc.lastIn.Demographics.Population != 90 {
		t.Fatalf("request not mapped: %+v", svc.lastIn)
	}

	c, rec = newContext(http.MethodGet, "/api/community/my-profile", "")
	withIdentity(c, id)
	if err := h.MyProfile(c); err != nil {
		t.Fatalf("my profile: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Delta Fishers") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCommunityHandler_ValidationRequiresNameAndType(t *testing.T) {
	h := NewCommunityHandler(&stubCommunityService{profiles: map[string]*domain.CommunityProfile{}})

	c, _ := newContext(http.MethodPost, "/api/community/profile", `{"demographics":{"households":-2}}`)
	withIdentity(c, &domain.Identity{UserID: "u1", Role: domain.RoleCommunity})

	err := h.Create(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, want := range []string{"name is required", "type is required", "households must be at least 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}
