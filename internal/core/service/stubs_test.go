package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	byEmail   map[string]string
	nextID    int
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User), byEmail: make(map[string]string)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create mirrors the unique index on the lower-cased email.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return nil, domain.ErrEmailTaken
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byID[c.ID] = c
	r.byEmail[key] = c.ID
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Organization != nil {
		org := *upd.Organization
		u.Organization = &org
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.User
	for i := 1; i <= r.nextID; i++ {
		u, ok := r.byID[fmt.Sprintf("user-%d", i)]
		if !ok {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.Email), q) && !strings.Contains(strings.ToLower(u.DisplayName()), q) {
				continue
			}
		}
		matched = append(matched, cloneUser(u))
	}
	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.User{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------------------------------------------------------------------------
// Audit sink / repository
// ---------------------------------------------------------------------------

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (s *recordingSink) Enqueue(ev domain.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) types() []domain.AuthEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuthEventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

type stubAuditRepo struct {
	insertErr error
	touchErr  error
	inserted  []*domain.AuthEvent
	touched   []string
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, ev *domain.AuthEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, ev)
	return nil
}

func (r *stubAuditRepo) TouchLastLogin(_ context.Context, userID string, _ time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	r.touched = append(r.touched, userID)
	return nil
}

// ---------------------------------------------------------------------------
// Community repository
// ---------------------------------------------------------------------------

type stubCommunityRepo struct {
	byUser    map[string]*domain.CommunityProfile
	createErr error
}

func newStubCommunityRepo() *stubCommunityRepo {
	return &stubCommunityRepo{byUser: make(map[string]*domain.CommunityProfile)}
}

func (r *stubCommunityRepo) Create(_ context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.byUser[p.UserID]; exists {
		return nil, domain.ErrProfileExists
	}
	clone := *p
	clone.ID = "profile-" + p.UserID
	r.byUser[p.UserID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCommunityRepo) FindByUserID(_ context.Context, userID string) (*domain.CommunityProfile, error) {
	p, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubCommunityRepo) Update(_ context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error) {
	if _, ok := r.byUser[p.UserID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	r.byUser[p.UserID] = &clone
	out := clone
	return &out, nil
}
