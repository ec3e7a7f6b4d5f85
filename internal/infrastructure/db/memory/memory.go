// Package memory holds process-local repositories selected with
// STORAGE_DRIVER=memory. They honour the same uniqueness rules as the Mongo
// indexes, so duplicate emails and second community profiles still fail.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

// Store backs all repositories of this package.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	emails   map[string]string
	profiles map[string]*domain.CommunityProfile
	events   []domain.AuthEvent
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		emails:   make(map[string]string),
		profiles: make(map[string]*domain.CommunityProfile),
	}
}

// Users returns a ports.UserRepository view of s.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Communities returns a ports.CommunityRepository view of s.
func (s *Store) Communities() *CommunityRepository { return &CommunityRepository{s: s} }

// Audit returns a ports.AuditRepository view of s.
func (s *Store) Audit() *AuditRepository { return &AuditRepository{s: s} }

// Events returns a copy of the recorded auth events.
func (s *Store) Events() []domain.AuthEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuthEvent(nil), s.events...)
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.Organization != nil {
		org := *u.Organization
		c.Organization = &org
	}
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		c.LastLoginAt = &at
	}
	return &c
}

type UserRepository struct{ s *Store }

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.s.emails[email]; taken {
		return nil, domain.ErrEmailTaken
	}

	u := copyUser(user)
	u.ID = primitive.NewObjectID().Hex()
	u.Email = email
	r.s.users[u.ID] = u
	r.s.emails[email] = u.ID
	return copyUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
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
	return copyUser(u), nil
}

// List mirrors the Mongo query: newest first, case-insensitive substring search.
func (r *UserRepository) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(f.Search)
	matched := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		if q != "" &&
			!strings.Contains(u.Email, q) &&
			!strings.Contains(strings.ToLower(u.FirstName), q) &&
			!strings.Contains(strings.ToLower(u.LastName), q) {
			continue
		}
		matched = append(matched, copyUser(u))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = len(matched)
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*domain.User{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type CommunityRepository struct{ s *Store }

var _ ports.CommunityRepository = (*CommunityRepository)(nil)

func (r *CommunityRepository) Create(_ context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.profiles[p.UserID]; exists {
		return nil, domain.ErrProfileExists
	}
	c := *p
	c.ID = primitive.NewObjectID().Hex()
	r.s.profiles[p.UserID] = &c
	out := c
	return &out, nil
}

func (r *CommunityRepository) FindByUserID(_ context.Context, userID string) (*domain.CommunityProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (r *CommunityRepository) Update(_ context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.profiles[p.UserID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	c := *p
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	r.s.profiles[p.UserID] = &c
	out := c
	return &out, nil
}

type AuditRepository struct{ s *Store }

var _ ports.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) InsertEvent(_ context.Context, event *domain.AuthEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *AuditRepository) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	t := at.UTC()
	u.LastLoginAt = &t
	return nil
}
