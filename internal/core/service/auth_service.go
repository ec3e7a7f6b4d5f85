package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

// DefaultBcryptCost is the work factor applied to password hashes.
const DefaultBcryptCost = 12

// AuthOptions tunes AuthService.
type AuthOptions struct {
	BcryptCost       int
	AllowAdminSignup bool
}

// AuthService implements registration, login and self-service profile reads.
type AuthService struct {
	repo   ports.UserRepository
	tokens *TokenIssuer
	audit  ports.AuditSink
	opts   AuthOptions
	log    zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, tokens *TokenIssuer, audit ports.AuditSink, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = DefaultBcryptCost
	}
	return &AuthService{repo: repo, tokens: tokens, audit: audit, opts: opts, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = domain.NormalizeEmail(in.Email)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"password", in.Password},
		{"role", strings.TrimSpace(in.Role)},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.Validation("Please provide all required fields: " + strings.Join(missing, ", "))
	}
	// ParseAddress also accepts "Name <addr>"; only a bare address is stored.
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return nil, domain.Validation("Please provide a valid email address")
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !role.SelfRegistrable() && !s.opts.AllowAdminSignup {
		return nil, domain.Validation("role " + string(role) + " cannot be self-registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, domain.Internal("Server error during registration", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Organization: in.Organization,
		Phone:        strings.TrimSpace(in.Phone),
		IsVerified:   false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Uniqueness is left to the storage layer's unique index.
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		s.log.Error().Err(err).Str("email", in.Email).Msg("failed to create user")
		return nil, domain.Internal("Server error during registration", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, domain.Internal("Server error during registration", err)
	}

	s.record(ctx, domain.AuthEventRegister, created.Email, created.ID)
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")

	return &ports.AuthResult{User: domain.PublicProfile(created), Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("Please provide email and password")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("failed to look up user")
			return nil, domain.Internal("Server error during login", err)
		}
		// Spend the same bcrypt time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		s.record(ctx, domain.AuthEventLoginFailed, email, "")
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record(ctx, domain.AuthEventLoginFailed, email, user.ID)
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.record(ctx, domain.AuthEventLoginFailed, email, user.ID)
		return nil, domain.ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.Internal("Server error during login", err)
	}

	s.record(ctx, domain.AuthEventLogin, user.Email, user.ID)
	return &ports.AuthResult{User: domain.PublicProfile(user), Token: token}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error")
	}
	return domain.PublicProfile(user), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.PublicUser, error) {
	upd := ports.UserUpdate{Organization: in.Organization}
	for _, f := range []struct {
		name string
		src  *string
		dst  **string
	}{
		{"firstName", in.FirstName, &upd.FirstName},
		{"lastName", in.LastName, &upd.LastName},
	} {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return nil, domain.Validation(f.name + " cannot be empty")
		}
		*f.dst = &v
	}
	if in.Phone != nil {
		v := strings.TrimSpace(*in.Phone)
		upd.Phone = &v
	}

	user, err := s.repo.Update(ctx, userID, upd)
	if err != nil {
		return nil, passThroughOrInternal(err, "Server error during profile update")
	}
	return domain.PublicProfile(user), nil
}

// Logout only records the event; sessions are dropped client-side.
func (s *AuthService) Logout(ctx context.Context, id *domain.Identity) {
	if id == nil {
		return
	}
	s.record(ctx, domain.AuthEventLogout, id.Email, id.UserID)
}

func (s *AuthService) record(ctx context.Context, typ domain.AuthEventType, email, userID string) {
	if s.audit == nil {
		return
	}
	info := domain.ClientInfoFrom(ctx)
	s.audit.Enqueue(domain.AuthEvent{
		Type:       typ,
		Email:      email,
		UserID:     userID,
		IP:         info.IP,
		UserAgent:  info.UserAgent,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("bluecarbon-timing-equalizer"), s.opts.BcryptCost)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build dummy hash")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// passThroughOrInternal keeps domain errors intact and wraps anything else.
func passThroughOrInternal(err error, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(msg, err)
}
