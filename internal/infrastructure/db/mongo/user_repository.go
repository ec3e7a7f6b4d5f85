package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on MongoDB. Email
// uniqueness is enforced by a unique index, so concurrent registrations for
// the same address cannot both succeed.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	FirstName    string               `bson:"first_name"`
	LastName     string               `bson:"last_name"`
	Email        string               `bson:"email"`
	PasswordHash string               `bson:"password_hash"`
	Role         string               `bson:"role"`
	Organization *domain.Organization `bson:"organization,omitempty"`
	Phone        string               `bson:"phone,omitempty"`
	IsVerified   bool                 `bson:"is_verified"`
	IsActive     bool                 `bson:"is_active"`
	LastLoginAt  *time.Time           `bson:"last_login_at,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Organization: u.Organization,
		Phone:        u.Phone,
		IsVerified:   u.IsVerified,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (m *mongoUser) toDomain() *domain.User {
	role := domain.Role(m.Role)
	if role == "" {
		role = domain.DefaultRole
	}
	return &domain.User{
		ID:           m.ID.Hex(),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         role,
		Organization: m.Organization,
		Phone:        m.Phone,
		IsVerified:   m.IsVerified,
		IsActive:     m.IsActive,
		LastLoginAt:  m.LastLoginAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Create inserts a user. A duplicate email yields domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := toMongoUser(user)
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// Update applies the non-nil fields of upd and returns the stored document.
func (r *UserRepository) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": userUpdateSet(upd, time.Now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var mu mongoUser
	if err := res.Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func userUpdateSet(upd ports.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["last_name"] = *upd.LastName
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Organization != nil {
		set["organization"] = upd.Organization
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}
	if upd.IsVerified != nil {
		set["is_verified"] = *upd.IsVerified
	}
	return set
}

// List returns one page of users, newest first, and the total match count.
func (r *UserRepository) List(ctx context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := userListFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit)).
		SetProjection(bson.M{"password_hash": 0})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]*domain.User, 0, f.Limit)
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, 0, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func userListFilter(f ports.ListUsersFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"email": re},
			bson.M{"first_name": re},
			bson.M{"last_name": re},
		}
	}
	return filter
}

// EnsureIndexes creates the unique email index and the list filters' indexes.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
