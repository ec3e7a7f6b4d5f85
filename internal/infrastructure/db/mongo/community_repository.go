package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bluecarbon/registry/internal/core/domain"
)

const collectionCommunityProfiles = "community_profiles"

type CommunityRepository struct {
	col *mongo.Collection
}

func NewCommunityRepository(db *mongo.Database) *CommunityRepository {
	return &CommunityRepository{col: db.Collection(collectionCommunityProfiles)}
}

// Create inserts a new profile document. The unique user_id index turns a
// second profile for the same user into domain.ErrProfileExists.
func (r *CommunityRepository) Create(ctx context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := *p
	doc.ID = primitive.NewObjectID().Hex()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProfileExists
		}
		return nil, fmt.Errorf("insert community profile: %w", err)
	}
	return &doc, nil
}

// FindByUserID retrieves the profile owned by userID.
func (r *CommunityRepository) FindByUserID(ctx context.Context, userID string) (*domain.CommunityProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p domain.CommunityProfile
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update replaces the editable fields of the profile owned by p.UserID.
func (r *CommunityRepository) Update(ctx context.Context, p *domain.CommunityProfile) (*domain.CommunityProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":         p.Name,
		"type":         p.Type,
		"description":  p.Description,
		"location":     p.Location,
		"demographics": p.Demographics,
		"contact_info": p.ContactInfo,
		"updated_at":   p.UpdatedAt.UTC(),
	}}

	var out domain.CommunityProfile
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"user_id": p.UserID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("update community profile: %w", err)
	}
	return &out, nil
}

// EnsureIndexes creates necessary indexes on the community_profiles collection.
func (r *CommunityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
