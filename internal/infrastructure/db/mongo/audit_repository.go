package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

const collectionAuthEvents = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent persists an auth event to the auth_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	doc := bson.M{
		"type":         string(event.Type),
		"email":        event.Email,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.IP != "" {
		doc["ip"] = event.IP
	}
	if event.UserAgent != "" {
		doc["user_agent"] = event.UserAgent
	}

	_, err := r.db.Collection(collectionAuthEvents).InsertOne(ctx, doc)
	return err
}

// TouchLastLogin stamps the user's last successful login.
func (r *AuditRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	filter := bson.M{"_id": oid}
	update := bson.M{"$set": bson.M{"last_login_at": at.UTC()}}

	_, err = r.db.Collection(collectionUsers).UpdateOne(ctx, filter, update)
	return err
}

// EnsureIndexes creates the lookup indexes on auth_events.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.db.Collection(collectionAuthEvents).Indexes().CreateMany(ctx, indexes)
	return err
}
