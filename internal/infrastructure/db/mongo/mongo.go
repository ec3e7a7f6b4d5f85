package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
	opTimeout      = 10 * time.Second // per repository call
)

// Config describes the registry's MongoDB deployment.
type Config struct {
	URI      string
	Database string
	// AppName shows up in server logs and currentOp output.
	AppName string
	// Timeout bounds connecting and the initial ping. Zero means connectTimeout.
	Timeout time.Duration
}

func (c Config) clientOptions() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(c.URI).
		SetServerSelectionTimeout(c.timeout())
	if c.AppName != "" {
		opts.SetAppName(c.AppName)
	}
	return opts
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return connectTimeout
}

// Connect returns a client that has answered a ping on the primary, and the
// registry database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes every repository depends on. The unique
// indexes on users.email and community_profiles.user_id are load-bearing: they
// are what makes duplicate registrations and duplicate profiles fail.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, ix := range map[string]indexer{
		collectionUsers:             NewUserRepository(db),
		collectionCommunityProfiles: NewCommunityRepository(db),
		collectionAuthEvents:        NewAuditRepository(db).(*AuditRepository),
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

// Ping reports whether the primary is reachable.
func Ping(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}
