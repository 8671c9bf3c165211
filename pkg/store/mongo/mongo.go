// Package mongo stores saved workflows in a MongoDB collection, one
// document per workflow keyed by its id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

// Config holds connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// DefaultCollection is used when Config.Collection is empty.
const DefaultCollection = "workflows"

// Store implements store.Store on a MongoDB collection.
type Store struct {
	client  *mongo.Client
	coll    *mongo.Collection
	nowFunc func() time.Time
}

type document struct {
	persist.SavedWorkflow `bson:",inline"`
	UpdatedAt             time.Time `bson:"updatedAt"`
}

// New connects to MongoDB and returns a store that owns the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo: database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	coll := cfg.Collection
	if coll == "" {
		coll = DefaultCollection
	}
	s := NewWithCollection(client.Database(cfg.Database).Collection(coll))
	s.client = client
	return s, nil
}

// NewWithCollection wraps an existing collection. Close does not
// disconnect the underlying client.
func NewWithCollection(coll *mongo.Collection) *Store {
	return &Store{coll: coll, nowFunc: time.Now}
}

func (s *Store) Load(ctx context.Context, id string) (*persist.SavedWorkflow, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: load %s: %w", id, err)
	}
	return &doc.SavedWorkflow, nil
}

func (s *Store) Save(ctx context.Context, saved *persist.SavedWorkflow) error {
	if saved.ID == "" {
		return fmt.Errorf("mongo: workflow has no id")
	}
	doc := document{SavedWorkflow: *saved, UpdatedAt: s.nowFunc().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": saved.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: save %s: %w", saved.ID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	count := func(field string) bson.M {
		return bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"name":           1,
			"updatedAt":      1,
			"componentCount": bson.M{"$add": bson.A{count("nodes"), count("customNodes")}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}
	out := []store.Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode list: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo: delete %s: %w", id, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

var _ store.Store = (*Store)(nil)
