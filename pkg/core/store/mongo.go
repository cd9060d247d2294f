package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"supplysight/pkg/core/pipeline"
	"supplysight/pkg/core/schema"
)

// MongoRecordStore writes accepted records into MongoDB, one collection per
// schema type. Each InsertMany call is independent, so concurrent file
// pipelines commit without cross-file interference.
type MongoRecordStore struct {
	client   *mongo.Client
	database string
}

var _ pipeline.RecordStore = (*MongoRecordStore)(nil)

// ConnectMongo dials MongoDB using MONGO_URI and verifies the connection.
func ConnectMongo(ctx context.Context, database string) (*MongoRecordStore, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoRecordStore{client: client, database: database}, nil
}

// InsertMany persists one file's accepted records as a single batched
// insert.
func (s *MongoRecordStore) InsertMany(ctx context.Context, schemaType string, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, rec := range records {
		docs = append(docs, map[string]interface{}(rec))
	}

	coll := s.client.Database(s.database).Collection(schemaType)
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", schemaType, err)
	}
	if len(res.InsertedIDs) != len(docs) {
		return fmt.Errorf("insert into %s: %d of %d records written", schemaType, len(res.InsertedIDs), len(docs))
	}
	return nil
}

// Disconnect closes the client.
func (s *MongoRecordStore) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
