package sink

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ziadkadry99/campusbot/internal/crawler"
)

// MongoConfig locates the collection receiving scraped records.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // server selection and ping timeout
}

// MongoSink inserts records into a MongoDB collection. One client is
// shared by every write and released by Close.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to MongoDB and checks the server is reachable.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Write inserts rec as a new document. name is not stored.
func (m *MongoSink) Write(ctx context.Context, _ string, rec crawler.Record) error {
	if _, err := m.collection.InsertOne(ctx, recordDocument(rec)); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoSink) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	return nil
}

// recordDocument converts rec to an ordered BSON document so table
// columns keep their order in the store.
func recordDocument(rec crawler.Record) bson.D {
	files := bson.A{}
	for _, f := range rec.Files {
		files = append(files, bson.D{{Key: "name", Value: f.Name}, {Key: "url", Value: f.URL}})
	}

	tables := bson.A{}
	for _, t := range rec.Tables {
		rows := bson.A{}
		for _, row := range t {
			doc := bson.D{}
			for pair := row.Oldest(); pair != nil; pair = pair.Next() {
				doc = append(doc, bson.E{Key: pair.Key, Value: pair.Value})
			}
			rows = append(rows, doc)
		}
		tables = append(tables, rows)
	}

	return bson.D{
		{Key: "topic", Value: rec.Topic},
		{Key: "path", Value: rec.Path},
		{Key: "text", Value: rec.Text},
		{Key: "files", Value: files},
		{Key: "tables", Value: tables},
	}
}
