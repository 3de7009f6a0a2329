package sink

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/depscan/pkg/buildinfo"
	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "depscan"
	DefaultMongoCollection = "dependencies"
	mongoConnectTimeout    = 10 * time.Second
)

// Mongo inserts records into a MongoDB collection, one InsertMany per batch.
//
// The database comes from the URI path (default "depscan") and the
// collection from the "collection" query parameter (default "dependencies").
type Mongo struct {
	uri        string // URI with the collection parameter removed
	database   string
	collection string
	runID      string

	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo parses location without connecting.
func NewMongo(location, runID string) (*Mongo, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse mongodb uri")
	}
	q := u.Query()
	collection := q.Get("collection")
	if collection == "" {
		collection = DefaultMongoCollection
	}
	q.Del("collection")
	u.RawQuery = q.Encode()

	database := strings.Trim(u.Path, "/")
	if database == "" {
		database = DefaultMongoDatabase
	}
	return &Mongo{uri: u.String(), database: database, collection: collection, runID: runID}, nil
}

// Database returns the target database name.
func (s *Mongo) Database() string { return s.database }

// Collection returns the target collection name.
func (s *Mongo) Collection() string { return s.collection }

// Initialize implements Sink.
func (s *Mongo) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri).SetAppName(buildinfo.UserAgent()))
	if err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return errors.Wrap(errors.ErrCodeSink, err, "ping mongodb")
	}
	s.client = client
	s.coll = client.Database(s.database).Collection(s.collection)
	return nil
}

// Append implements Sink.
func (s *Mongo) Append(ctx context.Context, batch []deps.Dependency) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coll == nil {
		return errors.New(errors.ErrCodeSink, "mongodb sink not initialized")
	}
	docs := make([]any, len(batch))
	for i, d := range batch {
		r := NewRecord(d)
		r.RunID = s.runID
		docs[i] = r
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "insert %d records", len(docs))
	}
	return nil
}

// Finalize implements Sink.
func (s *Mongo) Finalize(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	location := "mongodb " + s.database + "." + s.collection
	if s.client == nil {
		return location, nil
	}
	err := s.client.Disconnect(ctx)
	s.client, s.coll = nil, nil
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSink, err, "disconnect from mongodb")
	}
	return location, nil
}
