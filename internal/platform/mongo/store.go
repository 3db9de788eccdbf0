package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	// DefaultDatabase is used when no database name is configured.
	DefaultDatabase = "benchmark"

	collectionName    = "users"
	usernameIndexName = "idx_users_username"

	disconnectTimeout = 5 * time.Second
)

// userDocument is the stored shape of a user.
type userDocument struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Username string        `bson:"username"`
	Age      int64         `bson:"age"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:       surrogateID(d.ID),
		Username: d.Username,
		Age:      uint32(d.Age),
	}
}

// surrogateID derives the numeric user id from a document's ObjectID.
func surrogateID(oid bson.ObjectID) uint64 {
	return xxhash.Sum64(oid[:])
}

// Store implements store.UserStore using MongoDB.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	logger *slog.Logger
}

var _ store.UserStore = (*Store)(nil)

// Open connects to uri, verifies the primary is reachable and ensures the
// unique username index exists on database.users.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, store.Backend(store.EngineMongo, "connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, store.Backend(store.EngineMongo, "ping", err)
	}

	s := NewStore(client, database, logger)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("mongo store ready", "database", database, "collection", collectionName)
	return s, nil
}

// NewStore wraps a connected client. The store takes ownership and
// disconnects it on Close.
func NewStore(client *mongo.Client, database string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		users:  client.Database(database).Collection(collectionName),
		logger: logger.With("component", "mongo_store"),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(usernameIndexName),
	}
	if _, err := s.users.Indexes().CreateOne(ctx, model); err != nil {
		return store.Backend(store.EngineMongo, "create username index", err)
	}
	return nil
}

func byUsername(username string) bson.D {
	return bson.D{{Key: "username", Value: username}}
}

// CreateUser implements store.UserStore.CreateUser.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	doc := userDocument{
		ID:       bson.NewObjectID(),
		Username: req.Username,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return "", MapError(err, "create user", req.Username)
	}
	return domain.CreatedMessage(req.Username), nil
}

// GetUser implements store.UserStore.GetUser.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, byUsername(username)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.NotFound(username)
		}
		return nil, MapError(err, "get user", username)
	}
	return doc.toDomain(), nil
}

// UpdateUser implements store.UserStore.UpdateUser.
func (s *Store) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "age", Value: int64(req.Age)}}}}
	result, err := s.users.UpdateOne(ctx, byUsername(username), update)
	if err != nil {
		return MapError(err, "update user", username)
	}
	// Matched rather than modified, so setting the same age succeeds.
	if result.MatchedCount == 0 {
		return store.NotFound(username)
	}
	return nil
}

// DeleteUser implements store.UserStore.DeleteUser.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	result, err := s.users.DeleteOne(ctx, byUsername(username))
	if err != nil {
		return MapError(err, "delete user", username)
	}
	if result.DeletedCount == 0 {
		return store.NotFound(username)
	}
	return nil
}

// Ping implements store.UserStore.Ping.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return store.Backend(store.EngineMongo, "ping", err)
	}
	return nil
}

// Close implements store.UserStore.Close.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
