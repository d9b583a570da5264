package docstore

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
)

var (
	// ErrNotFound is returned when no document exists at the given path.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned by Create when the path is already taken.
	ErrDuplicate = errors.New("document already exists")
)

// Store is a path-keyed document surface over a single collection.
// Documents are addressed by slash-separated paths such as
// users/{uid}/cart/{orderNo}.
type Store struct {
	coll *mongo.Collection
}

type envelope struct {
	ID        string             `bson:"_id"`
	Data      bson.Raw           `bson:"data"`
	UpdatedAt primitive.DateTime `bson:"updated_at"`
}

// NewStore binds a path-keyed store to the named collection.
func NewStore(client *Client, collection string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("docstore client required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name required")
	}
	return &Store{coll: client.Collection(collection)}, nil
}

// UserPath returns the document path for a user profile.
func UserPath(uid string) string {
	return "users/" + uid
}

// UserEmailPath returns the claim document path that reserves an email
// address for exactly one account.
func UserEmailPath(email string) string {
	return "user_emails/" + email
}

// CartItemPath returns the document path for one cart line item.
func CartItemPath(uid, orderNo string) string {
	return "users/" + uid + "/cart/" + orderNo
}

// CartPrefix returns the path prefix shared by a user's cart documents.
func CartPrefix(uid string) string {
	return "users/" + uid + "/cart/"
}

// Create inserts the document at path, failing with ErrDuplicate when the
// path is already occupied.
func (s *Store) Create(ctx context.Context, path string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	_, err = s.coll.InsertOne(ctx, envelope{
		ID:        path,
		Data:      raw,
		UpdatedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// Set writes the document at path, replacing any existing value.
func (s *Store) Set(ctx context.Context, path string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": path},
		envelope{
			ID:        path,
			Data:      raw,
			UpdatedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
		},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Get decodes the document stored at path into dest.
func (s *Store) Get(ctx context.Context, path string, dest any) error {
	var env envelope
	err := s.coll.FindOne(ctx, bson.M{"_id": path}).Decode(&env)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return bson.Unmarshal(env.Data, dest)
}

// FindOneByField locates a single document whose payload field matches value.
func (s *Store) FindOneByField(ctx context.Context, field string, value any, dest any) error {
	var env envelope
	err := s.coll.FindOne(ctx, bson.M{"data." + field: value}).Decode(&env)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return bson.Unmarshal(env.Data, dest)
}

// ListPrefix returns the raw payloads of every document whose path starts
// with prefix, ordered by path.
func (s *Store) ListPrefix(ctx context.Context, prefix string) ([]bson.Raw, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var envs []envelope
	if err := cur.All(ctx, &envs); err != nil {
		return nil, err
	}

	out := make([]bson.Raw, 0, len(envs))
	for _, env := range envs {
		out = append(out, env.Data)
	}
	return out, nil
}

// Delete removes the document at path. Deleting a missing path returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, path string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": path})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
