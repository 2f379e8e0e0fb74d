package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/enterprisepro/erp-portal/internal/infrastructure/db/sessionkey"
)

const sessionsCollection = "portal_sessions"

// TokenStore keeps one document per session:
//
//	{_id: <blake2b(session_id)>, tokens: {access_token, refresh_token}, updated_at}
//
// Every write bumps updated_at, which the TTL index created by Connect keys on.
type TokenStore struct {
	coll *mongo.Collection
}

func NewTokenStore(db *mongo.Database) *TokenStore {
	return &TokenStore{coll: db.Collection(sessionsCollection)}
}

type sessionDoc struct {
	ID        string            `bson:"_id"`
	Tokens    map[string]string `bson:"tokens"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func (s *TokenStore) Get(ctx context.Context, sessionID, name string) (string, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": sessionkey.Hash(sessionID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find session tokens: %w", err)
	}
	return doc.Tokens[name], nil
}

func (s *TokenStore) Set(ctx context.Context, sessionID, name, value string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sessionkey.Hash(sessionID)},
		bson.M{"$set": bson.M{
			"tokens." + name: value,
			"updated_at":     time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert session token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": sessionkey.Hash(sessionID)}); err != nil {
		return fmt.Errorf("delete session tokens: %w", err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
