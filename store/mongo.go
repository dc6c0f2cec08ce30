package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/signalworks/billing-backend/models"
)

const defaultTimeout = 10 * time.Second

// MongoStore implements RecordStore on an external MongoDB service.
type MongoStore struct {
	client   *mongo.Client
	accounts *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the accounts collection.
func NewMongoStore(url, database string) (*MongoStore, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Info().Str("database", database).Msg("connecting to mongodb")

	opts := options.Client()
	opts.ApplyURI(url)
	timeout := defaultTimeout
	opts.ConnectTimeout = &timeout

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(ctx2, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}

	return &MongoStore{
		client:   client,
		accounts: client.Database(database).Collection("accounts"),
	}, nil
}

// Close disconnects from MongoDB.
func (ms *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("error disconnecting from mongodb")
	}
}

// Account returns the record for the given email, or ErrNotFound.
func (ms *MongoStore) Account(ctx context.Context, email string) (*models.AccountRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	record := &models.AccountRecord{}
	if err := ms.accounts.FindOne(ctx, bson.M{"_id": email}).Decode(record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// EnsureAccount returns the record for the given email, creating it with
// zero sub-accounts if absent. The upsert keeps the create idempotent under
// concurrent calls for the same email.
func (ms *MongoStore) EnsureAccount(ctx context.Context, email, customerID string) (*models.AccountRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": email}
	update := bson.M{"$setOnInsert": bson.M{
		"customerId": customerID,
		"accounts":   bson.A{},
		"createdAt":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	record := &models.AccountRecord{}
	if err := ms.accounts.FindOneAndUpdate(ctx, filter, update, opts).Decode(record); err != nil {
		return nil, err
	}
	return record, nil
}

// AddAllowedIP appends an allowlist entry to the record for the given email.
func (ms *MongoStore) AddAllowedIP(ctx context.Context, email string, entry models.AllowlistEntry) (*models.AccountRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": email}
	update := bson.M{"$push": bson.M{"accounts": entry}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	record := &models.AccountRecord{}
	if err := ms.accounts.FindOneAndUpdate(ctx, filter, update, opts).Decode(record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// RemoveAllowedIP removes the allowlist entry at the given index. Mongo has
// no positional pull, so the entry is unset to null first and pulled after.
func (ms *MongoStore) RemoveAllowedIP(ctx context.Context, email string, index int) (*models.AccountRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": email}
	unset := bson.M{"$unset": bson.M{fmt.Sprintf("accounts.%d", index): 1}}
	res, err := ms.accounts.UpdateOne(ctx, filter, unset)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	if _, err := ms.accounts.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"accounts": nil}}); err != nil {
		return nil, err
	}

	record := &models.AccountRecord{}
	if err := ms.accounts.FindOne(ctx, filter).Decode(record); err != nil {
		return nil, err
	}
	return record, nil
}

// AddResult appends a trading result for one of the email's sub-accounts.
func (ms *MongoStore) AddResult(ctx context.Context, email, account string, data interface{}) (*models.AccountRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": email}
	update := bson.M{
		"$push":        bson.M{"results": models.ResultEntry{Account: account, Data: data, At: time.Now().UTC()}},
		"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	record := &models.AccountRecord{}
	if err := ms.accounts.FindOneAndUpdate(ctx, filter, update, opts).Decode(record); err != nil {
		return nil, err
	}
	return record, nil
}
