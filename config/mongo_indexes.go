package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func MongoDBName() string {
	if name := os.Getenv("MONGO_DB"); name != "" {
		return name
	}
	return "chainfolio"
}

// EnsureMongoIndexes creates the indexes backing the resume query patterns:
// owner listing (most recent first), default lookup, and public search.
func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	db := MongoClient.Database(MongoDBName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resumes := db.Collection("resumes")
	_, err := resumes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("by_owner_updated"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_default", Value: 1}},
			Options: options.Index().SetName("by_owner_default"),
		},
		{
			Keys:    bson.D{{Key: "is_public", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("by_public_updated"),
		},
	})
	return err
}
