package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the uniqueness and query indexes the repositories rely
// on. The unique natural keys on likes and subscriptions are what make the
// toggle endpoints idempotent under concurrent requests.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionVideos: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "title", Value: 1}}},
		},
		CollectionComments: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollectionLikes: {
			{
				Keys:    bson.D{{Key: "likedBy", Value: 1}, {Key: "targetKind", Value: 1}, {Key: "targetId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "targetKind", Value: 1}, {Key: "targetId", Value: 1}}},
		},
		CollectionSubscriptions: {
			{
				Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "channel", Value: 1}}},
		},
		CollectionPlaylists: {
			{
				Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		CollectionTweets: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
