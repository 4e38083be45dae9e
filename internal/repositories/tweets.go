package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/models"
)

// MongoTweetRepository provides MongoDB-backed persistence for tweets.
type MongoTweetRepository struct {
	tweets *mongo.Collection
}

// NewMongoTweetRepository constructs a tweet repository backed by MongoDB.
func NewMongoTweetRepository(database *mongo.Database) *MongoTweetRepository {
	return &MongoTweetRepository{tweets: database.Collection(CollectionTweets)}
}

// Create persists a new tweet document.
func (r *MongoTweetRepository) Create(ctx context.Context, tweet models.Tweet) (models.Tweet, error) {
	if tweet.ID.IsZero() {
		tweet.ID = primitive.NewObjectID()
	}

	if _, err := r.tweets.InsertOne(ctx, tweet); err != nil {
		return models.Tweet{}, fmt.Errorf("insert tweet: %w", err)
	}

	return tweet, nil
}

// FindByID fetches a tweet by identifier.
func (r *MongoTweetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Tweet, error) {
	var tweet models.Tweet
	err := r.tweets.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&tweet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("find tweet by id: %w", err)
	}
	return tweet, nil
}

// ListForUser returns a user's tweets, newest first, with the owner joined.
func (r *MongoTweetRepository) ListForUser(ctx context.Context, owner primitive.ObjectID) ([]models.TweetWithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	pipeline = append(pipeline, ownerLookup("owner")...)

	cursor, err := r.tweets.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate tweets: %w", err)
	}
	defer cursor.Close(ctx)

	tweets := []models.TweetWithOwner{}
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, fmt.Errorf("decode tweets: %w", err)
	}

	return tweets, nil
}

// UpdateContent replaces the tweet body and returns the updated document.
func (r *MongoTweetRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Tweet, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tweet models.Tweet
	err := r.tweets.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&tweet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("update tweet: %w", err)
	}
	return tweet, nil
}

// Delete removes a tweet.
func (r *MongoTweetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.tweets.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
