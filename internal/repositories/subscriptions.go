package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/models"
)

// MongoSubscriptionRepository provides MongoDB-backed persistence for
// channel subscriptions.
type MongoSubscriptionRepository struct {
	subscriptions *mongo.Collection
}

// NewMongoSubscriptionRepository constructs a subscription repository backed
// by MongoDB.
func NewMongoSubscriptionRepository(database *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{subscriptions: database.Collection(CollectionSubscriptions)}
}

// Toggle removes the subscription if present, otherwise creates it. The
// unique (subscriber, channel) index resolves races the same way the like
// toggle does.
func (r *MongoSubscriptionRepository) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	key := bson.D{
		{Key: "subscriber", Value: subscriber},
		{Key: "channel", Value: channel},
	}

	deleted, err := r.subscriptions.DeleteOne(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if deleted.DeletedCount > 0 {
		return false, nil
	}

	subscription := models.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.subscriptions.InsertOne(ctx, subscription); err != nil {
		if isDuplicateKey(err) {
			return true, nil
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	return true, nil
}

// Subscribers lists the users subscribed to a channel.
func (r *MongoSubscriptionRepository) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.UserSummary, error) {
	return r.joinUsers(ctx, bson.D{{Key: "channel", Value: channel}}, "subscriber")
}

// SubscribedChannels lists the channels a user is subscribed to.
func (r *MongoSubscriptionRepository) SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.UserSummary, error) {
	return r.joinUsers(ctx, bson.D{{Key: "subscriber", Value: subscriber}}, "channel")
}

// CountForChannel returns the subscriber count for a channel.
func (r *MongoSubscriptionRepository) CountForChannel(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	total, err := r.subscriptions.CountDocuments(ctx, bson.D{{Key: "channel", Value: channel}})
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return total, nil
}

func (r *MongoSubscriptionRepository) joinUsers(ctx context.Context, filter bson.D, localField string) ([]models.UserSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionUsers},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$user"}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "email", Value: 1},
			{Key: "fullName", Value: 1},
			{Key: "avatar", Value: 1},
		}}},
	}

	cursor, err := r.subscriptions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.UserSummary{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode subscription users: %w", err)
	}

	return users, nil
}
