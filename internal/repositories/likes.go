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

// MongoLikeRepository provides MongoDB-backed persistence for likes.
type MongoLikeRepository struct {
	likes *mongo.Collection
}

// NewMongoLikeRepository constructs a like repository backed by MongoDB.
func NewMongoLikeRepository(database *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{likes: database.Collection(CollectionLikes)}
}

// Toggle removes the like for the natural key if present, otherwise creates
// it. The unique index on (likedBy, targetKind, targetId) makes the sequence
// idempotent under concurrent requests: if the insert loses a race to a
// duplicate, the relation exists, which is the state this call wanted.
func (r *MongoLikeRepository) Toggle(ctx context.Context, likedBy primitive.ObjectID, targetKind string, targetID primitive.ObjectID) (bool, error) {
	key := bson.D{
		{Key: "likedBy", Value: likedBy},
		{Key: "targetKind", Value: targetKind},
		{Key: "targetId", Value: targetID},
	}

	deleted, err := r.likes.DeleteOne(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if deleted.DeletedCount > 0 {
		return false, nil
	}

	like := models.Like{
		ID:         primitive.NewObjectID(),
		TargetKind: targetKind,
		TargetID:   targetID,
		LikedBy:    likedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.likes.InsertOne(ctx, like); err != nil {
		if isDuplicateKey(err) {
			return true, nil
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	return true, nil
}

// LikedVideos returns the videos a user has liked, with owners joined.
func (r *MongoLikeRepository) LikedVideos(ctx context.Context, likedBy primitive.ObjectID) ([]models.VideoWithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "likedBy", Value: likedBy},
			{Key: "targetKind", Value: models.LikeTargetVideo},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionVideos},
			{Key: "localField", Value: "targetId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "video"},
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$video"}}}},
	}
	pipeline = append(pipeline, ownerLookup("owner")...)

	cursor, err := r.likes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate liked videos: %w", err)
	}
	defer cursor.Close(ctx)

	videos := []models.VideoWithOwner{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode liked videos: %w", err)
	}

	return videos, nil
}

// CountForVideoOwner counts likes across every video owned by the given
// channel, for the dashboard stats.
func (r *MongoLikeRepository) CountForVideoOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "targetKind", Value: models.LikeTargetVideo}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionVideos},
			{Key: "localField", Value: "targetId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "video"},
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$match", Value: bson.D{{Key: "video.owner", Value: owner}}}},
		{{Key: "$count", Value: "totalLikes"}},
	}

	cursor, err := r.likes.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate like count: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalLikes int64 `bson:"totalLikes"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode like count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].TotalLikes, nil
}
