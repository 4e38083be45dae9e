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

// MongoCommentRepository provides MongoDB-backed persistence for comments.
type MongoCommentRepository struct {
	comments *mongo.Collection
}

// NewMongoCommentRepository constructs a comment repository backed by MongoDB.
func NewMongoCommentRepository(database *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{comments: database.Collection(CollectionComments)}
}

// Create persists a new comment document.
func (r *MongoCommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}

	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	return comment, nil
}

// FindByID fetches a comment by identifier.
func (r *MongoCommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var comment models.Comment
	err := r.comments.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("find comment by id: %w", err)
	}
	return comment, nil
}

// ListForVideo returns one page of a video's comments, newest first, with
// owners joined, plus the total count for the video.
func (r *MongoCommentRepository) ListForVideo(ctx context.Context, videoID primitive.ObjectID, page, limit int64) ([]models.CommentWithOwner, int64, error) {
	filter := bson.D{{Key: "video", Value: videoID}}

	total, err := r.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, ownerLookup("owner")...)

	cursor, err := r.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []models.CommentWithOwner{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, fmt.Errorf("decode comments: %w", err)
	}

	return comments, total, nil
}

// UpdateContent replaces the comment body and returns the updated document.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment.
func (r *MongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
