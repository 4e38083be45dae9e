package repositories

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

	"github.com/vidtube/backend/internal/models"
)

// ListVideosParams narrows and orders a video listing. Page and Limit are
// assumed to be clamped by the caller.
type ListVideosParams struct {
	Query         string
	SortBy        string
	SortAscending bool
	Page          int64
	Limit         int64
	// PublishedOnly hides drafts, which is the view anonymous callers get.
	PublishedOnly bool
}

// MongoVideoRepository provides MongoDB-backed persistence for videos.
type MongoVideoRepository struct {
	videos *mongo.Collection
}

// NewMongoVideoRepository constructs a video repository backed by MongoDB.
func NewMongoVideoRepository(database *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{videos: database.Collection(CollectionVideos)}
}

// Create persists a new video document.
func (r *MongoVideoRepository) Create(ctx context.Context, video models.Video) (models.Video, error) {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}

	if _, err := r.videos.InsertOne(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("insert video: %w", err)
	}

	return video, nil
}

// FindByID fetches a raw video document.
func (r *MongoVideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	var video models.Video
	err := r.videos.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video by id: %w", err)
	}
	return video, nil
}

// FindWithOwner fetches a video with its owner joined.
func (r *MongoVideoRepository) FindWithOwner(ctx context.Context, id primitive.ObjectID) (models.VideoWithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	pipeline = append(pipeline, ownerLookup("owner")...)

	cursor, err := r.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return models.VideoWithOwner{}, fmt.Errorf("aggregate video: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.VideoWithOwner
	if err := cursor.All(ctx, &results); err != nil {
		return models.VideoWithOwner{}, fmt.Errorf("decode video: %w", err)
	}
	if len(results) == 0 {
		return models.VideoWithOwner{}, ErrNotFound
	}

	return results[0], nil
}

// List returns one page of videos with owners joined plus the total count for
// the same filter.
func (r *MongoVideoRepository) List(ctx context.Context, params ListVideosParams) ([]models.VideoWithOwner, int64, error) {
	filter := bson.D{}
	if params.PublishedOnly {
		filter = append(filter, bson.E{Key: "isPublished", Value: true})
	}
	if params.Query != "" {
		filter = append(filter, bson.E{Key: "title", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(params.Query)},
			{Key: "$options", Value: "i"},
		}})
	}

	total, err := r.videos.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	sortField := "createdAt"
	switch params.SortBy {
	case "views", "duration", "title", "createdAt":
		sortField = params.SortBy
	}
	order := -1
	if params.SortAscending {
		order = 1
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: sortField, Value: order}}}},
		{{Key: "$skip", Value: (params.Page - 1) * params.Limit}},
		{{Key: "$limit", Value: params.Limit}},
	}
	pipeline = append(pipeline, ownerLookup("owner")...)

	cursor, err := r.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []models.VideoWithOwner
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, fmt.Errorf("decode videos: %w", err)
	}

	return videos, total, nil
}

// UpdateDetails sets the mutable metadata fields; an empty thumbnail keeps the
// current one.
func (r *MongoVideoRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) (models.Video, error) {
	set := bson.D{
		{Key: "title", Value: title},
		{Key: "description", Value: description},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
	if thumbnail != "" {
		set = append(set, bson.E{Key: "thumbnail", Value: thumbnail})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.videos.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	return video, nil
}

// Delete removes a video and returns the deleted document so the caller can
// clean up its remote assets. Comments and likes are intentionally left in
// place; there is no cascade deletion.
func (r *MongoVideoRepository) Delete(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	var video models.Video
	err := r.videos.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("delete video: %w", err)
	}
	return video, nil
}

// TogglePublish inverts the publish flag and returns the updated document.
func (r *MongoVideoRepository) TogglePublish(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	// aggregation-style update so the flip happens server-side in one step
	update := bson.A{bson.D{{Key: "$set", Value: bson.D{
		{Key: "isPublished", Value: bson.D{{Key: "$not", Value: "$isPublished"}}},
		{Key: "updatedAt", Value: "$$NOW"},
	}}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.videos.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("toggle publish: %w", err)
	}
	return video, nil
}

// IncrementViews bumps the view counter by one.
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.videos.UpdateByID(ctx, id, bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForOwner returns all of a channel's videos, newest first.
func (r *MongoVideoRepository) ListForOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.videos.Find(ctx, bson.D{{Key: "owner", Value: owner}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find videos for owner: %w", err)
	}
	defer cursor.Close(ctx)

	videos := []models.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos for owner: %w", err)
	}
	return videos, nil
}

// CountForOwner returns the number of videos a channel has uploaded.
func (r *MongoVideoRepository) CountForOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	total, err := r.videos.CountDocuments(ctx, bson.D{{Key: "owner", Value: owner}})
	if err != nil {
		return 0, fmt.Errorf("count videos for owner: %w", err)
	}
	return total, nil
}

// TotalViewsForOwner sums the view counters across a channel's videos.
func (r *MongoVideoRepository) TotalViewsForOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalViews", Value: bson.D{{Key: "$sum", Value: "$views"}}},
		}}},
	}

	cursor, err := r.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate total views: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalViews int64 `bson:"totalViews"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode total views: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].TotalViews, nil
}
