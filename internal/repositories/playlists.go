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

// MongoPlaylistRepository provides MongoDB-backed persistence for playlists.
type MongoPlaylistRepository struct {
	playlists *mongo.Collection
}

// NewMongoPlaylistRepository constructs a playlist repository backed by MongoDB.
func NewMongoPlaylistRepository(database *mongo.Database) *MongoPlaylistRepository {
	return &MongoPlaylistRepository{playlists: database.Collection(CollectionPlaylists)}
}

// Create persists a new playlist; duplicate (owner, name) pairs conflict.
func (r *MongoPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	if playlist.ID.IsZero() {
		playlist.ID = primitive.NewObjectID()
	}
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}

	if _, err := r.playlists.InsertOne(ctx, playlist); err != nil {
		if isDuplicateKey(err) {
			return models.Playlist{}, ErrConflict
		}
		return models.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}

	return playlist, nil
}

// FindByID fetches a raw playlist document.
func (r *MongoPlaylistRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Playlist, error) {
	var playlist models.Playlist
	err := r.playlists.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("find playlist by id: %w", err)
	}
	return playlist, nil
}

// FindWithVideos fetches a playlist with its video references populated and
// each video's owner joined.
func (r *MongoPlaylistRepository) FindWithVideos(ctx context.Context, id primitive.ObjectID) (models.PlaylistWithVideos, error) {
	results, err := r.aggregateWithVideos(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return models.PlaylistWithVideos{}, err
	}
	if len(results) == 0 {
		return models.PlaylistWithVideos{}, ErrNotFound
	}
	return results[0], nil
}

// ListForUser returns all playlists owned by a user, populated.
func (r *MongoPlaylistRepository) ListForUser(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistWithVideos, error) {
	return r.aggregateWithVideos(ctx, bson.D{{Key: "owner", Value: owner}})
}

// UpdateDetails renames or re-describes a playlist.
func (r *MongoPlaylistRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, name, description string) (models.Playlist, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: name},
		{Key: "description", Value: description},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	err := r.playlists.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		if isDuplicateKey(err) {
			return models.Playlist{}, ErrConflict
		}
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	return playlist, nil
}

// Delete removes a playlist. Videos themselves are untouched.
func (r *MongoPlaylistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.playlists.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends a video reference if it is not already present, keeping
// the list ordered by insertion.
func (r *MongoPlaylistRepository) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "videos", Value: videoID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	}
	result, err := r.playlists.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("add video to playlist: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveVideo drops a video reference from the playlist.
func (r *MongoPlaylistRepository) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "videos", Value: videoID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	}
	result, err := r.playlists.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("remove video from playlist: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPlaylistRepository) aggregateWithVideos(ctx context.Context, filter bson.D) ([]models.PlaylistWithVideos, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionVideos},
			{Key: "localField", Value: "videos"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videoDetails"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: CollectionUsers},
					{Key: "localField", Value: "owner"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: "ownerDetails"},
				}}},
				bson.D{{Key: "$unwind", Value: "$ownerDetails"}},
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "ownerDetails.password", Value: 0},
					{Key: "ownerDetails.refreshToken", Value: 0},
					{Key: "ownerDetails.watchHistory", Value: 0},
				}}},
			}},
		}}},
	}

	cursor, err := r.playlists.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate playlists: %w", err)
	}
	defer cursor.Close(ctx)

	// The lookup returns joined documents in natural order, not the order of
	// the videos array, so the insertion order is restored here.
	type populated struct {
		models.PlaylistWithVideos `bson:",inline"`
		VideoIDs                  []primitive.ObjectID `bson:"videos"`
	}
	var fetched []populated
	if err := cursor.All(ctx, &fetched); err != nil {
		return nil, fmt.Errorf("decode playlists: %w", err)
	}

	playlists := make([]models.PlaylistWithVideos, 0, len(fetched))
	for _, doc := range fetched {
		playlist := doc.PlaylistWithVideos
		playlist.Videos = orderPlaylistVideos(doc.VideoIDs, doc.Videos)
		playlists = append(playlists, playlist)
	}

	return playlists, nil
}

// orderPlaylistVideos arranges joined videos to match the playlist's stored
// reference order. Videos deleted since they were added drop out.
func orderPlaylistVideos(ids []primitive.ObjectID, videos []models.VideoWithOwner) []models.VideoWithOwner {
	byID := make(map[primitive.ObjectID]models.VideoWithOwner, len(videos))
	for _, video := range videos {
		byID[video.ID] = video
	}

	ordered := make([]models.VideoWithOwner, 0, len(ids))
	for _, id := range ids {
		if video, ok := byID[id]; ok {
			ordered = append(ordered, video)
		}
	}
	return ordered
}
