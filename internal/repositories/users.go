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

// MongoUserRepository provides MongoDB-backed persistence for users.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository backed by MongoDB.
func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: database.Collection(CollectionUsers)}
}

// Create persists a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// FindByID fetches a user by identifier.
func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// FindByUsernameOrEmail fetches the first user matching either credential.
func (r *MongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "email", Value: email}},
	}}}

	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by username or email: %w", err)
	}
	return user, nil
}

// UpdateDetails sets the mutable account fields and returns the updated user.
func (r *MongoUserRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, fullName, email string) (models.User, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "fullName", Value: fullName},
		{Key: "email", Value: email},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	return r.findOneAndUpdate(ctx, id, update)
}

// UpdateAvatar replaces the avatar asset URL.
func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, url string) (models.User, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "avatar", Value: url},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	return r.findOneAndUpdate(ctx, id, update)
}

// UpdateCoverImage replaces the cover image asset URL.
func (r *MongoUserRepository) UpdateCoverImage(ctx context.Context, id primitive.ObjectID, url string) (models.User, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "coverImage", Value: url},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	return r.findOneAndUpdate(ctx, id, update)
}

// UpdatePassword stores a new password hash.
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	return r.updateOne(ctx, id, update)
}

// SetRefreshToken stores the single active refresh token for the user,
// invalidating any previously issued one.
func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "refreshToken", Value: token}}}}
	return r.updateOne(ctx, id, update)
}

// ClearRefreshToken removes the stored refresh token on logout.
func (r *MongoUserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "refreshToken", Value: ""}}}}
	return r.updateOne(ctx, id, update)
}

// RecordWatch appends a video to the user's watch history, most recent last,
// without introducing duplicates.
func (r *MongoUserRepository) RecordWatch(ctx context.Context, id, videoID primitive.ObjectID) error {
	// pull-then-push keeps the history ordered by most recent watch
	pull := bson.D{{Key: "$pull", Value: bson.D{{Key: "watchHistory", Value: videoID}}}}
	if err := r.updateOne(ctx, id, pull); err != nil {
		return err
	}
	push := bson.D{{Key: "$push", Value: bson.D{{Key: "watchHistory", Value: videoID}}}}
	return r.updateOne(ctx, id, push)
}

// ChannelProfile aggregates the public channel view for a username, computing
// subscriber counts and whether the viewer is subscribed.
func (r *MongoUserRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (models.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "username", Value: username}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionSubscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "channel"},
			{Key: "as", Value: "subscribers"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionSubscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscriber"},
			{Key: "as", Value: "subscribedTo"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "isSubscribed", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "email", Value: 1},
			{Key: "fullName", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "coverImage", Value: 1},
			{Key: "subscribersCount", Value: 1},
			{Key: "channelsSubscribedToCount", Value: 1},
			{Key: "isSubscribed", Value: 1},
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("aggregate channel profile: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("decode channel profile: %w", err)
	}
	if len(profiles) == 0 {
		return models.ChannelProfile{}, ErrNotFound
	}

	return profiles[0], nil
}

// WatchHistory returns the user's watched videos with their owners joined.
func (r *MongoUserRepository) WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoWithOwner, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(user.WatchHistory) == 0 {
		return []models.VideoWithOwner{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: user.WatchHistory}}}}}},
	}
	pipeline = append(pipeline, ownerLookup("owner")...)

	cursor, err := r.users.Database().Collection(CollectionVideos).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate watch history: %w", err)
	}
	defer cursor.Close(ctx)

	byID := make(map[primitive.ObjectID]models.VideoWithOwner)
	var fetched []models.VideoWithOwner
	if err := cursor.All(ctx, &fetched); err != nil {
		return nil, fmt.Errorf("decode watch history: %w", err)
	}
	for _, video := range fetched {
		byID[video.ID] = video
	}

	// preserve the stored watch order; videos deleted since watching drop out
	history := make([]models.VideoWithOwner, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		if video, ok := byID[videoID]; ok {
			history = append(history, video)
		}
	}

	return history, nil
}

func (r *MongoUserRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.D) (models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		if isDuplicateKey(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.D) error {
	result, err := r.users.UpdateByID(ctx, id, update)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
