package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserStore abstracts user persistence for handlers and tests.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, url string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id primitive.ObjectID, url string) (models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	RecordWatch(ctx context.Context, id, videoID primitive.ObjectID) error
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoWithOwner, error)
}

// VideoStore abstracts video persistence.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	FindWithOwner(ctx context.Context, id primitive.ObjectID) (models.VideoWithOwner, error)
	List(ctx context.Context, params repositories.ListVideosParams) ([]models.VideoWithOwner, int64, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) (models.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	TogglePublish(ctx context.Context, id primitive.ObjectID) (models.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	ListForOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error)
	CountForOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
	TotalViewsForOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
}

// CommentStore abstracts comment persistence.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID primitive.ObjectID, page, limit int64) ([]models.CommentWithOwner, int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// LikeStore abstracts like persistence.
type LikeStore interface {
	Toggle(ctx context.Context, likedBy primitive.ObjectID, targetKind string, targetID primitive.ObjectID) (bool, error)
	LikedVideos(ctx context.Context, likedBy primitive.ObjectID) ([]models.VideoWithOwner, error)
	CountForVideoOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
}

// SubscriptionStore abstracts subscription persistence.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.UserSummary, error)
	CountForChannel(ctx context.Context, channel primitive.ObjectID) (int64, error)
}

// PlaylistStore abstracts playlist persistence.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Playlist, error)
	FindWithVideos(ctx context.Context, id primitive.ObjectID) (models.PlaylistWithVideos, error)
	ListForUser(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistWithVideos, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error
}

// TweetStore abstracts tweet persistence.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) (models.Tweet, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Tweet, error)
	ListForUser(ctx context.Context, owner primitive.ObjectID) ([]models.TweetWithOwner, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MediaStorage uploads local files to durable asset storage and deletes
// assets by the URL a previous upload returned. Upload takes ownership of the
// local file.
type MediaStorage interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

// DurationProber reads the duration in seconds of a local media file.
type DurationProber interface {
	Duration(ctx context.Context, localPath string) (float64, error)
}

// SessionTokenManager issues and verifies the access/refresh token pair.
type SessionTokenManager interface {
	IssuePair(userID string) (models.SessionTokens, error)
	VerifyAccess(token string) (string, error)
	VerifyRefresh(token string) (string, error)
}

// HealthPinger reports whether the backing database answers.
type HealthPinger interface {
	Ping(ctx context.Context) error
}
