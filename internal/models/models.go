package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account within the VidTube platform. The password hash and
// refresh token are persisted but never serialized into responses.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Avatar       string               `bson:"avatar" json:"avatar"`
	CoverImage   string               `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Password     string               `bson:"password" json:"-"`
	RefreshToken string               `bson:"refreshToken,omitempty" json:"-"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory,omitempty" json:"-"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Summary strips a user down to the fields other documents embed when joined
// against their owner.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// UserSummary is the owner projection attached to videos, comments and tweets.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	FullName string             `bson:"fullName" json:"fullName"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

// Video is a published or draft video document owned by one user.
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoFile   string             `bson:"videoFile" json:"videoFile"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VideoWithOwner is the denormalized read shape produced by the owner lookup
// pipelines.
type VideoWithOwner struct {
	Video `bson:",inline"`
	Owner UserSummary `bson:"ownerDetails" json:"owner"`
}

// Comment belongs to one video and one user.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Video     primitive.ObjectID `bson:"video" json:"video"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommentWithOwner carries the joined owner projection for listings.
type CommentWithOwner struct {
	Comment `bson:",inline"`
	Owner   UserSummary `bson:"ownerDetails" json:"owner"`
}

// Tweet is a short text post owned by one user.
type Tweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TweetWithOwner carries the joined owner projection for listings.
type TweetWithOwner struct {
	Tweet `bson:",inline"`
	Owner UserSummary `bson:"ownerDetails" json:"owner"`
}

// Like target kinds. A like points at exactly one target, expressed as a
// tagged (kind, id) pair rather than three nullable references.
const (
	LikeTargetVideo   = "video"
	LikeTargetComment = "comment"
	LikeTargetTweet   = "tweet"
)

// Like records one user liking one target. The (likedBy, targetKind, targetId)
// triple carries a unique index.
type Like struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TargetKind string             `bson:"targetKind" json:"targetKind"`
	TargetID   primitive.ObjectID `bson:"targetId" json:"targetId"`
	LikedBy    primitive.ObjectID `bson:"likedBy" json:"likedBy"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Subscription links a subscriber to a channel (both users). The
// (subscriber, channel) pair carries a unique index.
type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Playlist is an ordered list of video references owned by one user.
type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PlaylistWithVideos is the populated read shape for playlist fetches.
type PlaylistWithVideos struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Videos      []VideoWithOwner   `bson:"videoDetails" json:"videos"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	ID                        primitive.ObjectID `bson:"_id" json:"id"`
	Username                  string             `bson:"username" json:"username"`
	Email                     string             `bson:"email" json:"email"`
	FullName                  string             `bson:"fullName" json:"fullName"`
	Avatar                    string             `bson:"avatar" json:"avatar"`
	CoverImage                string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscribersCount          int64              `bson:"subscribersCount" json:"subscribersCount"`
	ChannelsSubscribedToCount int64              `bson:"channelsSubscribedToCount" json:"channelsSubscribedToCount"`
	IsSubscribed              bool               `bson:"isSubscribed" json:"isSubscribed"`
}

// ChannelStats aggregates the dashboard counters for one channel.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
