package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// LikeHandler serves the like toggle endpoints for videos, comments and
// tweets, plus the liked-videos listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

type toggleResponse struct {
	Liked bool `json:"liked"`
}

// ToggleVideo likes or unlikes a video.
func (h *LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, "videoId", models.LikeTargetVideo, func(ctx context.Context, id primitive.ObjectID) error {
		_, err := h.Videos.FindByID(ctx, id)
		return err
	})
}

// ToggleComment likes or unlikes a comment.
func (h *LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, "commentId", models.LikeTargetComment, func(ctx context.Context, id primitive.ObjectID) error {
		_, err := h.Comments.FindByID(ctx, id)
		return err
	})
}

// ToggleTweet likes or unlikes a tweet.
func (h *LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, "tweetId", models.LikeTargetTweet, func(ctx context.Context, id primitive.ObjectID) error {
		_, err := h.Tweets.FindByID(ctx, id)
		return err
	})
}

func (h *LikeHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	targetKind string,
	exists func(ctx context.Context, id primitive.ObjectID) error,
) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, param)
	if err != nil {
		return err
	}

	if err := exists(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(targetKind + " not found")
		}
		return err
	}

	liked, err := h.Likes.Toggle(ctx, user.ID, targetKind, id)
	if err != nil {
		return err
	}

	message := targetKind + " unliked successfully"
	if liked {
		message = targetKind + " liked successfully"
	}
	return respond(w, r, http.StatusOK, message, toggleResponse{Liked: liked})
}

// LikedVideos lists every video the caller has liked.
func (h *LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) error {
	user, _ := CurrentUser(r.Context())

	videos, err := h.Likes.LikedVideos(r.Context(), user.ID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "liked videos fetched successfully", videos)
}
