package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// TweetHandler serves the short text post endpoints.
type TweetHandler struct {
	Tweets           TweetStore
	Users            UserStore
	EnforceOwnership bool
	Now              func() time.Time
}

func (h *TweetHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// Create posts a tweet.
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return invalidArgument("content is required")
	}

	now := h.now()
	tweet, err := h.Tweets.Create(ctx, models.Tweet{
		Content:   content,
		Owner:     user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusCreated, "tweet created successfully", models.TweetWithOwner{
		Tweet: tweet,
		Owner: user.Summary(),
	})
}

// ListForUser returns a user's tweets, newest first.
func (h *TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := pathID(r, "userId")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("user not found")
		}
		return err
	}

	tweets, err := h.Tweets.ListForUser(ctx, userID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "tweets fetched successfully", tweets)
}

// Update edits a tweet's content.
func (h *TweetHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "tweetId")
	if err != nil {
		return err
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return invalidArgument("content is required")
	}

	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("tweet not found")
		}
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, tweet.Owner, "tweet"); err != nil {
		return err
	}

	updated, err := h.Tweets.UpdateContent(ctx, id, content)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "tweet updated successfully", updated)
}

// Delete removes a tweet.
func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "tweetId")
	if err != nil {
		return err
	}

	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("tweet not found")
		}
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, tweet.Owner, "tweet"); err != nil {
		return err
	}

	if err := h.Tweets.Delete(ctx, id); err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "tweet deleted successfully", nil)
}
