package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// CommentHandler serves the comment endpoints for videos.
type CommentHandler struct {
	Comments         CommentStore
	Videos           VideoStore
	EnforceOwnership bool
	Now              func() time.Time
}

func (h *CommentHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

type commentListResponse struct {
	Total    int64                     `json:"total"`
	Page     int64                     `json:"page"`
	Limit    int64                     `json:"limit"`
	Comments []models.CommentWithOwner `json:"comments"`
}

// List returns one page of a video's comments, newest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("video not found")
		}
		return err
	}

	page, limit := pagination(r)
	comments, total, err := h.Comments.ListForVideo(ctx, videoID, page, limit)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "comments fetched successfully", commentListResponse{
		Total:    total,
		Page:     page,
		Limit:    limit,
		Comments: comments,
	})
}

// Add posts a comment on a video.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	videoID, err := pathID(r, "videoId")
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

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("video not found")
		}
		return err
	}

	now := h.now()
	comment, err := h.Comments.Create(ctx, models.Comment{
		Content:   content,
		Video:     videoID,
		Owner:     user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusCreated, "comment added successfully", models.CommentWithOwner{
		Comment: comment,
		Owner:   user.Summary(),
	})
}

// Update edits a comment's content.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "commentId")
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

	comment, err := h.Comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("comment not found")
		}
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, comment.Owner, "comment"); err != nil {
		return err
	}

	updated, err := h.Comments.UpdateContent(ctx, id, content)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "comment updated successfully", updated)
}

// Delete removes a comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "commentId")
	if err != nil {
		return err
	}

	comment, err := h.Comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("comment not found")
		}
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, comment.Owner, "comment"); err != nil {
		return err
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "comment deleted successfully", nil)
}
