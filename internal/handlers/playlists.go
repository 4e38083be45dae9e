package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// PlaylistHandler serves the playlist endpoints.
type PlaylistHandler struct {
	Playlists        PlaylistStore
	Videos           VideoStore
	EnforceOwnership bool
	Now              func() time.Time
}

func (h *PlaylistHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// Create makes an empty playlist. Names are unique per owner.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	name := strings.TrimSpace(body.Name)
	description := strings.TrimSpace(body.Description)
	if name == "" || description == "" {
		return invalidArgument("name and description are required")
	}

	now := h.now()
	playlist, err := h.Playlists.Create(ctx, models.Playlist{
		Name:        name,
		Description: description,
		Owner:       user.ID,
		Videos:      []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("a playlist with this name already exists")
		}
		return err
	}

	return respond(w, r, http.StatusCreated, "playlist created successfully", playlist)
}

// Get fetches a playlist with its videos populated.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "playlistId")
	if err != nil {
		return err
	}

	playlist, err := h.Playlists.FindWithVideos(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("playlist not found")
		}
		return err
	}

	return respond(w, r, http.StatusOK, "playlist fetched successfully", playlist)
}

// ListForUser returns all playlists owned by a user.
func (h *PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) error {
	owner, err := pathID(r, "userId")
	if err != nil {
		return err
	}

	playlists, err := h.Playlists.ListForUser(r.Context(), owner)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "playlists fetched successfully", playlists)
}

// Update renames or re-describes a playlist.
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "playlistId")
	if err != nil {
		return err
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	name := strings.TrimSpace(body.Name)
	description := strings.TrimSpace(body.Description)
	if name == "" || description == "" {
		return invalidArgument("name and description are required")
	}

	if err := h.authorize(ctx, user, id); err != nil {
		return err
	}

	updated, err := h.Playlists.UpdateDetails(ctx, id, name, description)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("a playlist with this name already exists")
		}
		return err
	}

	return respond(w, r, http.StatusOK, "playlist updated successfully", updated)
}

// Delete removes a playlist. The videos it references are untouched.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "playlistId")
	if err != nil {
		return err
	}

	if err := h.authorize(ctx, user, id); err != nil {
		return err
	}

	if err := h.Playlists.Delete(ctx, id); err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "playlist deleted successfully", nil)
}

// AddVideo appends a video to a playlist. Re-adding is a no-op.
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) error {
	return h.changeVideos(w, r, h.Playlists.AddVideo, "video added to playlist")
}

// RemoveVideo drops a video from a playlist.
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) error {
	return h.changeVideos(w, r, h.Playlists.RemoveVideo, "video removed from playlist")
}

func (h *PlaylistHandler) changeVideos(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, id, videoID primitive.ObjectID) error,
	message string,
) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "playlistId")
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	if err := h.authorize(ctx, user, id); err != nil {
		return err
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("video not found")
		}
		return err
	}

	if err := change(ctx, id, videoID); err != nil {
		return err
	}

	playlist, err := h.Playlists.FindWithVideos(ctx, id)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, message, playlist)
}

func (h *PlaylistHandler) authorize(ctx context.Context, user models.User, id primitive.ObjectID) error {
	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("playlist not found")
		}
		return err
	}
	return requireOwner(h.EnforceOwnership, user.ID, playlist.Owner, "playlist")
}
