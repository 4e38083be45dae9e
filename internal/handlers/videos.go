package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// VideoHandler serves video publishing, listing and management endpoints.
type VideoHandler struct {
	Videos           VideoStore
	Users            UserStore
	Media            MediaStorage
	Prober           DurationProber
	Uploads          uploadSaver
	EnforceOwnership bool
	Now              func() time.Time
}

func (h *VideoHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

type videoListResponse struct {
	Total  int64                   `json:"total"`
	Page   int64                   `json:"page"`
	Limit  int64                   `json:"limit"`
	Videos []models.VideoWithOwner `json:"videos"`
}

// List returns one page of videos. Anonymous callers only see published ones.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) error {
	_, signedIn := CurrentUser(r.Context())
	page, limit := pagination(r)

	query := r.URL.Query()
	videos, total, err := h.Videos.List(r.Context(), repositories.ListVideosParams{
		Query:         strings.TrimSpace(query.Get("query")),
		SortBy:        query.Get("sortBy"),
		SortAscending: query.Get("sortType") == "asc",
		Page:          page,
		Limit:         limit,
		PublishedOnly: !signedIn,
	})
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "videos fetched successfully", videoListResponse{
		Total:  total,
		Page:   page,
		Limit:  limit,
		Videos: videos,
	})
}

// Publish uploads a new video with its thumbnail and creates the published
// record. The duration is probed from the file before it leaves the host; if
// probing fails the video still publishes with a zero duration.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		return invalidArgument("title and description are required")
	}

	ctx, span := logging.StartSpan(ctx, "video.publish")
	defer span.End()

	videoPath, err := h.Uploads.save(r, "videoFile")
	if err != nil {
		return err
	}
	if videoPath == "" {
		return invalidArgument("videoFile is required")
	}

	thumbPath, err := h.Uploads.save(r, "thumbnail")
	if err != nil {
		discardTemp(videoPath)
		return err
	}
	if thumbPath == "" {
		discardTemp(videoPath)
		return invalidArgument("thumbnail is required")
	}

	duration, err := h.Prober.Duration(ctx, videoPath)
	if err != nil {
		logging.FromContext(ctx).Warn("failed to probe video duration", "error", err)
		duration = 0
	}

	videoURL, err := h.Media.Upload(ctx, videoPath)
	if err != nil {
		discardTemp(thumbPath)
		return internalError("failed to store video file", err)
	}

	thumbURL, err := h.Media.Upload(ctx, thumbPath)
	if err != nil {
		releaseAsset(ctx, h.Media, videoURL)
		return internalError("failed to store thumbnail", err)
	}

	now := h.now()
	video, err := h.Videos.Create(ctx, models.Video{
		Title:       title,
		Description: description,
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Duration:    duration,
		IsPublished: true,
		Owner:       user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		releaseAsset(ctx, h.Media, videoURL)
		releaseAsset(ctx, h.Media, thumbURL)
		return internalError("failed to create video", err)
	}

	return respond(w, r, http.StatusCreated, "video published successfully", models.VideoWithOwner{
		Video: video,
		Owner: user.Summary(),
	})
}

// Get fetches one video. Drafts stay hidden from everyone but their owner.
// Views are counted and, for signed-in callers, watch history is recorded.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	id, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	video, err := h.Videos.FindWithOwner(ctx, id)
	if err != nil {
		return err
	}

	viewer, signedIn := CurrentUser(ctx)
	if !video.IsPublished && (!signedIn || viewer.ID != video.Video.Owner) {
		return notFound("video not found")
	}

	logger := logging.FromContext(ctx)
	if err := h.Videos.IncrementViews(ctx, id); err != nil {
		logger.Warn("failed to increment views", "video", id.Hex(), "error", err)
	} else {
		video.Views++
	}

	if signedIn {
		if err := h.Users.RecordWatch(ctx, viewer.ID, id); err != nil {
			logger.Warn("failed to record watch history", "video", id.Hex(), "error", err)
		}
	}

	return respond(w, r, http.StatusOK, "video fetched successfully", video)
}

// Update changes the title, description and optionally the thumbnail.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		return invalidArgument("title and description are required")
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, video.Owner, "video"); err != nil {
		return err
	}

	var thumbURL string
	thumbPath, err := h.Uploads.save(r, "thumbnail")
	if err != nil {
		return err
	}
	if thumbPath != "" {
		thumbURL, err = h.Media.Upload(ctx, thumbPath)
		if err != nil {
			return internalError("failed to store thumbnail", err)
		}
	}

	updated, err := h.Videos.UpdateDetails(ctx, id, title, description, thumbURL)
	if err != nil {
		releaseAsset(ctx, h.Media, thumbURL)
		return err
	}

	if thumbURL != "" {
		releaseAsset(ctx, h.Media, video.Thumbnail)
	}

	return respond(w, r, http.StatusOK, "video updated successfully", updated)
}

// Delete removes the video record and its stored assets. Comments and likes
// referencing the video are left behind.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, video.Owner, "video"); err != nil {
		return err
	}

	deleted, err := h.Videos.Delete(ctx, id)
	if err != nil {
		return err
	}

	releaseAsset(ctx, h.Media, deleted.VideoFile)
	releaseAsset(ctx, h.Media, deleted.Thumbnail)

	return respond(w, r, http.StatusOK, "video deleted successfully", nil)
}

// TogglePublish flips the draft/published state.
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	id, err := pathID(r, "videoId")
	if err != nil {
		return err
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(h.EnforceOwnership, user.ID, video.Owner, "video"); err != nil {
		return err
	}

	updated, err := h.Videos.TogglePublish(ctx, id)
	if err != nil {
		return err
	}

	message := "video unpublished successfully"
	if updated.IsPublished {
		message = "video published successfully"
	}
	return respond(w, r, http.StatusOK, message, updated)
}
