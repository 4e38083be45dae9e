package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
)

// DashboardHandler serves the channel owner's stats and video listing.
type DashboardHandler struct {
	Videos        VideoStore
	Subscriptions SubscriptionStore
	Likes         LikeStore
}

// Stats aggregates the caller's channel counters.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	totalVideos, err := h.Videos.CountForOwner(ctx, user.ID)
	if err != nil {
		return err
	}
	totalViews, err := h.Videos.TotalViewsForOwner(ctx, user.ID)
	if err != nil {
		return err
	}
	totalSubscribers, err := h.Subscriptions.CountForChannel(ctx, user.ID)
	if err != nil {
		return err
	}
	totalLikes, err := h.Likes.CountForVideoOwner(ctx, user.ID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "channel stats fetched successfully", models.ChannelStats{
		TotalVideos:      totalVideos,
		TotalViews:       totalViews,
		TotalSubscribers: totalSubscribers,
		TotalLikes:       totalLikes,
	})
}

// ChannelVideos lists every video the caller has uploaded, drafts included.
func (h *DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	videos, err := h.Videos.ListForOwner(ctx, user.ID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "channel videos fetched successfully", videos)
}
