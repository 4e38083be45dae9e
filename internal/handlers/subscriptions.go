package handlers

import (
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// SubscriptionHandler serves the channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

type subscribeResponse struct {
	Subscribed bool `json:"subscribed"`
}

type subscriberListResponse struct {
	Total       int                  `json:"total"`
	Subscribers []models.UserSummary `json:"subscribers"`
}

type channelListResponse struct {
	Total    int                  `json:"total"`
	Channels []models.UserSummary `json:"channels"`
}

// Toggle subscribes the caller to a channel or removes the subscription.
// Subscribing to your own channel is rejected.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	channelID, err := pathID(r, "channelId")
	if err != nil {
		return err
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("channel not found")
		}
		return err
	}
	if channelID == user.ID {
		return invalidArgument("you cannot subscribe to your own channel")
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		return err
	}

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}
	return respond(w, r, http.StatusOK, message, subscribeResponse{Subscribed: subscribed})
}

// Subscribers lists the users subscribed to a channel.
func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	channelID, err := pathID(r, "channelId")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("channel not found")
		}
		return err
	}

	subscribers, err := h.Subscriptions.Subscribers(ctx, channelID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "subscribers fetched successfully", subscriberListResponse{
		Total:       len(subscribers),
		Subscribers: subscribers,
	})
}

// SubscribedChannels lists the channels a user is subscribed to.
func (h *SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("user not found")
		}
		return err
	}

	channels, err := h.Subscriptions.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "subscribed channels fetched successfully", channelListResponse{
		Total:    len(channels),
		Channels: channels,
	})
}
