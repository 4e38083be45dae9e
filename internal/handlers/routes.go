package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/middleware"
)

// Dependencies carries everything the router needs. Stores are interfaces so
// tests can swap in fakes.
type Dependencies struct {
	Logger *slog.Logger
	Config config.Config

	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Tweets        TweetStore

	Tokens SessionTokenManager
	Media  MediaStorage
	Prober DurationProber
	DB     HealthPinger

	Started time.Time
}

// NewRouter assembles the full API surface under /api/v1.
func NewRouter(deps Dependencies) *chi.Mux {
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	guard := Guard{Users: deps.Users, Tokens: deps.Tokens}
	uploads := uploadSaver{tempDir: cfg.UploadTempDir, maxBytes: cfg.MaxUploadBytes}

	users := &UserHandler{
		Users:         deps.Users,
		Tokens:        deps.Tokens,
		Media:         deps.Media,
		Uploads:       uploads,
		SecureCookies: cfg.SecureCookies,
	}
	videos := &VideoHandler{
		Videos:           deps.Videos,
		Users:            deps.Users,
		Media:            deps.Media,
		Prober:           deps.Prober,
		Uploads:          uploads,
		EnforceOwnership: cfg.EnforceOwnership,
	}
	comments := &CommentHandler{
		Comments:         deps.Comments,
		Videos:           deps.Videos,
		EnforceOwnership: cfg.EnforceOwnership,
	}
	likes := &LikeHandler{
		Likes:    deps.Likes,
		Videos:   deps.Videos,
		Comments: deps.Comments,
		Tweets:   deps.Tweets,
	}
	subscriptions := &SubscriptionHandler{
		Subscriptions: deps.Subscriptions,
		Users:         deps.Users,
	}
	playlists := &PlaylistHandler{
		Playlists:        deps.Playlists,
		Videos:           deps.Videos,
		EnforceOwnership: cfg.EnforceOwnership,
	}
	tweets := &TweetHandler{
		Tweets:           deps.Tweets,
		Users:            deps.Users,
		EnforceOwnership: cfg.EnforceOwnership,
	}
	dashboard := &DashboardHandler{
		Videos:        deps.Videos,
		Subscriptions: deps.Subscriptions,
		Likes:         deps.Likes,
	}
	health := &HealthHandler{DB: deps.DB, Started: deps.Started}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", handle(health.Check))

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", handle(users.Register))
			r.Post("/login", handle(users.Login))
			r.Post("/refresh-token", handle(users.Refresh))

			r.Group(func(r chi.Router) {
				r.Use(guard.Require)
				r.Post("/logout", handle(users.Logout))
				r.Post("/change-password", handle(users.ChangePassword))
				r.Get("/current-user", handle(users.Me))
				r.Patch("/update-account", handle(users.UpdateAccount))
				r.Patch("/avatar", handle(users.UpdateAvatar))
				r.Patch("/cover-image", handle(users.UpdateCoverImage))
				r.Get("/c/{username}", handle(users.Channel))
				r.Get("/history", handle(users.History))
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(guard.Optional)
				r.Get("/", handle(videos.List))
				r.Get("/{videoId}", handle(videos.Get))
			})

			r.Group(func(r chi.Router) {
				r.Use(guard.Require)
				r.Post("/", handle(videos.Publish))
				r.Patch("/{videoId}", handle(videos.Update))
				r.Delete("/{videoId}", handle(videos.Delete))
				r.Patch("/toggle/publish/{videoId}", handle(videos.TogglePublish))
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(guard.Require)
			r.Get("/{videoId}", handle(comments.List))
			r.Post("/{videoId}", handle(comments.Add))
			r.Patch("/c/{commentId}", handle(comments.Update))
			r.Delete("/c/{commentId}", handle(comments.Delete))
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(guard.Require)
			r.Post("/toggle/v/{videoId}", handle(likes.ToggleVideo))
			r.Post("/toggle/c/{commentId}", handle(likes.ToggleComment))
			r.Post("/toggle/t/{tweetId}", handle(likes.ToggleTweet))
			r.Get("/videos", handle(likes.LikedVideos))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(guard.Require)
			r.Post("/c/{channelId}", handle(subscriptions.Toggle))
			r.Get("/c/{channelId}", handle(subscriptions.Subscribers))
			r.Get("/u/{subscriberId}", handle(subscriptions.SubscribedChannels))
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Use(guard.Require)
			r.Post("/", handle(playlists.Create))
			r.Get("/{playlistId}", handle(playlists.Get))
			r.Patch("/{playlistId}", handle(playlists.Update))
			r.Delete("/{playlistId}", handle(playlists.Delete))
			r.Patch("/add/{videoId}/{playlistId}", handle(playlists.AddVideo))
			r.Patch("/remove/{videoId}/{playlistId}", handle(playlists.RemoveVideo))
			r.Get("/user/{userId}", handle(playlists.ListForUser))
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Use(guard.Require)
			r.Post("/", handle(tweets.Create))
			r.Get("/user/{userId}", handle(tweets.ListForUser))
			r.Patch("/{tweetId}", handle(tweets.Update))
			r.Delete("/{tweetId}", handle(tweets.Delete))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(guard.Require)
			r.Get("/stats", handle(dashboard.Stats))
			r.Get("/videos", handle(dashboard.ChannelVideos))
		})
	})

	if cfg.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/public/*", http.StripPrefix("/public/", fileServer))
	}

	return r
}
