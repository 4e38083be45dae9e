package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
)

const testPassword = "correct-horse-battery"

type testEnv struct {
	router    http.Handler
	users     *fakeUserStore
	videos    *fakeVideoStore
	comments  *fakeCommentStore
	likes     *fakeLikeStore
	subs      *fakeSubscriptionStore
	playlists *fakePlaylistStore
	tweets    *fakeTweetStore
	media     *fakeMedia
	tokens    *auth.TokenManager
	staticDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserStore()
	videos := newFakeVideoStore(users)
	comments := newFakeCommentStore(users)
	likes := newFakeLikeStore(videos)
	subs := newFakeSubscriptionStore(users)
	playlists := newFakePlaylistStore(videos)
	tweets := newFakeTweetStore(users)
	media := &fakeMedia{}
	tokens := auth.NewTokenManager("vidtube-test", "access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)

	staticDir := t.TempDir()
	cfg := config.Config{
		CORSOrigin:       "*",
		SecureCookies:    false,
		EnforceOwnership: true,
		UploadTempDir:    t.TempDir(),
		MaxUploadBytes:   10 << 20,
		StaticDir:        staticDir,
	}

	router := NewRouter(Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,

		Users:         users,
		Videos:        videos,
		Comments:      comments,
		Likes:         likes,
		Subscriptions: subs,
		Playlists:     playlists,
		Tweets:        tweets,

		Tokens: tokens,
		Media:  media,
		Prober: fakeProber{duration: 42.5},
		DB:     fakePinger{},

		Started: time.Now().UTC(),
	})

	return &testEnv{
		router:    router,
		users:     users,
		videos:    videos,
		comments:  comments,
		likes:     likes,
		subs:      subs,
		playlists: playlists,
		tweets:    tweets,
		media:     media,
		tokens:    tokens,
		staticDir: staticDir,
	}
}

func (e *testEnv) addUser(t *testing.T, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	user, err := e.users.Create(t.Context(), models.User{
		Username:  username,
		Email:     username + "@example.com",
		FullName:  "Test " + username,
		Avatar:    "https://cdn.test/" + username + "-avatar",
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) accessToken(t *testing.T, user models.User) string {
	t.Helper()
	pair, err := e.tokens.IssuePair(user.ID.Hex())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return pair.AccessToken
}

func (e *testEnv) addVideo(t *testing.T, owner models.User, title string, published bool) models.Video {
	t.Helper()
	now := time.Now().UTC()
	video, err := e.videos.Create(t.Context(), models.Video{
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.test/" + title + ".mp4",
		Thumbnail:   "https://cdn.test/" + title + ".jpg",
		Duration:    120,
		IsPublished: published,
		Owner:       owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create video %s: %v", title, err)
	}
	return video
}

// request performs a JSON request against the router. An empty token leaves
// the request anonymous.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds a multipart form request with text fields and named
// file parts holding small placeholder content.
func (e *testEnv) multipartRequest(t *testing.T, method, path, token string, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file part %s: %v", field, err)
		}
		if _, err := part.Write([]byte("binary-placeholder")); err != nil {
			t.Fatalf("write file part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	if env.StatusCode != rec.Code {
		t.Fatalf("envelope statusCode %d does not match HTTP status %d", env.StatusCode, rec.Code)
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode envelope data %q: %v", string(env.Data), err)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success != (status < 400) {
		t.Fatalf("success flag %v inconsistent with status %d", env.Success, status)
	}
	return env
}
