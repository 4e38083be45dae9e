package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const minPasswordLength = 8

// UserHandler serves account lifecycle, session and channel endpoints.
type UserHandler struct {
	Users         UserStore
	Tokens        SessionTokenManager
	Media         MediaStorage
	Uploads       uploadSaver
	SecureCookies bool
	Now           func() time.Time
}

func (h *UserHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// sessionResponse is the login/refresh payload: the account plus both tokens.
type sessionResponse struct {
	User models.User `json:"user"`
	models.SessionTokens
}

// Register creates an account from a multipart form carrying the profile
// fields, a required avatar and an optional cover image.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	var missing []string
	for field, value := range map[string]string{
		"fullName": fullName,
		"username": username,
		"email":    email,
		"password": password,
	} {
		if value == "" {
			missing = append(missing, field+" is required")
		}
	}
	if len(missing) > 0 {
		return invalidArgument("all fields are required", missing...)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalidArgument("email address is not valid")
	}
	if len(password) < minPasswordLength {
		return invalidArgument("password must be at least 8 characters")
	}

	_, err := h.Users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return conflict("user with this email or username already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return internalError("failed to check existing users", err)
	}

	ctx, span := logging.StartSpan(ctx, "user.register")
	defer span.End()

	avatarPath, err := h.Uploads.save(r, "avatar")
	if err != nil {
		return err
	}
	if avatarPath == "" {
		return invalidArgument("avatar file is required")
	}

	coverPath, err := h.Uploads.save(r, "coverImage")
	if err != nil {
		discardTemp(avatarPath)
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		discardTemp(avatarPath)
		discardTemp(coverPath)
		return internalError("failed to hash password", err)
	}

	avatarURL, err := h.Media.Upload(ctx, avatarPath)
	if err != nil {
		discardTemp(coverPath)
		return internalError("failed to store avatar", err)
	}

	var coverURL string
	if coverPath != "" {
		coverURL, err = h.Media.Upload(ctx, coverPath)
		if err != nil {
			releaseAsset(ctx, h.Media, avatarURL)
			return internalError("failed to store cover image", err)
		}
	}

	now := h.now()
	user, err := h.Users.Create(ctx, models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   string(hash),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		releaseAsset(ctx, h.Media, avatarURL)
		releaseAsset(ctx, h.Media, coverURL)
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("user with this email or username already exists")
		}
		return internalError("failed to create user", err)
	}

	return respond(w, r, http.StatusCreated, "user registered successfully", user)
}

// Login verifies credentials and opens a session, setting the token cookies
// and returning both tokens in the body for non-browser clients.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	username := strings.ToLower(strings.TrimSpace(body.Username))
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if username == "" && email == "" {
		return invalidArgument("username or email is required")
	}

	user, err := h.Users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("user does not exist")
		}
		return internalError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		return unauthorized("invalid user credentials")
	}

	tokens, err := h.Tokens.IssuePair(user.ID.Hex())
	if err != nil {
		return internalError("failed to issue session tokens", err)
	}
	if err := h.Users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return internalError("failed to persist refresh token", err)
	}

	user.RefreshToken = tokens.RefreshToken
	setSessionCookies(w, tokens, h.SecureCookies)

	return respond(w, r, http.StatusOK, "user logged in successfully", sessionResponse{
		User:          user,
		SessionTokens: tokens,
	})
}

// Logout invalidates the stored refresh token. The cookies are cleared on
// every exit path so a browser session ends even if the store write fails.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	user, _ := CurrentUser(r.Context())

	clearSessionCookies(w, h.SecureCookies)

	if err := h.Users.ClearRefreshToken(r.Context(), user.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return internalError("failed to clear refresh token", err)
	}

	return respond(w, r, http.StatusOK, "user logged out successfully", nil)
}

// Refresh rotates the session: the presented refresh token must exactly match
// the stored one, and a fresh pair replaces it. A reused token from before a
// rotation is rejected.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		// body is optional here; cookie-less clients send the token in JSON
		_ = decodeBody(r, &body)
		token = body.RefreshToken
	}
	if token == "" {
		return unauthorized("refresh token is required")
	}

	subject, err := h.Tokens.VerifyRefresh(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return unauthorized("refresh token expired")
		}
		return unauthorized("invalid refresh token")
	}

	userID, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return unauthorized("invalid refresh token")
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return unauthorized("user no longer exists")
		}
		return internalError("failed to load user", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != token {
		return unauthorized("refresh token is expired or already used")
	}

	tokens, err := h.Tokens.IssuePair(user.ID.Hex())
	if err != nil {
		return internalError("failed to issue session tokens", err)
	}
	if err := h.Users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return internalError("failed to persist refresh token", err)
	}

	setSessionCookies(w, tokens, h.SecureCookies)

	return respond(w, r, http.StatusOK, "access token refreshed", tokens)
}

// ChangePassword verifies the current password before storing a new hash.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	user, _ := CurrentUser(r.Context())

	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if body.OldPassword == "" || body.NewPassword == "" {
		return invalidArgument("old and new passwords are required")
	}
	if len(body.NewPassword) < minPasswordLength {
		return invalidArgument("password must be at least 8 characters")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.OldPassword)); err != nil {
		return invalidArgument("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError("failed to hash password", err)
	}
	if err := h.Users.UpdatePassword(r.Context(), user.ID, string(hash)); err != nil {
		return internalError("failed to update password", err)
	}

	return respond(w, r, http.StatusOK, "password changed successfully", nil)
}

// Me returns the authenticated account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) error {
	user, _ := CurrentUser(r.Context())
	return respond(w, r, http.StatusOK, "current user fetched successfully", user)
}

// UpdateAccount changes the mutable profile fields.
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	user, _ := CurrentUser(r.Context())

	var body struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	fullName := strings.TrimSpace(body.FullName)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if fullName == "" || email == "" {
		return invalidArgument("fullName and email are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalidArgument("email address is not valid")
	}

	updated, err := h.Users.UpdateDetails(r.Context(), user.ID, fullName, email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return conflict("email already in use")
		}
		return err
	}

	return respond(w, r, http.StatusOK, "account details updated successfully", updated)
}

// UpdateAvatar replaces the avatar asset, deleting the previous one after the
// record points at the new URL.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.updateImage(w, r, "avatar", h.Users.UpdateAvatar, func(u models.User) string { return u.Avatar })
}

// UpdateCoverImage replaces the cover image asset.
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.updateImage(w, r, "coverImage", h.Users.UpdateCoverImage, func(u models.User) string { return u.CoverImage })
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, id primitive.ObjectID, url string) (models.User, error),
	current func(models.User) string,
) error {
	ctx := r.Context()
	user, _ := CurrentUser(ctx)

	path, err := h.Uploads.save(r, field)
	if err != nil {
		return err
	}
	if path == "" {
		return invalidArgument(field + " file is required")
	}

	url, err := h.Media.Upload(ctx, path)
	if err != nil {
		return internalError("failed to store "+field, err)
	}

	updated, err := update(ctx, user.ID, url)
	if err != nil {
		releaseAsset(ctx, h.Media, url)
		return err
	}

	releaseAsset(ctx, h.Media, current(user))

	return respond(w, r, http.StatusOK, field+" updated successfully", updated)
}

// Channel returns the aggregated public profile for a username.
func (h *UserHandler) Channel(w http.ResponseWriter, r *http.Request) error {
	viewer, _ := CurrentUser(r.Context())

	username := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
	if username == "" {
		return invalidArgument("username is required")
	}

	profile, err := h.Users.ChannelProfile(r.Context(), username, viewer.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("channel does not exist")
		}
		return err
	}

	return respond(w, r, http.StatusOK, "channel profile fetched successfully", profile)
}

// History returns the viewer's watch history, most recent last.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) error {
	user, _ := CurrentUser(r.Context())

	history, err := h.Users.WatchHistory(r.Context(), user.ID)
	if err != nil {
		return err
	}

	return respond(w, r, http.StatusOK, "watch history fetched successfully", history)
}
