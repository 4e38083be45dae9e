package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"

	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pathID parses the named chi URL parameter as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, invalidArgument("invalid " + name)
	}
	return id, nil
}

// pagination reads and clamps the page/limit query parameters.
func pagination(r *http.Request) (page, limit int64) {
	page = defaultPage
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed >= 1 {
			page = parsed
		}
	}

	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed >= 1 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   secure,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   secure,
	})
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
		})
	}
}

// uploadSaver spools multipart file parts to a temp directory so that media
// collaborators can work from a local path.
type uploadSaver struct {
	tempDir  string
	maxBytes int64
}

// save writes the named multipart part to a temp file and returns its path.
// An absent part returns "" with no error; required parts are the caller's
// check. The caller owns the returned file.
func (u uploadSaver) save(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", invalidArgument("invalid file upload for " + field)
	}
	defer file.Close()

	if u.maxBytes > 0 && header.Size > u.maxBytes {
		return "", invalidArgument(field + " exceeds the maximum upload size")
	}

	return u.spool(file, header)
}

func (u uploadSaver) spool(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	temp, err := os.CreateTemp(u.tempDir, "upload-*"+ext)
	if err != nil {
		return "", internalError("failed to stage upload", err)
	}

	if _, err := io.Copy(temp, file); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return "", internalError("failed to stage upload", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return "", internalError("failed to stage upload", err)
	}

	return temp.Name(), nil
}

// discardTemp removes a staged upload that never reached storage.
func discardTemp(path string) {
	if path != "" {
		os.Remove(path)
	}
}

// requireOwner rejects writes against resources the caller does not own.
// Enforcement can be switched off for single-tenant deployments.
func requireOwner(enforce bool, userID, ownerID primitive.ObjectID, resource string) error {
	if !enforce || userID == ownerID {
		return nil
	}
	return forbidden("you do not own this " + resource)
}

// releaseAsset deletes a stored asset without surfacing failures to the
// client; an orphaned object costs storage, not correctness.
func releaseAsset(ctx context.Context, media MediaStorage, assetURL string) {
	if assetURL == "" {
		return
	}
	if err := media.Delete(ctx, assetURL); err != nil {
		logging.FromContext(ctx).Warn("failed to delete stored asset", "url", assetURL, "error", err)
	}
}
