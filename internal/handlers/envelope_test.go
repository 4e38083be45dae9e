package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidtube/backend/internal/repositories"
)

func TestErrorConversion(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "tagged invalid argument",
			err:         invalidArgument("title is required"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "title is required",
		},
		{
			name:        "tagged forbidden",
			err:         forbidden("you do not own this video"),
			wantStatus:  http.StatusForbidden,
			wantMessage: "you do not own this video",
		},
		{
			name:        "bare repository not found",
			err:         repositories.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "resource not found",
		},
		{
			name:        "bare repository conflict",
			err:         repositories.ErrConflict,
			wantStatus:  http.StatusConflict,
			wantMessage: "resource already exists",
		},
		{
			name:        "unexpected error stays generic",
			err:         errors.New("pq: connection reset by peer"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "something went wrong, please try again later",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handle(func(http.ResponseWriter, *http.Request) error {
				return tc.err
			}).ServeHTTP(rec, req)

			got := wantStatus(t, rec, tc.wantStatus)
			if got.Message != tc.wantMessage {
				t.Fatalf("expected message %q, got %q", tc.wantMessage, got.Message)
			}
			if got.Errors == nil {
				t.Fatal("errors array must be present, not null")
			}
		})
	}
}

func TestErrorDetailsSerialized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handle(func(http.ResponseWriter, *http.Request) error {
		return invalidArgument("all fields are required", "username is required", "email is required")
	}).ServeHTTP(rec, req)

	got := wantStatus(t, rec, http.StatusBadRequest)
	if len(got.Errors) != 2 {
		t.Fatalf("expected 2 detail entries, got %v", got.Errors)
	}
}

func TestInternalCauseNotLeaked(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handle(func(http.ResponseWriter, *http.Request) error {
		return internalError("failed to store avatar", errors.New("s3 bucket policy denied"))
	}).ServeHTTP(rec, req)

	got := wantStatus(t, rec, http.StatusInternalServerError)
	if got.Message != "failed to store avatar" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	if body := rec.Body.String(); strings.Contains(body, "bucket policy") {
		t.Fatalf("internal cause leaked into response: %s", body)
	}
}
