package repositories

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
)

func TestOrderPlaylistVideosRestoresInsertionOrder(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	third := primitive.NewObjectID()

	// Joined documents arrive in natural order, not the playlist's order.
	joined := []models.VideoWithOwner{
		{Video: models.Video{ID: third, Title: "third"}},
		{Video: models.Video{ID: first, Title: "first"}},
		{Video: models.Video{ID: second, Title: "second"}},
	}

	ordered := orderPlaylistVideos([]primitive.ObjectID{first, second, third}, joined)

	if len(ordered) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(ordered))
	}
	for i, want := range []string{"first", "second", "third"} {
		if ordered[i].Title != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, ordered[i].Title)
		}
	}
}

func TestOrderPlaylistVideosDropsDeletedVideos(t *testing.T) {
	kept := primitive.NewObjectID()
	deleted := primitive.NewObjectID()

	joined := []models.VideoWithOwner{
		{Video: models.Video{ID: kept, Title: "kept"}},
	}

	ordered := orderPlaylistVideos([]primitive.ObjectID{deleted, kept}, joined)

	if len(ordered) != 1 {
		t.Fatalf("expected 1 video, got %d", len(ordered))
	}
	if ordered[0].Title != "kept" {
		t.Fatalf("expected the surviving video, got %q", ordered[0].Title)
	}
}

func TestOrderPlaylistVideosEmptyPlaylist(t *testing.T) {
	ordered := orderPlaylistVideos(nil, nil)
	if ordered == nil || len(ordered) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", ordered)
	}
}
