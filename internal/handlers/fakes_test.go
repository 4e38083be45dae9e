package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// The fakes below mirror the MongoDB repositories closely enough for handler
// behavior: sentinel errors, natural-key uniqueness and join shapes all match.

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]models.User
	history map[primitive.ObjectID][]primitive.ObjectID
	videos  *fakeVideoStore
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[primitive.ObjectID]models.User),
		history: make(map[primitive.ObjectID][]primitive.ObjectID),
	}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.User{}, repositories.ErrConflict
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) update(id primitive.ObjectID, apply func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	apply(&user)
	s.users[id] = user
	return user, nil
}

func (s *fakeUserStore) UpdateDetails(_ context.Context, id primitive.ObjectID, fullName, email string) (models.User, error) {
	return s.update(id, func(u *models.User) {
		u.FullName = fullName
		u.Email = email
	})
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id primitive.ObjectID, url string) (models.User, error) {
	return s.update(id, func(u *models.User) { u.Avatar = url })
}

func (s *fakeUserStore) UpdateCoverImage(_ context.Context, id primitive.ObjectID, url string) (models.User, error) {
	return s.update(id, func(u *models.User) { u.CoverImage = url })
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.update(id, func(u *models.User) { u.Password = hash })
	return err
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	_, err := s.update(id, func(u *models.User) { u.RefreshToken = token })
	return err
}

func (s *fakeUserStore) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	_, err := s.update(id, func(u *models.User) { u.RefreshToken = "" })
	return err
}

func (s *fakeUserStore) RecordWatch(_ context.Context, id, videoID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	history := s.history[id]
	filtered := history[:0]
	for _, existing := range history {
		if existing != videoID {
			filtered = append(filtered, existing)
		}
	}
	s.history[id] = append(filtered, videoID)
	return nil
}

func (s *fakeUserStore) ChannelProfile(_ context.Context, username string, _ primitive.ObjectID) (models.ChannelProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return models.ChannelProfile{
				ID:       user.ID,
				Username: user.Username,
				Email:    user.Email,
				FullName: user.FullName,
				Avatar:   user.Avatar,
			}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (s *fakeUserStore) WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoWithOwner, error) {
	s.mu.Lock()
	if _, ok := s.users[id]; !ok {
		s.mu.Unlock()
		return nil, repositories.ErrNotFound
	}
	watched := append([]primitive.ObjectID(nil), s.history[id]...)
	s.mu.Unlock()

	history := []models.VideoWithOwner{}
	if s.videos == nil {
		return history, nil
	}
	for _, videoID := range watched {
		if video, err := s.videos.FindWithOwner(ctx, videoID); err == nil {
			history = append(history, video)
		}
	}
	return history, nil
}

type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[primitive.ObjectID]models.Video
	users  *fakeUserStore
}

func newFakeVideoStore(users *fakeUserStore) *fakeVideoStore {
	store := &fakeVideoStore{videos: make(map[primitive.ObjectID]models.Video), users: users}
	users.videos = store
	return store
}

func (s *fakeVideoStore) owner(id primitive.ObjectID) models.UserSummary {
	if user, ok := s.users.users[id]; ok {
		return user.Summary()
	}
	return models.UserSummary{ID: id}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	s.videos[video.ID] = video
	return video, nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) FindWithOwner(_ context.Context, id primitive.ObjectID) (models.VideoWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.VideoWithOwner{}, repositories.ErrNotFound
	}
	return models.VideoWithOwner{Video: video, Owner: s.owner(video.Owner)}, nil
}

func (s *fakeVideoStore) List(_ context.Context, params repositories.ListVideosParams) ([]models.VideoWithOwner, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Video
	for _, video := range s.videos {
		if params.PublishedOnly && !video.IsPublished {
			continue
		}
		if params.Query != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(params.Query)) {
			continue
		}
		matched = append(matched, video)
	}
	total := int64(len(matched))

	sort.Slice(matched, func(i, j int) bool {
		if params.SortAscending {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start := (params.Page - 1) * params.Limit
	if start > int64(len(matched)) {
		start = int64(len(matched))
	}
	end := start + params.Limit
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}

	page := []models.VideoWithOwner{}
	for _, video := range matched[start:end] {
		page = append(page, models.VideoWithOwner{Video: video, Owner: s.owner(video.Owner)})
	}
	return page, total, nil
}

func (s *fakeVideoStore) UpdateDetails(_ context.Context, id primitive.ObjectID, title, description, thumbnail string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.Title = title
	video.Description = description
	if thumbnail != "" {
		video.Thumbnail = thumbnail
	}
	s.videos[id] = video
	return video, nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id primitive.ObjectID) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	delete(s.videos, id)
	return video, nil
}

func (s *fakeVideoStore) TogglePublish(_ context.Context, id primitive.ObjectID) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[id] = video
	return video, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) ListForOwner(_ context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	videos := []models.Video{}
	for _, video := range s.videos {
		if video.Owner == owner {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].CreatedAt.After(videos[j].CreatedAt) })
	return videos, nil
}

func (s *fakeVideoStore) CountForOwner(_ context.Context, owner primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, video := range s.videos {
		if video.Owner == owner {
			count++
		}
	}
	return count, nil
}

func (s *fakeVideoStore) TotalViewsForOwner(_ context.Context, owner primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views int64
	for _, video := range s.videos {
		if video.Owner == owner {
			views += video.Views
		}
	}
	return views, nil
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]models.Comment
	users    *fakeUserStore
}

func newFakeCommentStore(users *fakeUserStore) *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[primitive.ObjectID]models.Comment), users: users}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	s.comments[comment.ID] = comment
	return comment, nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID primitive.ObjectID, page, limit int64) ([]models.CommentWithOwner, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Comment
	for _, comment := range s.comments {
		if comment.Video == videoID {
			matched = append(matched, comment)
		}
	}
	total := int64(len(matched))
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start := (page - 1) * limit
	if start > int64(len(matched)) {
		start = int64(len(matched))
	}
	end := start + limit
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}

	pageItems := []models.CommentWithOwner{}
	for _, comment := range matched[start:end] {
		owner := models.UserSummary{ID: comment.Owner}
		if user, ok := s.users.users[comment.Owner]; ok {
			owner = user.Summary()
		}
		pageItems = append(pageItems, models.CommentWithOwner{Comment: comment, Owner: owner})
	}
	return pageItems, total, nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type fakeLikeStore struct {
	mu     sync.Mutex
	likes  map[string]models.Like
	videos *fakeVideoStore
}

func newFakeLikeStore(videos *fakeVideoStore) *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]models.Like), videos: videos}
}

func likeKey(likedBy primitive.ObjectID, targetKind string, targetID primitive.ObjectID) string {
	return fmt.Sprintf("%s/%s/%s", likedBy.Hex(), targetKind, targetID.Hex())
}

func (s *fakeLikeStore) Toggle(_ context.Context, likedBy primitive.ObjectID, targetKind string, targetID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := likeKey(likedBy, targetKind, targetID)
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = models.Like{
		ID:         primitive.NewObjectID(),
		TargetKind: targetKind,
		TargetID:   targetID,
		LikedBy:    likedBy,
		CreatedAt:  time.Now().UTC(),
	}
	return true, nil
}

func (s *fakeLikeStore) LikedVideos(ctx context.Context, likedBy primitive.ObjectID) ([]models.VideoWithOwner, error) {
	s.mu.Lock()
	var targets []primitive.ObjectID
	for _, like := range s.likes {
		if like.LikedBy == likedBy && like.TargetKind == models.LikeTargetVideo {
			targets = append(targets, like.TargetID)
		}
	}
	s.mu.Unlock()

	videos := []models.VideoWithOwner{}
	for _, id := range targets {
		if video, err := s.videos.FindWithOwner(ctx, id); err == nil {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

func (s *fakeLikeStore) CountForVideoOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, like := range s.likes {
		if like.TargetKind != models.LikeTargetVideo {
			continue
		}
		if video, ok := s.videos.videos[like.TargetID]; ok && video.Owner == owner {
			count++
		}
	}
	return count, nil
}

type fakeSubscriptionStore struct {
	mu    sync.Mutex
	subs  map[string]models.Subscription
	users *fakeUserStore
}

func newFakeSubscriptionStore(users *fakeUserStore) *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]models.Subscription), users: users}
}

func subKey(subscriber, channel primitive.ObjectID) string {
	return subscriber.Hex() + "/" + channel.Hex()
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subKey(subscriber, channel)
	if _, ok := s.subs[key]; ok {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = models.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now().UTC(),
	}
	return true, nil
}

func (s *fakeSubscriptionStore) Subscribers(_ context.Context, channel primitive.ObjectID) ([]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribers := []models.UserSummary{}
	for _, sub := range s.subs {
		if sub.Channel == channel {
			if user, ok := s.users.users[sub.Subscriber]; ok {
				subscribers = append(subscribers, user.Summary())
			}
		}
	}
	return subscribers, nil
}

func (s *fakeSubscriptionStore) SubscribedChannels(_ context.Context, subscriber primitive.ObjectID) ([]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channels := []models.UserSummary{}
	for _, sub := range s.subs {
		if sub.Subscriber == subscriber {
			if user, ok := s.users.users[sub.Channel]; ok {
				channels = append(channels, user.Summary())
			}
		}
	}
	return channels, nil
}

func (s *fakeSubscriptionStore) CountForChannel(_ context.Context, channel primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, sub := range s.subs {
		if sub.Channel == channel {
			count++
		}
	}
	return count, nil
}

type fakePlaylistStore struct {
	mu        sync.Mutex
	playlists map[primitive.ObjectID]models.Playlist
	videos    *fakeVideoStore
}

func newFakePlaylistStore(videos *fakeVideoStore) *fakePlaylistStore {
	return &fakePlaylistStore{playlists: make(map[primitive.ObjectID]models.Playlist), videos: videos}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.playlists {
		if existing.Owner == playlist.Owner && existing.Name == playlist.Name {
			return models.Playlist{}, repositories.ErrConflict
		}
	}
	if playlist.ID.IsZero() {
		playlist.ID = primitive.NewObjectID()
	}
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	s.playlists[playlist.ID] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) populate(ctx context.Context, playlist models.Playlist) models.PlaylistWithVideos {
	videos := []models.VideoWithOwner{}
	for _, videoID := range playlist.Videos {
		if video, err := s.videos.FindWithOwner(ctx, videoID); err == nil {
			videos = append(videos, video)
		}
	}
	return models.PlaylistWithVideos{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       playlist.Owner,
		Videos:      videos,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}
}

func (s *fakePlaylistStore) FindWithVideos(ctx context.Context, id primitive.ObjectID) (models.PlaylistWithVideos, error) {
	s.mu.Lock()
	playlist, ok := s.playlists[id]
	s.mu.Unlock()
	if !ok {
		return models.PlaylistWithVideos{}, repositories.ErrNotFound
	}
	return s.populate(ctx, playlist), nil
}

func (s *fakePlaylistStore) ListForUser(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistWithVideos, error) {
	s.mu.Lock()
	var owned []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.Owner == owner {
			owned = append(owned, playlist)
		}
	}
	s.mu.Unlock()

	results := []models.PlaylistWithVideos{}
	for _, playlist := range owned {
		results = append(results, s.populate(ctx, playlist))
	}
	return results, nil
}

func (s *fakePlaylistStore) UpdateDetails(_ context.Context, id primitive.ObjectID, name, description string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	for _, existing := range s.playlists {
		if existing.ID != id && existing.Owner == playlist.Owner && existing.Name == name {
			return models.Playlist{}, repositories.ErrConflict
		}
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, id, videoID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range playlist.Videos {
		if existing == videoID {
			return nil
		}
	}
	playlist.Videos = append(playlist.Videos, videoID)
	s.playlists[id] = playlist
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, id, videoID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	filtered := playlist.Videos[:0]
	for _, existing := range playlist.Videos {
		if existing != videoID {
			filtered = append(filtered, existing)
		}
	}
	playlist.Videos = filtered
	s.playlists[id] = playlist
	return nil
}

type fakeTweetStore struct {
	mu     sync.Mutex
	tweets map[primitive.ObjectID]models.Tweet
	users  *fakeUserStore
}

func newFakeTweetStore(users *fakeUserStore) *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[primitive.ObjectID]models.Tweet), users: users}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tweet.ID.IsZero() {
		tweet.ID = primitive.NewObjectID()
	}
	s.tweets[tweet.ID] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) ListForUser(_ context.Context, owner primitive.ObjectID) ([]models.TweetWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweets := []models.TweetWithOwner{}
	for _, tweet := range s.tweets {
		if tweet.Owner != owner {
			continue
		}
		summary := models.UserSummary{ID: owner}
		if user, ok := s.users.users[owner]; ok {
			summary = user.Summary()
		}
		tweets = append(tweets, models.TweetWithOwner{Tweet: tweet, Owner: summary})
	}
	sort.Slice(tweets, func(i, j int) bool { return tweets[i].CreatedAt.After(tweets[j].CreatedAt) })
	return tweets, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

// fakeMedia records uploads and deletes without any remote calls. Uploads
// remove the local file the same way the real storage does.
type fakeMedia struct {
	mu       sync.Mutex
	uploads  int
	deleted  []string
	failNext bool
}

func (m *fakeMedia) Upload(_ context.Context, localPath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removeFile(localPath)
	if m.failNext {
		m.failNext = false
		return "", fmt.Errorf("upload failed")
	}
	m.uploads++
	return fmt.Sprintf("https://cdn.test/asset-%d", m.uploads), nil
}

func (m *fakeMedia) Delete(_ context.Context, assetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if assetURL != "" {
		m.deleted = append(m.deleted, assetURL)
	}
	return nil
}

func removeFile(path string) {
	_ = os.Remove(path)
}

type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Duration(context.Context, string) (float64, error) {
	return p.duration, p.err
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }
