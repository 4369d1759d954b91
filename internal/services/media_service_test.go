package services

import (
	"context"
	"errors"
	"testing"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	"github.com/eidan66/wedding-album-sub000/internal/redis"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMediaRepo struct {
	items     []media.Item
	createErr error
}

func (f *fakeMediaRepo) Create(_ context.Context, item *media.Item) error {
	if f.createErr != nil {
		return f.createErr
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeMediaRepo) GetByID(_ context.Context, id uuid.UUID) (media.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return media.Item{}, album_errors.ErrNotFound
}

func (f *fakeMediaRepo) List(_ context.Context, mediaType string, _, _ int) ([]media.Item, int64, error) {
	var out []media.Item
	for _, item := range f.items {
		if mediaType == "" || string(item.MediaType) == mediaType {
			out = append(out, item)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMediaRepo) Count(_ context.Context, mediaType string) (int64, error) {
	var n int64
	for _, item := range f.items {
		if mediaType == "" || string(item.MediaType) == mediaType {
			n++
		}
	}
	return n, nil
}

func (f *fakeMediaRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return album_errors.ErrNotFound
}

type fakeMediaCache struct {
	pages         map[string]*redis.MediaPage
	counts        map[string]int64
	invalidations int
	invalidateErr error
}

func newFakeMediaCache() *fakeMediaCache {
	return &fakeMediaCache{
		pages:  map[string]*redis.MediaPage{},
		counts: map[string]int64{},
	}
}

func (f *fakeMediaCache) GetMediaPage(_ context.Context, mediaType string, _, _ int) (*redis.MediaPage, error) {
	return f.pages[mediaType], nil
}

func (f *fakeMediaCache) SetMediaPage(_ context.Context, mediaType string, _, _ int, value *redis.MediaPage) error {
	f.pages[mediaType] = value
	return nil
}

func (f *fakeMediaCache) GetMediaCount(_ context.Context, mediaType string) (int64, bool, error) {
	count, ok := f.counts[mediaType]
	return count, ok, nil
}

func (f *fakeMediaCache) SetMediaCount(_ context.Context, mediaType string, count int64) error {
	f.counts[mediaType] = count
	return nil
}

func (f *fakeMediaCache) InvalidateMedia(_ context.Context) error {
	f.invalidations++
	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	f.pages = map[string]*redis.MediaPage{}
	f.counts = map[string]int64{}
	return nil
}

func TestRecordUploadDerivesTypeFromKey(t *testing.T) {
	repo := &fakeMediaRepo{}
	svc := NewMediaService(repo, newFakeMediaCache(), nil)

	tests := []struct {
		name string
		key  string
		want media.MediaType
	}{
		{"video key", "uploads/abc.mp4", media.TypeVideo},
		{"quicktime key", "uploads/abc.mov", media.TypeVideo},
		{"photo key", "uploads/abc.jpg", media.TypePhoto},
		{"unknown extension counts as photo", "uploads/abc.dat", media.TypePhoto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := svc.RecordUpload(context.Background(), RecordInput{
				MediaURL:     "https://cdn.example.com/" + tt.key,
				ObjectKey:    tt.key,
				UploaderName: "Dana",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.MediaType)
		})
	}
}

func TestRecordUploadFallsBackToURLForType(t *testing.T) {
	repo := &fakeMediaRepo{}
	svc := NewMediaService(repo, newFakeMediaCache(), nil)

	item, err := svc.RecordUpload(context.Background(), RecordInput{
		MediaURL: "https://cdn.example.com/uploads/abc.webm?sig=xyz",
	})
	require.NoError(t, err)
	assert.Equal(t, media.TypeVideo, item.MediaType, "type must come from the path, not the query string")
}

func TestRecordUploadRequiresURL(t *testing.T) {
	svc := NewMediaService(&fakeMediaRepo{}, newFakeMediaCache(), nil)
	_, err := svc.RecordUpload(context.Background(), RecordInput{})
	assert.ErrorIs(t, err, album_errors.ErrInvalidInput)
}

func TestCreateCanonicalizesURL(t *testing.T) {
	repo := &fakeMediaRepo{}
	svc := NewMediaService(repo, newFakeMediaCache(), nil)

	item, err := svc.Create(context.Background(), media.Item{
		MediaURL:     "https://cdn.example.com/uploads/abc.jpg?X-Amz-Signature=deadbeef&X-Amz-Expires=900",
		MediaType:    media.TypePhoto,
		UploaderName: "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/abc.jpg", item.MediaURL)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "https://cdn.example.com/uploads/abc.jpg", repo.items[0].MediaURL)
}

func TestCreateValidatesMediaType(t *testing.T) {
	svc := NewMediaService(&fakeMediaRepo{}, newFakeMediaCache(), nil)

	_, err := svc.Create(context.Background(), media.Item{
		MediaURL:  "https://cdn.example.com/x.jpg",
		MediaType: "document",
	})
	assert.ErrorIs(t, err, album_errors.ErrInvalidInput)
}

func TestCreateInvalidatesCache(t *testing.T) {
	cache := newFakeMediaCache()
	cache.pages[""] = &redis.MediaPage{Total: 5}
	svc := NewMediaService(&fakeMediaRepo{}, cache, nil)

	_, err := svc.Create(context.Background(), media.Item{
		MediaURL:     "https://cdn.example.com/x.jpg",
		MediaType:    media.TypePhoto,
		UploaderName: "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)
	assert.Empty(t, cache.pages, "stale gallery pages must be dropped")
}

func TestCreateCacheFailureIsNonFatal(t *testing.T) {
	cache := newFakeMediaCache()
	cache.invalidateErr = errors.New("redis down")
	repo := &fakeMediaRepo{}
	svc := NewMediaService(repo, cache, nil)

	_, err := svc.Create(context.Background(), media.Item{
		MediaURL:     "https://cdn.example.com/x.jpg",
		MediaType:    media.TypePhoto,
		UploaderName: "Dana",
	})
	assert.NoError(t, err, "the record exists; cache keys expire on TTL")
	assert.Len(t, repo.items, 1)
}

func TestCreateRepoFailureSurfaces(t *testing.T) {
	cache := newFakeMediaCache()
	repo := &fakeMediaRepo{createErr: errors.New("db down")}
	svc := NewMediaService(repo, cache, nil)

	_, err := svc.Create(context.Background(), media.Item{
		MediaURL:  "https://cdn.example.com/x.jpg",
		MediaType: media.TypePhoto,
	})
	assert.Error(t, err)
	assert.Zero(t, cache.invalidations, "failed insert must not touch the cache")
}

func TestGetReturnsStoredItem(t *testing.T) {
	repo := &fakeMediaRepo{}
	svc := NewMediaService(repo, newFakeMediaCache(), nil)

	created, err := svc.Create(context.Background(), media.Item{
		MediaURL:     "https://cdn.example.com/x.jpg",
		MediaType:    media.TypePhoto,
		UploaderName: "Dana",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, album_errors.ErrNotFound)
}

func TestDeleteInvalidatesCache(t *testing.T) {
	cache := newFakeMediaCache()
	repo := &fakeMediaRepo{}
	svc := NewMediaService(repo, cache, nil)

	created, err := svc.Create(context.Background(), media.Item{
		MediaURL:     "https://cdn.example.com/x.jpg",
		MediaType:    media.TypePhoto,
		UploaderName: "Dana",
	})
	require.NoError(t, err)
	cache.pages[""] = &redis.MediaPage{Total: 1}

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.items)
	assert.Empty(t, cache.pages, "stale gallery pages must be dropped")
}

func TestDeleteMissingItemSkipsCache(t *testing.T) {
	cache := newFakeMediaCache()
	svc := NewMediaService(&fakeMediaRepo{}, cache, nil)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, album_errors.ErrNotFound)
	assert.Zero(t, cache.invalidations, "a failed delete must not touch the cache")
}

func TestListReadsThroughCache(t *testing.T) {
	cache := newFakeMediaCache()
	repo := &fakeMediaRepo{}
	require.NoError(t, repo.Create(context.Background(), &media.Item{MediaURL: "u1", MediaType: media.TypePhoto}))
	svc := NewMediaService(repo, cache, nil)

	items, total, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, cache.pages[""], "miss must populate the cache")

	// Served from cache even after the repo changes underneath.
	require.NoError(t, repo.Create(context.Background(), &media.Item{MediaURL: "u2", MediaType: media.TypePhoto}))
	items, total, err = svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)
}

func TestCountReadsThroughCache(t *testing.T) {
	cache := newFakeMediaCache()
	repo := &fakeMediaRepo{}
	require.NoError(t, repo.Create(context.Background(), &media.Item{MediaURL: "u1", MediaType: media.TypeVideo}))
	svc := NewMediaService(repo, cache, nil)

	count, err := svc.Count(context.Background(), "video")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), cache.counts["video"])
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://x/y.jpg", CanonicalURL("https://x/y.jpg?sig=1&exp=2"))
	assert.Equal(t, "https://x/y.jpg", CanonicalURL("https://x/y.jpg"))
	assert.Equal(t, "", CanonicalURL("?only-query"))
}
