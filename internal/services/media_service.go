package services

import (
	"context"
	"strings"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	"github.com/eidan66/wedding-album-sub000/internal/redis"
	"github.com/eidan66/wedding-album-sub000/internal/repository"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"
	"github.com/eidan66/wedding-album-sub000/pkg/logger"

	"github.com/google/uuid"
)

// MediaCache is the read-side cache the recorder invalidates.
type MediaCache interface {
	GetMediaPage(ctx context.Context, mediaType string, page, limit int) (*redis.MediaPage, error)
	SetMediaPage(ctx context.Context, mediaType string, page, limit int, value *redis.MediaPage) error
	GetMediaCount(ctx context.Context, mediaType string) (int64, bool, error)
	SetMediaCount(ctx context.Context, mediaType string, count int64) error
	InvalidateMedia(ctx context.Context) error
}

// MediaService records finalized uploads and serves the cached gallery reads.
type MediaService struct {
	repo   repository.MediaRepository
	cache  MediaCache
	logger *logger.Logger
}

func NewMediaService(repo repository.MediaRepository, cache MediaCache, l *logger.Logger) *MediaService {
	return &MediaService{repo: repo, cache: cache, logger: l}
}

// RecordInput describes a confirmed-stored object.
type RecordInput struct {
	MediaURL     string
	ObjectKey    string
	Title        string
	UploaderName string
	ThumbnailURL string
}

// RecordUpload creates exactly one catalog entry for an object whose bytes
// are confirmed present in storage, then drops the gallery cache so the item
// shows up on the next fetch. Cache failure is non-fatal; the keys expire on
// their own TTL.
func (s *MediaService) RecordUpload(ctx context.Context, input RecordInput) (media.Item, error) {
	if input.MediaURL == "" {
		return media.Item{}, album_errors.ErrInvalidInput
	}

	key := input.ObjectKey
	if key == "" {
		key = CanonicalURL(input.MediaURL)
	}

	return s.Create(ctx, media.Item{
		MediaURL:     input.MediaURL,
		MediaType:    media.TypeFromKey(key),
		Title:        input.Title,
		UploaderName: input.UploaderName,
		ThumbnailURL: input.ThumbnailURL,
	})
}

// Create inserts a catalog entry directly (the POST /media path, where the
// caller supplies the media type) and invalidates the gallery cache.
func (s *MediaService) Create(ctx context.Context, item media.Item) (media.Item, error) {
	if item.MediaURL == "" {
		return media.Item{}, album_errors.ErrInvalidInput
	}
	if item.MediaType != media.TypePhoto && item.MediaType != media.TypeVideo {
		return media.Item{}, album_errors.ErrInvalidInput
	}
	item.MediaURL = CanonicalURL(item.MediaURL)

	if err := s.repo.Create(ctx, &item); err != nil {
		return media.Item{}, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateMedia(ctx); err != nil && s.logger != nil {
			s.logger.Warnf("media cache invalidation failed: %s", err)
		}
	}

	return item, nil
}

// Get returns one catalog entry by id.
func (s *MediaService) Get(ctx context.Context, id uuid.UUID) (media.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a catalog entry and drops the gallery cache so the item
// disappears on the next fetch.
func (s *MediaService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateMedia(ctx); err != nil && s.logger != nil {
			s.logger.Warnf("media cache invalidation failed: %s", err)
		}
	}
	return nil
}

// List serves a gallery page, read-through cached.
func (s *MediaService) List(ctx context.Context, mediaType string, page, limit int) ([]media.Item, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if s.cache != nil {
		cached, err := s.cache.GetMediaPage(ctx, mediaType, page, limit)
		if err != nil && s.logger != nil {
			s.logger.Warnf("media page cache read failed: %s", err)
		}
		if cached != nil {
			return cached.Items, cached.Total, nil
		}
	}

	items, total, err := s.repo.List(ctx, mediaType, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetMediaPage(ctx, mediaType, page, limit, &redis.MediaPage{Items: items, Total: total}); err != nil && s.logger != nil {
			s.logger.Warnf("media page cache write failed: %s", err)
		}
	}
	return items, total, nil
}

// Count serves the catalog count, read-through cached.
func (s *MediaService) Count(ctx context.Context, mediaType string) (int64, error) {
	if s.cache != nil {
		count, ok, err := s.cache.GetMediaCount(ctx, mediaType)
		if err != nil && s.logger != nil {
			s.logger.Warnf("media count cache read failed: %s", err)
		}
		if ok {
			return count, nil
		}
	}

	count, err := s.repo.Count(ctx, mediaType)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetMediaCount(ctx, mediaType, count); err != nil && s.logger != nil {
			s.logger.Warnf("media count cache write failed: %s", err)
		}
	}
	return count, nil
}

// CanonicalURL strips the query string from a presigned URL, leaving the
// durable object URL.
func CanonicalURL(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
