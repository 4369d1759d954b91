package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	"github.com/eidan66/wedding-album-sub000/internal/storage"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"
	"github.com/eidan66/wedding-album-sub000/pkg/logger"

	"github.com/google/uuid"
)

const (
	minPartNumber = 1
	maxPartNumber = 10000

	// partURLConcurrency bounds how many part URLs are signed at once for a
	// single request.
	partURLConcurrency = 16
)

// ObjectStore is the subset of the S3 client the presign broker needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64, metadata map[string]string) (string, map[string]string, error)
	CreateMultipart(ctx context.Context, key, contentType string, metadata map[string]string) (string, error)
	PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int32) (string, error)
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []storage.CompletedPart) (string, error)
	AbortMultipart(ctx context.Context, key, uploadID string) error
	Bucket() string
	FileURL(key string) string
}

// Recorder creates the durable catalog entry once bytes are confirmed stored.
type Recorder interface {
	RecordUpload(ctx context.Context, input RecordInput) (media.Item, error)
}

// PresignService is the presign broker: it owns key naming, the mime-type
// allow-list and the metadata-tagging policy for every upload variant, so
// the single, batch and multipart paths cannot drift apart.
type PresignService struct {
	store    ObjectStore
	recorder Recorder
	prefix   string
	maxBytes int64
	logger   *logger.Logger
}

func NewPresignService(store ObjectStore, recorder Recorder, prefix string, maxBytes int64, l *logger.Logger) *PresignService {
	if prefix == "" {
		prefix = "uploads"
	}
	return &PresignService{
		store:    store,
		recorder: recorder,
		prefix:   prefix,
		maxBytes: maxBytes,
		logger:   l,
	}
}

// PresignInput describes one file to be uploaded.
type PresignInput struct {
	FileName     string
	ContentType  string
	SizeBytes    int64
	Title        string
	UploaderName string
	CoupleID     string
}

// PresignedTarget is a capability to write one object.
type PresignedTarget struct {
	URL     string
	Key     string
	Headers map[string]string
}

// MultipartSession identifies an open chunked upload.
type MultipartSession struct {
	UploadID string
	Key      string
	Bucket   string
}

// PartURL is one presigned part upload URL.
type PartURL struct {
	PartNumber int32
	URL        string
}

// CompleteInput finalizes a multipart session.
type CompleteInput struct {
	Key          string
	UploadID     string
	Parts        []storage.CompletedPart
	Title        string
	UploaderName string
}

// Single issues one time-limited upload URL with the standard metadata tags.
func (s *PresignService) Single(ctx context.Context, input PresignInput) (PresignedTarget, error) {
	if s.store == nil {
		return PresignedTarget{}, album_errors.ErrStorageNotConfigured
	}
	if err := s.validate(input); err != nil {
		return PresignedTarget{}, err
	}

	key := s.buildObjectKey(input.CoupleID, input.FileName)
	uploadURL, headers, err := s.store.PresignPut(ctx, key, input.ContentType, input.SizeBytes, objectMetadata(input))
	if err != nil {
		return PresignedTarget{}, fmt.Errorf("presign put: %w", err)
	}

	return PresignedTarget{URL: uploadURL, Key: key, Headers: headers}, nil
}

// Batch issues one URL per input file, in input order. Validation is
// all-or-nothing: if any entry is rejected, no URL is generated.
func (s *PresignService) Batch(ctx context.Context, inputs []PresignInput) ([]PresignedTarget, error) {
	if s.store == nil {
		return nil, album_errors.ErrStorageNotConfigured
	}
	if len(inputs) == 0 {
		return nil, album_errors.ErrInvalidInput
	}
	for _, input := range inputs {
		if err := s.validate(input); err != nil {
			return nil, err
		}
	}

	targets := make([]PresignedTarget, 0, len(inputs))
	for _, input := range inputs {
		target, err := s.Single(ctx, input)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// CreateMultipart opens a chunked-upload session upstream.
func (s *PresignService) CreateMultipart(ctx context.Context, input PresignInput) (MultipartSession, error) {
	if s.store == nil {
		return MultipartSession{}, album_errors.ErrStorageNotConfigured
	}
	if err := s.validate(input); err != nil {
		return MultipartSession{}, err
	}

	key := s.buildObjectKey(input.CoupleID, input.FileName)
	uploadID, err := s.store.CreateMultipart(ctx, key, input.ContentType, objectMetadata(input))
	if err != nil {
		return MultipartSession{}, fmt.Errorf("create multipart upload: %w", err)
	}

	return MultipartSession{UploadID: uploadID, Key: key, Bucket: s.store.Bucket()}, nil
}

// PartURLs presigns one PUT URL per requested part number. Part numbers must
// be within [1, 10000]; URLs are generated concurrently and returned in
// request order.
func (s *PresignService) PartURLs(ctx context.Context, key, uploadID string, partNumbers []int32) ([]PartURL, error) {
	if s.store == nil {
		return nil, album_errors.ErrStorageNotConfigured
	}
	if key == "" || uploadID == "" || len(partNumbers) == 0 {
		return nil, album_errors.ErrInvalidInput
	}
	for _, n := range partNumbers {
		if n < minPartNumber || n > maxPartNumber {
			return nil, album_errors.ErrInvalidPartNumbers
		}
	}

	urls := make([]PartURL, len(partNumbers))
	errs := make([]error, len(partNumbers))
	sem := make(chan struct{}, partURLConcurrency)
	var wg sync.WaitGroup

	for i, n := range partNumbers {
		wg.Add(1)
		go func(i int, n int32) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			partURL, err := s.store.PresignUploadPart(ctx, key, uploadID, n)
			if err != nil {
				errs[i] = err
				return
			}
			urls[i] = PartURL{PartNumber: n, URL: partURL}
		}(i, n)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("presign part url: %w", err)
		}
	}
	return urls, nil
}

// CompleteMultipart finalizes the object and records the catalog entry. The
// storage layer sorts parts by part number before finalizing. A completion
// that yields no location is fatal: no record is created.
func (s *PresignService) CompleteMultipart(ctx context.Context, input CompleteInput) (string, media.Item, error) {
	if s.store == nil {
		return "", media.Item{}, album_errors.ErrStorageNotConfigured
	}
	if input.Key == "" || input.UploadID == "" || len(input.Parts) == 0 {
		return "", media.Item{}, album_errors.ErrInvalidInput
	}
	for _, p := range input.Parts {
		if p.PartNumber < minPartNumber || p.PartNumber > maxPartNumber || p.ETag == "" {
			return "", media.Item{}, album_errors.ErrInvalidInput
		}
	}

	location, err := s.store.CompleteMultipart(ctx, input.Key, input.UploadID, input.Parts)
	if err != nil {
		return "", media.Item{}, fmt.Errorf("complete multipart upload: %w", err)
	}
	if location == "" {
		return "", media.Item{}, album_errors.ErrIncompleteUpload
	}

	item, err := s.recorder.RecordUpload(ctx, RecordInput{
		MediaURL:     location,
		ObjectKey:    input.Key,
		Title:        input.Title,
		UploaderName: input.UploaderName,
	})
	if err != nil {
		return "", media.Item{}, err
	}
	return location, item, nil
}

// AbortMultipart releases a session. Best-effort: failures are logged so the
// caller's cleanup is never blocked.
func (s *PresignService) AbortMultipart(ctx context.Context, key, uploadID string) error {
	if s.store == nil {
		return album_errors.ErrStorageNotConfigured
	}
	if key == "" || uploadID == "" {
		return album_errors.ErrInvalidInput
	}
	if err := s.store.AbortMultipart(ctx, key, uploadID); err != nil {
		if s.logger != nil {
			s.logger.Warnf("abort multipart %s failed: %s", uploadID, err)
		}
	}
	return nil
}

func (s *PresignService) validate(input PresignInput) error {
	if input.FileName == "" || input.ContentType == "" {
		return album_errors.ErrInvalidInput
	}
	if !isAllowedContentType(input.ContentType) {
		return album_errors.ErrUnsupportedFileType
	}
	// Size ceiling is disabled when maxBytes is 0 (unlimited uploads); the
	// check stays so the policy remains a config switch.
	if s.maxBytes > 0 && input.SizeBytes > s.maxBytes {
		return album_errors.ErrTooLarge
	}
	return nil
}

// buildObjectKey scopes keys to the upload prefix (and couple namespace when
// present) with a random identifier. Only the extension comes from the
// user-supplied filename.
func (s *PresignService) buildObjectKey(coupleID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := s.prefix
	if coupleID != "" {
		base = base + "/" + coupleID
	}
	return base + "/" + uuid.New().String() + ext
}

func isAllowedContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

// objectMetadata tags the stored object so the original filename and
// uploader survive the key randomization.
func objectMetadata(input PresignInput) map[string]string {
	meta := map[string]string{
		"original-filename": url.QueryEscape(input.FileName),
		"created":           time.Now().UTC().Format(time.RFC3339),
	}
	if input.UploaderName != "" {
		meta["uploader"] = url.QueryEscape(input.UploaderName)
	}
	if input.Title != "" {
		meta["title"] = url.QueryEscape(input.Title)
	}
	return meta
}
