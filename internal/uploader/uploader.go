package uploader

import (
	"context"
	"fmt"
	"strings"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"
)

const (
	minPartSize               = 5 << 20
	defaultPartSize           = 16 << 20
	defaultMultipartThreshold = 64 << 20
)

// Options tunes one Uploader. The zero value is usable; unset fields fall
// back to defaults at construction.
type Options struct {
	// Parallel caps concurrent file uploads. Zero means DefaultParallelism.
	Parallel int
	// PartSize is the multipart chunk size in bytes. Values below the
	// backend's 5 MiB minimum are raised to the default.
	PartSize int64
	// MultipartThreshold is the file size at which uploads switch from a
	// single presigned PUT to a multipart session.
	MultipartThreshold int64
	// Compress controls client-side image recompression.
	Compress CompressOptions
	// UploaderName is attached to every recorded item.
	UploaderName string
}

// Uploader drives batches of files through the presign and transfer
// pipeline against one album server.
type Uploader struct {
	api  *APIClient
	opts Options
}

func New(api *APIClient, opts Options) *Uploader {
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallelism()
	}
	if opts.PartSize < minPartSize {
		opts.PartSize = defaultPartSize
	}
	if opts.MultipartThreshold <= 0 {
		opts.MultipartThreshold = defaultMultipartThreshold
	}
	if opts.UploaderName == "" {
		opts.UploaderName = "Guest"
	}
	return &Uploader{api: api, opts: opts}
}

// UploadAll validates the whole batch against the server, then submits every
// file through the worker pool and blocks until all tasks settle or ctx is
// cancelled. One rejected file fails the whole batch before any task starts.
// onChange, when non-nil, receives a snapshot of the whole task list after
// every state change.
func (u *Uploader) UploadAll(ctx context.Context, files []File, onChange func([]Task)) *Batch {
	b := newBatch(files, onChange)
	if b.Len() == 0 {
		return b
	}

	targets, err := u.presignAll(ctx, files)
	if err != nil {
		b.failAll(err)
		return b
	}

	runPool(ctx, u.opts.Parallel, b.Len(), func(ctx context.Context, i int) {
		u.uploadOne(ctx, b, i, &targets[i])
	})
	return b
}

// presignAll requests a presigned target for every file in one call. The
// server treats the batch as all-or-nothing, so a single bad file means no
// URL is issued and nothing is admitted to the pool.
func (u *Uploader) presignAll(ctx context.Context, files []File) ([]httpdto.UploadURLResponse, error) {
	req := httpdto.BatchPresignRequest{Files: make([]httpdto.UploadURLRequest, 0, len(files))}
	for _, f := range files {
		req.Files = append(req.Files, httpdto.UploadURLRequest{
			Filename:     f.Name,
			Filetype:     f.MimeType,
			Filesize:     int64(len(f.Data)),
			UploaderName: u.opts.UploaderName,
		})
	}

	var resp httpdto.BatchPresignResponse
	err := retryWithBackoff(ctx, metadataRetry, func() error {
		var err error
		resp, err = u.api.PresignBatch(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp.URLs) != len(files) {
		return nil, fmt.Errorf("expected %d presigned targets, got %d", len(files), len(resp.URLs))
	}
	return resp.URLs, nil
}

// RetryTask re-runs a single errored task. Tasks in any other state are left
// untouched. The batch-issued URL may have expired by now, so the retry
// always presigns fresh.
func (u *Uploader) RetryTask(ctx context.Context, b *Batch, i int) bool {
	if !b.resetForRetry(i) {
		return false
	}
	u.uploadOne(ctx, b, i, nil)
	return true
}

// uploadOne moves a single task from pending to a settled state. Cancelled
// batches leave un-started tasks in pending.
func (u *Uploader) uploadOne(ctx context.Context, b *Batch, i int, preissued *httpdto.UploadURLResponse) {
	if b.isCancelled() || ctx.Err() != nil {
		return
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.registerCancel(i, cancel)

	b.setStatus(i, StatusUploading)

	f := b.file(i)
	data, mime := maybeCompress(f.Data, f.MimeType, u.opts.Compress)

	// Recompression changes the payload the batch URL was signed for.
	if preissued != nil && (mime != f.MimeType || len(data) != len(f.Data)) {
		preissued = nil
	}

	var err error
	if int64(len(data)) >= u.opts.MultipartThreshold {
		err = u.uploadMultipart(taskCtx, b, i, f.Name, mime, data)
	} else {
		err = u.uploadSingle(taskCtx, b, i, f.Name, mime, data, preissued)
	}
	if err != nil {
		b.fail(i, err)
	}
}

// uploadSingle does presign, PUT, then record. The item only becomes visible
// in the gallery once the bytes are confirmed in place.
func (u *Uploader) uploadSingle(ctx context.Context, b *Batch, i int, name, mime string, data []byte, preissued *httpdto.UploadURLResponse) error {
	var target httpdto.UploadURLResponse
	if preissued != nil {
		target = *preissued
	} else {
		err := retryWithBackoff(ctx, metadataRetry, func() error {
			var err error
			target, err = u.api.UploadURL(ctx, httpdto.UploadURLRequest{
				Filename:     name,
				Filetype:     mime,
				Filesize:     int64(len(data)),
				UploaderName: u.opts.UploaderName,
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	headers := map[string]string{"Content-Type": mime}
	err := putBytes(ctx, u.api.HTTPClient(), target.URL, data, headers, func(transferred, total int64) {
		b.setProgress(i, transferPct(transferred, total))
	})
	if err != nil {
		return err
	}

	var item media.Item
	err = retryWithBackoff(ctx, metadataRetry, func() error {
		created, err := u.api.CreateMedia(ctx, httpdto.CreateMediaRequest{
			MediaURL:     stripQuery(target.URL),
			MediaType:    mediaTypeForMime(mime),
			UploaderName: u.opts.UploaderName,
			Title:        name,
		})
		if err != nil {
			return err
		}
		item = created
		return nil
	})
	if err != nil {
		return err
	}

	b.succeed(i, item)
	return nil
}

func transferPct(transferred, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(transferred * 100 / total)
}

func stripQuery(url string) string {
	if idx := strings.IndexByte(url, '?'); idx >= 0 {
		return url[:idx]
	}
	return url
}

func mediaTypeForMime(mime string) string {
	if strings.HasPrefix(strings.ToLower(mime), "video/") {
		return "video"
	}
	return "photo"
}
