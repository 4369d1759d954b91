package uploader

import (
	"context"
	"fmt"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"
)

// partURLBatchSize bounds how many part URLs are requested per metadata
// round trip, so very large files do not ask for thousands at once.
const partURLBatchSize = 8

// uploadMultipart runs the chunked path: open a session, move parts in
// order, complete with the collected ETags. Any failure aborts the session
// best-effort so the backend is not left holding orphaned parts.
func (u *Uploader) uploadMultipart(ctx context.Context, b *Batch, i int, name, mime string, data []byte) error {
	var session httpdto.MultipartCreateResponse
	err := retryWithBackoff(ctx, metadataRetry, func() error {
		var err error
		session, err = u.api.MultipartCreate(ctx, httpdto.MultipartCreateRequest{
			FileName:     name,
			Mime:         mime,
			Size:         int64(len(data)),
			Title:        name,
			UploaderName: u.opts.UploaderName,
		})
		return err
	})
	if err != nil {
		return err
	}

	parts, err := u.transferParts(ctx, b, i, session, data)
	if err != nil {
		u.abortSession(session)
		return err
	}

	var done httpdto.MultipartCompleteResponse
	err = retryWithBackoff(ctx, metadataRetry, func() error {
		var err error
		done, err = u.api.MultipartComplete(ctx, httpdto.MultipartCompleteRequest{
			Key:          session.Key,
			UploadID:     session.UploadID,
			Parts:        parts,
			Title:        name,
			UploaderName: u.opts.UploaderName,
		})
		return err
	})
	if err != nil {
		u.abortSession(session)
		return err
	}

	b.succeed(i, done.MediaItem)
	return nil
}

// transferParts uploads every chunk and returns the part descriptors needed
// to complete the session. Part numbers start at 1 and progress aggregates
// confirmed bytes plus the chunk currently in flight.
func (u *Uploader) transferParts(ctx context.Context, b *Batch, i int, session httpdto.MultipartCreateResponse, data []byte) ([]httpdto.CompletedPartDTO, error) {
	total := int64(len(data))
	partSize := u.opts.PartSize
	partCount := int32((total + partSize - 1) / partSize)

	parts := make([]httpdto.CompletedPartDTO, 0, partCount)
	var uploadedBytes int64

	for first := int32(1); first <= partCount; first += partURLBatchSize {
		last := first + partURLBatchSize - 1
		if last > partCount {
			last = partCount
		}
		numbers := make([]int32, 0, last-first+1)
		for n := first; n <= last; n++ {
			numbers = append(numbers, n)
		}

		var urls []httpdto.PartURLResponse
		err := retryWithBackoff(ctx, metadataRetry, func() error {
			var err error
			urls, err = u.api.MultipartParts(ctx, httpdto.MultipartPartsRequest{
				Key:         session.Key,
				UploadID:    session.UploadID,
				PartNumbers: numbers,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(urls) != len(numbers) {
			return nil, fmt.Errorf("expected %d part urls, got %d", len(numbers), len(urls))
		}

		for _, pu := range urls {
			offset := int64(pu.PartNumber-1) * partSize
			end := offset + partSize
			if end > total {
				end = total
			}
			chunk := data[offset:end]

			etag, err := putPart(ctx, u.api.HTTPClient(), pu.URL, chunk, func(transferred, _ int64) {
				b.setProgress(i, transferPct(uploadedBytes+transferred, total))
			})
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", pu.PartNumber, err)
			}

			uploadedBytes += int64(len(chunk))
			b.setProgress(i, transferPct(uploadedBytes, total))
			parts = append(parts, httpdto.CompletedPartDTO{
				ETag:       etag,
				PartNumber: pu.PartNumber,
			})
		}
	}
	return parts, nil
}

// abortSession tears down a failed session on a fresh short-lived context so
// cancellation of the upload itself does not strand the cleanup call.
func (u *Uploader) abortSession(session httpdto.MultipartCreateResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = u.api.MultipartAbort(ctx, httpdto.MultipartAbortRequest{
		Key:      session.Key,
		UploadID: session.UploadID,
	})
}
