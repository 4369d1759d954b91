package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// transferTimeout is the hard per-attempt ceiling for one byte transfer,
// distinct from the backoff delays between attempts.
const transferTimeout = 180 * time.Second

// ProgressFunc reports bytes moved so far out of total for one attempt.
// Progress is monotonically non-decreasing within an attempt.
type ProgressFunc func(transferred, total int64)

type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		if p.progress != nil {
			p.progress(p.read, p.total)
		}
	}
	return n, err
}

// putBytes performs one presigned PUT with the transfer retry policy: up to
// three attempts, backoff doubling from 500ms, 180s ceiling per attempt.
// Each attempt restarts the body and progress from zero.
func putBytes(ctx context.Context, client *http.Client, url string, data []byte, headers map[string]string, progress ProgressFunc) error {
	if client == nil {
		client = http.DefaultClient
	}
	total := int64(len(data))

	return retryWithBackoff(ctx, transferRetry, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, transferTimeout)
		defer cancel()

		body := &progressReader{
			r:        bytes.NewReader(data),
			total:    total,
			progress: progress,
		}

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPut, url, body)
		if err != nil {
			return err
		}
		req.ContentLength = total
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("transfer failed: HTTP %d", resp.StatusCode)
		}
		return nil
	})
}

// putPart uploads one multipart part and returns its ETag, with the same
// retry policy as a whole-object transfer.
func putPart(ctx context.Context, client *http.Client, url string, data []byte, progress ProgressFunc) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	total := int64(len(data))

	var etag string
	err := retryWithBackoff(ctx, transferRetry, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, transferTimeout)
		defer cancel()

		body := &progressReader{
			r:        bytes.NewReader(data),
			total:    total,
			progress: progress,
		}

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPut, url, body)
		if err != nil {
			return err
		}
		req.ContentLength = total

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("part transfer failed: HTTP %d", resp.StatusCode)
		}

		etag = resp.Header.Get("ETag")
		if etag == "" {
			return fmt.Errorf("part transfer returned no ETag")
		}
		return nil
	})
	return etag, err
}
