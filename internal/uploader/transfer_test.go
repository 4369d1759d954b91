package uploader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutBytesSucceedsOnThirdAttempt(t *testing.T) {
	var attempts int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&attempts, 1)
		body, _ := io.ReadAll(r.Body)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "payload-bytes", string(body), "each attempt must resend the full body")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := putBytes(context.Background(), srv.Client(), srv.URL, []byte("payload-bytes"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&attempts))
}

func TestPutBytesGivesUpAfterThreeAttempts(t *testing.T) {
	var attempts int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := putBytes(context.Background(), srv.Client(), srv.URL, []byte("payload"), nil, nil)
	assert.Error(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&attempts))
}

func TestPutBytesSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		assert.Equal(t, int64(7), r.ContentLength)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := putBytes(context.Background(), srv.Client(), srv.URL, []byte("content"), map[string]string{"Content-Type": "image/jpeg"}, nil)
	require.NoError(t, err)
}

func TestPutBytesReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	data := make([]byte, 256<<10)
	var last int64
	err := putBytes(context.Background(), srv.Client(), srv.URL, data, nil, func(transferred, total int64) {
		assert.GreaterOrEqual(t, transferred, last, "progress within an attempt is non-decreasing")
		assert.Equal(t, int64(len(data)), total)
		last = transferred
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), last)
}

func TestPutBytesHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := putBytes(ctx, srv.Client(), srv.URL, []byte("payload"), nil, nil)
	assert.Error(t, err)
}

func TestPutPartReturnsETag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	etag, err := putPart(context.Background(), srv.Client(), srv.URL, []byte("chunk"), nil)
	require.NoError(t, err)
	assert.Equal(t, `"abc123"`, etag)
}

func TestPutPartMissingETagFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := putPart(context.Background(), srv.Client(), srv.URL, []byte("chunk"), nil)
	assert.Error(t, err)
}

func TestPutPartRetriesThenSucceeds(t *testing.T) {
	var attempts int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&attempts, 1)
		_, _ = io.Copy(io.Discard, r.Body)
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("ETag", `"after-retry"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	etag, err := putPart(context.Background(), srv.Client(), srv.URL, []byte("chunk"), nil)
	require.NoError(t, err)
	assert.Equal(t, `"after-retry"`, etag)
	assert.Equal(t, int64(2), atomic.LoadInt64(&attempts))
}
