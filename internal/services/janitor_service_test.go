package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJanitorStore struct {
	open    []storage.OpenUpload
	listErr error

	aborted  []string
	abortErr map[string]error
}

func (f *fakeJanitorStore) ListOpenUploads(_ context.Context, _ string, cutoff time.Time) ([]storage.OpenUpload, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var stale []storage.OpenUpload
	for _, u := range f.open {
		if !u.Initiated.After(cutoff) {
			stale = append(stale, u)
		}
	}
	return stale, nil
}

func (f *fakeJanitorStore) AbortMultipart(_ context.Context, _, uploadID string) error {
	if err, ok := f.abortErr[uploadID]; ok {
		return err
	}
	f.aborted = append(f.aborted, uploadID)
	return nil
}

func TestSweepOnceReclaimsStaleSessions(t *testing.T) {
	now := time.Now()
	store := &fakeJanitorStore{
		open: []storage.OpenUpload{
			{Key: "uploads/old.mp4", UploadID: "u-old", Initiated: now.Add(-48 * time.Hour)},
			{Key: "uploads/fresh.mp4", UploadID: "u-fresh", Initiated: now.Add(-time.Hour)},
		},
	}
	janitor := NewJanitorService(store, "uploads", 24*time.Hour, nil)

	aborted, err := janitor.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, aborted)
	assert.Equal(t, []string{"u-old"}, store.aborted, "fresh sessions must be left alone")
}

func TestSweepOnceSkipsFailedAborts(t *testing.T) {
	now := time.Now()
	store := &fakeJanitorStore{
		open: []storage.OpenUpload{
			{Key: "uploads/a.mp4", UploadID: "u-a", Initiated: now.Add(-48 * time.Hour)},
			{Key: "uploads/b.mp4", UploadID: "u-b", Initiated: now.Add(-48 * time.Hour)},
			{Key: "uploads/c.mp4", UploadID: "u-c", Initiated: now.Add(-48 * time.Hour)},
		},
		abortErr: map[string]error{"u-b": errors.New("backend unavailable")},
	}
	janitor := NewJanitorService(store, "uploads", 24*time.Hour, nil)

	aborted, err := janitor.SweepOnce(context.Background())
	require.NoError(t, err, "one bad session must not stall the sweep")
	assert.Equal(t, 2, aborted)
	assert.Equal(t, []string{"u-a", "u-c"}, store.aborted)
}

func TestSweepOnceListFailure(t *testing.T) {
	store := &fakeJanitorStore{listErr: errors.New("backend unavailable")}
	janitor := NewJanitorService(store, "uploads", 24*time.Hour, nil)

	_, err := janitor.SweepOnce(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &fakeJanitorStore{}
	janitor := NewJanitorService(store, "uploads", 24*time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
