package services

import (
	"context"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/storage"
	"github.com/eidan66/wedding-album-sub000/pkg/logger"
)

// JanitorStore is the storage subset the janitor needs.
type JanitorStore interface {
	ListOpenUploads(ctx context.Context, prefix string, cutoff time.Time) ([]storage.OpenUpload, error)
	AbortMultipart(ctx context.Context, key, uploadID string) error
}

// JanitorService reclaims multipart sessions abandoned between create and
// complete/abort, which otherwise hold storage-side reservations forever.
type JanitorService struct {
	store  JanitorStore
	prefix string
	maxAge time.Duration
	logger *logger.Logger
}

func NewJanitorService(store JanitorStore, prefix string, maxAge time.Duration, l *logger.Logger) *JanitorService {
	return &JanitorService{store: store, prefix: prefix, maxAge: maxAge, logger: l}
}

// SweepOnce aborts every open session older than the age threshold and
// returns how many were reclaimed. Individual abort failures are logged and
// skipped so one bad session never stalls the sweep.
func (s *JanitorService) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.maxAge)
	stale, err := s.store.ListOpenUploads(ctx, s.prefix, cutoff)
	if err != nil {
		return 0, err
	}

	aborted := 0
	for _, u := range stale {
		if err := s.store.AbortMultipart(ctx, u.Key, u.UploadID); err != nil {
			if s.logger != nil {
				s.logger.Warnf("janitor: abort %s (%s) failed: %s", u.UploadID, u.Key, err)
			}
			continue
		}
		aborted++
	}

	if s.logger != nil && len(stale) > 0 {
		s.logger.Infof("janitor: reclaimed %d of %d stale multipart sessions", aborted, len(stale))
	}
	return aborted, nil
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *JanitorService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && s.logger != nil {
				s.logger.Errorf("janitor sweep failed: %s", err)
			}
		}
	}
}
