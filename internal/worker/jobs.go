package worker

import (
	"context"

	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
)

// Syncer runs a full reconciliation pass against the remote backend.
// This avoids import cycles by not importing the sync package.
type Syncer interface {
	FullSync(ctx context.Context) error
}

// SongLister lists songs, refreshing any pending level decay as it reads.
type SongLister interface {
	ListSongs(ctx context.Context, filter models.SongFilter) ([]models.Song, error)
}

// FullSyncJob reconciles the local store with the remote backend.
type FullSyncJob struct {
	Syncer Syncer
}

func (j *FullSyncJob) Name() string { return "full_sync" }

func (j *FullSyncJob) Run(ctx context.Context) error {
	return j.Syncer.FullSync(ctx)
}

// DecaySweepJob walks the whole library so every song's decay is applied
// and persisted, instead of waiting for the next read to touch it.
type DecaySweepJob struct {
	Songs SongLister
}

func (j *DecaySweepJob) Name() string { return "decay_sweep" }

func (j *DecaySweepJob) Run(ctx context.Context) error {
	songs, err := j.Songs.ListSongs(ctx, models.SongFilter{})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("decay sweep touched %d songs", len(songs))
	return nil
}
