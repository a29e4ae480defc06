package repository

import (
	"context"

	"github.com/vytor/fretlog/internal/models"
)

// PracticeRepository handles practice-record data access. Practices are
// immutable: there is no update operation.
type PracticeRepository interface {
	Insert(ctx context.Context, practice models.Practice) error
	Upsert(ctx context.Context, practice models.Practice) error
	Get(ctx context.Context, id string) (*models.Practice, error)
	ListBySong(ctx context.Context, songID string) ([]models.Practice, error)
	ListAll(ctx context.Context) ([]models.Practice, error)
	Delete(ctx context.Context, id string) error
	// DeleteBySong removes every practice of the song and returns the ids
	// of the removed rows so callers can queue their remote deletion.
	DeleteBySong(ctx context.Context, songID string) ([]string, error)
	DeleteAll(ctx context.Context) error
	// Stats aggregates total minutes and session count for one song.
	Stats(ctx context.Context, songID string) (*models.SongStats, error)
}
