package repository

import (
	"context"

	"github.com/vytor/fretlog/internal/models"
)

// SongRepository handles song data access
type SongRepository interface {
	Insert(ctx context.Context, song models.Song) error
	Update(ctx context.Context, song models.Song) error
	// Upsert writes the song as-is, keeping its updated_at. Used by the
	// sync pull path and by restore.
	Upsert(ctx context.Context, song models.Song) error
	Get(ctx context.Context, id string) (*models.Song, error)
	List(ctx context.Context, filter models.SongFilter) ([]models.Song, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
