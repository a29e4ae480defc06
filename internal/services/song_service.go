package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/leveling"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/store"
)

// NewSongInput is the payload for adding a song. Status picks where the
// song starts its life; stats are seeded to match.
type NewSongInput struct {
	Title        string            `json:"title"`
	Artist       string            `json:"artist"`
	Difficulty   models.Difficulty `json:"difficulty"`
	Status       models.Status     `json:"status"`
	SongDuration *float64          `json:"songDuration"`
	Tuning       models.Tuning     `json:"tuning"`
	Capo         int               `json:"capo"`
	Lyrics       string            `json:"lyrics"`
}

// SongMetadataInput carries the editable descriptive fields. Leveling
// stats are owned by the engine and cannot be set through here.
type SongMetadataInput struct {
	Title        *string            `json:"title"`
	Artist       *string            `json:"artist"`
	Difficulty   *models.Difficulty `json:"difficulty"`
	SongDuration *float64           `json:"songDuration"`
	Tuning       *models.Tuning     `json:"tuning"`
	Capo         *int               `json:"capo"`
	Lyrics       *string            `json:"lyrics"`
}

// SongService handles song-related business logic
type SongService interface {
	AddSong(ctx context.Context, input NewSongInput) (*models.Song, error)
	GetSong(ctx context.Context, id string) (*models.Song, error)
	ListSongs(ctx context.Context, filter models.SongFilter) ([]models.Song, error)
	EditSongMetadata(ctx context.Context, id string, input SongMetadataInput) (*models.Song, error)
	DeleteSong(ctx context.Context, id string) error
	SongStats(ctx context.Context, id string) (*models.SongStats, error)
}

type songService struct {
	store *store.Store
	now   func() time.Time
}

// NewSongService creates a new SongService
func NewSongService(st *store.Store) SongService {
	return &songService{store: st, now: time.Now}
}

func (s *songService) AddSong(ctx context.Context, input NewSongInput) (*models.Song, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding song: title=%q, status=%s", input.Title, input.Status)

	if input.Title == "" {
		return nil, apperrors.NewValidationError("title", "must not be empty")
	}
	if input.Artist == "" {
		return nil, apperrors.NewValidationError("artist", "must not be empty")
	}
	if !input.Difficulty.Valid() {
		return nil, apperrors.NewValidationError("difficulty", "must be easy, normal or hard")
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status")
	}
	if input.Capo < 0 {
		return nil, apperrors.NewValidationError("capo", "must not be negative")
	}
	if input.SongDuration != nil && *input.SongDuration <= 0 {
		return nil, apperrors.NewValidationError("songDuration", "must be positive")
	}
	tuning := input.Tuning
	if len(tuning) == 0 {
		tuning = models.StandardTuning
	}
	if !tuning.Valid() {
		return nil, apperrors.NewValidationError("tuning", "must name all six strings")
	}

	song := models.Song{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Artist:       input.Artist,
		Difficulty:   input.Difficulty,
		Status:       input.Status,
		SongDuration: input.SongDuration,
		Tuning:       tuning,
		Capo:         input.Capo,
		Lyrics:       input.Lyrics,
	}
	song = leveling.SeedStats(song, s.now())

	if err := s.store.CreateSong(ctx, song); err != nil {
		log.Error("failed to create song: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	log.Info("added song %s (%s)", song.Title, song.ID)
	return &song, nil
}

func (s *songService) GetSong(ctx context.Context, id string) (*models.Song, error) {
	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("song", id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return song, nil
}

// ListSongs returns songs with decay applied lazily: any song whose
// stats eroded since the last look is persisted on the way out, so
// reads always reflect today's state.
func (s *songService) ListSongs(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	log := logger.FromContext(ctx)

	songs, err := s.store.ListSongs(ctx, filter)
	if err != nil {
		log.Error("failed to list songs: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	for i, song := range songs {
		decayed := leveling.ApplyDecay(song, now)
		if songsEqualStats(song, decayed) {
			continue
		}
		if err := s.store.UpdateSong(ctx, decayed); err != nil {
			log.Warn("failed to persist decay for song %s: %v", song.ID, err)
			continue
		}
		// UpdateSong stamps a fresh updated_at; reflect the new stats.
		fresh, err := s.store.GetSong(ctx, song.ID)
		if err == nil {
			songs[i] = *fresh
		} else {
			songs[i] = decayed
		}
	}
	return songs, nil
}

func songsEqualStats(a, b models.Song) bool {
	return a.Status == b.Status &&
		eqIntPtr(a.Level, b.Level) &&
		eqFloatPtr(a.XP, b.XP) &&
		eqTimePtr(a.LastDecayDate, b.LastDecayDate)
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *songService) EditSongMetadata(ctx context.Context, id string, input SongMetadataInput) (*models.Song, error) {
	log := logger.FromContext(ctx)
	log.Debug("editing song metadata: id=%s", id)

	song, err := s.store.GetSong(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("song", id)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.NewValidationError("title", "must not be empty")
		}
		song.Title = *input.Title
	}
	if input.Artist != nil {
		if *input.Artist == "" {
			return nil, apperrors.NewValidationError("artist", "must not be empty")
		}
		song.Artist = *input.Artist
	}
	if input.Difficulty != nil {
		if !input.Difficulty.Valid() {
			return nil, apperrors.NewValidationError("difficulty", "must be easy, normal or hard")
		}
		song.Difficulty = *input.Difficulty
	}
	if input.SongDuration != nil {
		if *input.SongDuration <= 0 {
			return nil, apperrors.NewValidationError("songDuration", "must be positive")
		}
		song.SongDuration = input.SongDuration
	}
	if input.Tuning != nil {
		if !input.Tuning.Valid() {
			return nil, apperrors.NewValidationError("tuning", "must name all six strings")
		}
		song.Tuning = *input.Tuning
	}
	if input.Capo != nil {
		if *input.Capo < 0 {
			return nil, apperrors.NewValidationError("capo", "must not be negative")
		}
		song.Capo = *input.Capo
	}
	if input.Lyrics != nil {
		song.Lyrics = *input.Lyrics
	}

	if err := s.store.UpdateSong(ctx, *song); err != nil {
		log.Error("failed to update song: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return s.GetSong(ctx, id)
}

func (s *songService) DeleteSong(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting song: id=%s", id)

	if err := s.store.DeleteSong(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError("song", id)
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *songService) SongStats(ctx context.Context, id string) (*models.SongStats, error) {
	if _, err := s.GetSong(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.store.SongStats(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}
