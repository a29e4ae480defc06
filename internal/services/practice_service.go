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

// Sessions longer than this are assumed to be input mistakes.
const maxPracticeMinutes = 600

// PracticeInput is the payload for logging a practice session.
// SongDuration is only needed when the song has none stored yet.
type PracticeInput struct {
	SongID        string   `json:"songId"`
	MinutesPlayed float64  `json:"minutesPlayed"`
	SongDuration  *float64 `json:"songDuration"`
}

// PracticeOutcome reports what one logged session did to the song.
// XPGain is carried explicitly because a level-up resets the running
// xp counter, so it cannot be read off the before/after diff.
type PracticeOutcome struct {
	Song     models.Song     `json:"song"`
	Practice models.Practice `json:"practice"`
	XPGain   float64         `json:"xpGain"`
}

// PracticeService handles practice-session business logic
type PracticeService interface {
	SubmitPractice(ctx context.Context, input PracticeInput) (*PracticeOutcome, error)
	ListPractices(ctx context.Context, songID string) ([]models.Practice, error)
}

type practiceService struct {
	store *store.Store
	now   func() time.Time
}

// NewPracticeService creates a new PracticeService
func NewPracticeService(st *store.Store) PracticeService {
	return &practiceService{store: st, now: time.Now}
}

func (s *practiceService) SubmitPractice(ctx context.Context, input PracticeInput) (*PracticeOutcome, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting practice: song_id=%s, minutes=%.1f", input.SongID, input.MinutesPlayed)

	if input.MinutesPlayed <= 0 {
		return nil, apperrors.NewValidationError("minutesPlayed", "must be positive")
	}
	if input.MinutesPlayed > maxPracticeMinutes {
		return nil, apperrors.NewValidationError("minutesPlayed", "implausibly long session")
	}
	if input.SongDuration != nil && *input.SongDuration <= 0 {
		return nil, apperrors.NewValidationError("songDuration", "must be positive")
	}

	song, err := s.store.GetSong(ctx, input.SongID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("song", input.SongID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	duration := 0.0
	switch {
	case song.SongDuration != nil:
		duration = *song.SongDuration
	case input.SongDuration != nil:
		duration = *input.SongDuration
	default:
		return nil, apperrors.NewValidationError("songDuration", "song has no duration; supply one")
	}

	now := s.now()
	result := leveling.UpdateSongWithPractice(*song, input.MinutesPlayed, duration, now)

	practice := models.Practice{
		ID:            uuid.NewString(),
		SongID:        song.ID,
		MinutesPlayed: input.MinutesPlayed,
		XPGain:        result.XPGain,
		PracticeDate:  now,
	}

	if err := s.store.UpdateSong(ctx, result.Song); err != nil {
		log.Error("failed to persist practiced song: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.store.CreatePractice(ctx, practice); err != nil {
		log.Error("failed to record practice: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	// The song's level moved, so decks containing it need fresh
	// aggregates.
	memberships, err := s.store.ListMembershipsBySong(ctx, song.ID)
	if err != nil {
		log.Warn("failed to list decks for song %s: %v", song.ID, err)
	}
	for _, m := range memberships {
		if _, err := s.store.RecomputeDeckAggregates(ctx, m.DeckID); err != nil {
			log.Warn("failed to refresh deck %s: %v", m.DeckID, err)
		}
	}

	updated, err := s.store.GetSong(ctx, song.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	log.Info("practice logged for %s: +%.1f xp, level %d", updated.Title, result.XPGain, derefInt(updated.Level))
	return &PracticeOutcome{Song: *updated, Practice: practice, XPGain: result.XPGain}, nil
}

func (s *practiceService) ListPractices(ctx context.Context, songID string) ([]models.Practice, error) {
	if _, err := s.store.GetSong(ctx, songID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("song", songID)
		}
		return nil, apperrors.NewInternalError(err)
	}
	practices, err := s.store.ListPracticesBySong(ctx, songID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return practices, nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
