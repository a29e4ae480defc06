package services

import (
	"context"

	apperrors "github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/store"
)

// BackupService exports and restores full snapshots of the library.
type BackupService interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	Import(ctx context.Context, snap *models.Snapshot) error
}

type backupService struct {
	store *store.Store
}

// NewBackupService creates a new BackupService
func NewBackupService(st *store.Store) BackupService {
	return &backupService{store: st}
}

func (s *backupService) Export(ctx context.Context) (*models.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return snap, nil
}

// Import replaces the entire local library with the snapshot in one
// transaction: either every record lands or none do.
func (s *backupService) Import(ctx context.Context, snap *models.Snapshot) error {
	log := logger.FromContext(ctx)

	if snap == nil {
		return apperrors.NewBadRequestError("missing snapshot")
	}
	songIDs := make(map[string]bool, len(snap.Songs))
	for _, song := range snap.Songs {
		if song.ID == "" {
			return apperrors.NewValidationError("songs", "every song needs an id")
		}
		songIDs[song.ID] = true
	}
	deckIDs := make(map[string]bool, len(snap.Decks))
	for _, deck := range snap.Decks {
		if deck.ID == "" {
			return apperrors.NewValidationError("decks", "every deck needs an id")
		}
		deckIDs[deck.ID] = true
	}
	for _, practice := range snap.Practices {
		if practice.ID == "" || !songIDs[practice.SongID] {
			return apperrors.NewValidationError("practices", "practice references a song missing from the snapshot")
		}
	}
	for _, m := range snap.Memberships {
		if m.ID == "" || !deckIDs[m.DeckID] || !songIDs[m.SongID] {
			return apperrors.NewValidationError("memberships", "membership references a record missing from the snapshot")
		}
	}

	if err := s.store.ReplaceAll(ctx, snap); err != nil {
		log.Error("failed to import snapshot: %v", err)
		return apperrors.NewInternalError(err)
	}
	log.Info("imported snapshot: %d songs, %d practices, %d decks, %d memberships",
		len(snap.Songs), len(snap.Practices), len(snap.Decks), len(snap.Memberships))
	return nil
}
