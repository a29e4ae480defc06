package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/models"
)

func TestBackup_ExportImportRoundTrip(t *testing.T) {
	source := newTestStore(t)
	ctx := context.Background()

	_, songs := addDeckWithSongs(t, source, "Carried Over")
	_, err := NewPracticeService(source).SubmitPractice(ctx, PracticeInput{
		SongID:        songs[0].ID,
		MinutesPlayed: 30,
	})
	require.NoError(t, err)

	snap, err := NewBackupService(source).Export(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Songs, 1)
	assert.Len(t, snap.Practices, 1)
	assert.Len(t, snap.Decks, 1)
	assert.Len(t, snap.Memberships, 1)
	assert.False(t, snap.ExportedAt.IsZero())

	// Restore into a different device's store.
	target := newTestStore(t)
	require.NoError(t, NewBackupService(target).Import(ctx, snap))

	restored, err := NewBackupService(target).Export(ctx)
	require.NoError(t, err)
	assert.Len(t, restored.Songs, 1)
	assert.Len(t, restored.Practices, 1)
	assert.Equal(t, snap.Songs[0].ID, restored.Songs[0].ID)
	assert.Equal(t, snap.Songs[0].Title, restored.Songs[0].Title)
}

func TestImport_ReplacesExistingData(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	addDeckWithSongs(t, st, "Doomed")

	song := models.Song{
		ID: uuid.NewString(), Title: "Survivor", Artist: "Imported",
		Difficulty: models.DifficultyNormal, Status: models.StatusSeen,
		Tuning: models.StandardTuning,
	}
	require.NoError(t, NewBackupService(st).Import(ctx, &models.Snapshot{Songs: []models.Song{song}}))

	songs, err := NewSongService(st).ListSongs(ctx, models.SongFilter{})
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Survivor", songs[0].Title)

	decks, err := st.ListDecks(ctx)
	require.NoError(t, err)
	assert.Empty(t, decks)
}

func TestImport_RejectsDanglingReferences(t *testing.T) {
	st := newTestStore(t)
	svc := NewBackupService(st)
	ctx := context.Background()

	snap := &models.Snapshot{
		Practices: []models.Practice{{ID: uuid.NewString(), SongID: "not-in-snapshot"}},
	}
	err := svc.Import(ctx, snap)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)

	// The store is untouched.
	has, err := st.HasData(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestImport_NilSnapshot(t *testing.T) {
	err := NewBackupService(newTestStore(t)).Import(context.Background(), nil)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}
