package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/store"
	"github.com/vytor/fretlog/internal/testutil"
)

func TestIsLegacyID(t *testing.T) {
	assert.True(t, isLegacyID("1"))
	assert.True(t, isLegacyID("42"))
	assert.False(t, isLegacyID(""))
	assert.False(t, isLegacyID(uuid.NewString()))
	assert.False(t, isLegacyID("song-1"))
}

func TestMigrateIdentifiers_RewritesRecordsAndReferences(t *testing.T) {
	st := store.New(testutil.NewTestDB(t), store.NewHub())
	ctx := context.Background()
	now := time.Now()

	level := 3
	xp := 80.0
	require.NoError(t, st.PutSongDirect(ctx, models.Song{
		ID: "1", Title: "Legacy Song", Artist: "Old App",
		Difficulty: models.DifficultyNormal, Status: models.StatusLearning,
		Level: &level, XP: &xp, HighestLevelReached: &level,
		LastPracticeDate: &now, Tuning: models.StandardTuning, UpdatedAt: now,
	}))
	modernSongID := uuid.NewString()
	require.NoError(t, st.PutSongDirect(ctx, models.Song{
		ID: modernSongID, Title: "Modern Song", Artist: "New App",
		Difficulty: models.DifficultyEasy, Status: models.StatusSeen,
		Tuning: models.StandardTuning, UpdatedAt: now,
	}))
	require.NoError(t, st.PutDeckDirect(ctx, models.Deck{
		ID: "2", Title: "Legacy Deck", CreationDate: now, UpdatedAt: now,
	}))
	require.NoError(t, st.PutPracticeDirect(ctx, models.Practice{
		ID: "3", SongID: "1", MinutesPlayed: 15, XPGain: 30, PracticeDate: now, UpdatedAt: now,
	}))
	require.NoError(t, st.PutMembershipDirect(ctx, models.DeckMembership{
		ID: "4", DeckID: "2", SongID: "1", Order: 1, AddedDate: now, UpdatedAt: now,
	}))

	migrated, err := migrateIdentifiers(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 4, migrated)

	songs, err := st.ListSongs(ctx, models.SongFilter{})
	require.NoError(t, err)
	require.Len(t, songs, 2)
	var migratedSongID string
	for _, song := range songs {
		assert.False(t, isLegacyID(song.ID))
		if song.Title == "Legacy Song" {
			migratedSongID = song.ID
		}
	}
	require.NotEmpty(t, migratedSongID)
	assert.NotEqual(t, "1", migratedSongID)

	decks, err := st.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.False(t, isLegacyID(decks[0].ID))

	practices, err := st.ListPractices(ctx)
	require.NoError(t, err)
	require.Len(t, practices, 1)
	assert.False(t, isLegacyID(practices[0].ID))
	assert.Equal(t, migratedSongID, practices[0].SongID)

	memberships, err := st.ListMemberships(ctx)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.False(t, isLegacyID(memberships[0].ID))
	assert.Equal(t, migratedSongID, memberships[0].SongID)
	assert.Equal(t, decks[0].ID, memberships[0].DeckID)
}

func TestMigrateIdentifiers_NoLegacyRecordsIsNoop(t *testing.T) {
	st := store.New(testutil.NewTestDB(t), store.NewHub())
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, st.PutSongDirect(ctx, models.Song{
		ID: id, Title: "Fine As Is", Artist: "Somebody",
		Difficulty: models.DifficultyHard, Status: models.StatusSeen,
		Tuning: models.StandardTuning, UpdatedAt: time.Now(),
	}))

	migrated, err := migrateIdentifiers(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, migrated)

	song, err := st.GetSong(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Fine As Is", song.Title)
}
