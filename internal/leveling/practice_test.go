package leveling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/fretlog/internal/leveling"
	"github.com/vytor/fretlog/internal/models"
)

var practiceNow = time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)

func TestUpdateSongWithPractice_InitializesSeenSong(t *testing.T) {
	song := models.Song{
		Title:      "Blackbird",
		Difficulty: models.DifficultyNormal,
		Status:     models.StatusSeen,
	}

	res := leveling.UpdateSongWithPractice(song, 30, 4, practiceNow)
	updated := res.Song

	// 40 * (1/2) * (30/4) * (1 + 0.1*1) * (1 + 0) = 165, which clears the
	// level-1 threshold of 50 and leaves 115.
	assert.InDelta(t, 165.0, res.XPGain, 1e-9)
	require.NotNil(t, updated.Level)
	require.NotNil(t, updated.XP)
	assert.Equal(t, 2, *updated.Level)
	assert.InDelta(t, 115.0, *updated.XP, 1e-9)
	assert.Equal(t, models.StatusLearning, updated.Status)
	assert.Equal(t, 2, *updated.HighestLevelReached)
	require.NotNil(t, updated.SongDuration)
	assert.Equal(t, 4.0, *updated.SongDuration)
	require.NotNil(t, updated.LastPracticeDate)
	assert.True(t, updated.LastPracticeDate.Equal(practiceNow))
	require.NotNil(t, updated.LastDecayDate)
}

func TestUpdateSongWithPractice_AdoptsMissingDuration(t *testing.T) {
	song := models.Song{
		Difficulty:          models.DifficultyEasy,
		Status:              models.StatusLearning,
		Level:               intPtr(1),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(1),
		LastPracticeDate:    timePtr(practiceNow),
	}

	res := leveling.UpdateSongWithPractice(song, 10, 5, practiceNow)

	require.NotNil(t, res.Song.SongDuration)
	assert.Equal(t, 5.0, *res.Song.SongDuration)
}

func TestUpdateSongWithPractice_KeepsStoredDuration(t *testing.T) {
	song := models.Song{
		Difficulty:          models.DifficultyEasy,
		Status:              models.StatusLearning,
		Level:               intPtr(1),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(1),
		SongDuration:        floatPtr(3),
		LastPracticeDate:    timePtr(practiceNow),
	}

	res := leveling.UpdateSongWithPractice(song, 10, 5, practiceNow)

	assert.Equal(t, 3.0, *res.Song.SongDuration, "a stored duration wins over the supplied one")
}

func TestUpdateSongWithPractice_RaisesHighestLevel(t *testing.T) {
	song := models.Song{
		Difficulty:          models.DifficultyEasy,
		Status:              models.StatusLearning,
		Level:               intPtr(3),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(3),
		SongDuration:        floatPtr(3),
		LastPracticeDate:    timePtr(practiceNow),
	}

	res := leveling.UpdateSongWithPractice(song, 60, 3, practiceNow)

	require.NotNil(t, res.Song.Level)
	if *res.Song.Level > 3 {
		assert.Equal(t, *res.Song.Level, *res.Song.HighestLevelReached)
	}
}

func TestUpdateSongWithPractice_DoesNotLowerHighestLevel(t *testing.T) {
	// A stale song that fell to level 1 keeps its old peak.
	song := models.Song{
		Difficulty:          models.DifficultyNormal,
		Status:              models.StatusStale,
		Level:               intPtr(1),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(9),
		SongDuration:        floatPtr(4),
		LastPracticeDate:    timePtr(practiceNow.AddDate(0, 0, -30)),
	}

	res := leveling.UpdateSongWithPractice(song, 5, 4, practiceNow)

	assert.Equal(t, 9, *res.Song.HighestLevelReached)
}

func TestUpdateSongWithPractice_StreakProgression(t *testing.T) {
	song := models.Song{
		Difficulty:          models.DifficultyEasy,
		Status:              models.StatusLearning,
		Level:               intPtr(1),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(1),
		SongDuration:        floatPtr(3),
		PracticeStreak:      intPtr(4),
		LastPracticeDate:    timePtr(practiceNow.AddDate(0, 0, -1)),
	}

	res := leveling.UpdateSongWithPractice(song, 3, 3, practiceNow)
	require.NotNil(t, res.Song.PracticeStreak)
	assert.Equal(t, 5, *res.Song.PracticeStreak, "practicing the next day extends the streak")

	gapped := song
	gapped.LastPracticeDate = timePtr(practiceNow.AddDate(0, 0, -3))
	res = leveling.UpdateSongWithPractice(gapped, 3, 3, practiceNow)
	assert.Equal(t, 1, *res.Song.PracticeStreak, "a gap resets the streak")
}

func TestUpdateSongWithPractice_SeenInvariantRestored(t *testing.T) {
	song := models.Song{Difficulty: models.DifficultyHard, Status: models.StatusSeen}

	res := leveling.UpdateSongWithPractice(song, 10, 4, practiceNow)
	updated := res.Song

	// Once practiced, a song must carry the full stat set.
	assert.NotEqual(t, models.StatusSeen, updated.Status)
	assert.NotNil(t, updated.Level)
	assert.NotNil(t, updated.XP)
	assert.NotNil(t, updated.HighestLevelReached)
	assert.NotNil(t, updated.LastPracticeDate)
	assert.NotNil(t, updated.LastDecayDate)
}

func TestSeedStats(t *testing.T) {
	tests := []struct {
		status          models.Status
		expectedLevel   int
		expectedHighest int
	}{
		{status: models.StatusLearning, expectedLevel: 1, expectedHighest: 1},
		{status: models.StatusStale, expectedLevel: 1, expectedHighest: 2},
		{status: models.StatusRefined, expectedLevel: 10, expectedHighest: 10},
		{status: models.StatusMastered, expectedLevel: 25, expectedHighest: 25},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			song := leveling.SeedStats(models.Song{Status: tt.status}, practiceNow)

			require.NotNil(t, song.Level)
			assert.Equal(t, tt.expectedLevel, *song.Level)
			assert.Equal(t, tt.expectedHighest, *song.HighestLevelReached)
			assert.Equal(t, 0.0, *song.XP)
			assert.NotNil(t, song.AddDate)
			assert.NotNil(t, song.LastPracticeDate)
			assert.NotNil(t, song.LastDecayDate)
		})
	}
}

func TestSeedStats_SeenStaysBare(t *testing.T) {
	song := leveling.SeedStats(models.Song{Status: models.StatusSeen}, practiceNow)

	assert.Nil(t, song.Level)
	assert.Nil(t, song.XP)
	assert.Nil(t, song.HighestLevelReached)
	assert.Nil(t, song.LastPracticeDate)
	assert.Nil(t, song.LastDecayDate)
	assert.NotNil(t, song.AddDate)
}
