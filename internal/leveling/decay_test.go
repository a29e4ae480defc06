package leveling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/fretlog/internal/leveling"
	"github.com/vytor/fretlog/internal/models"
)

var decayNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func learningSong(level int, xp float64, daysSincePractice int) models.Song {
	return models.Song{
		Difficulty:          models.DifficultyNormal,
		Status:              models.StatusLearning,
		Level:               intPtr(level),
		XP:                  floatPtr(xp),
		HighestLevelReached: intPtr(level),
		SongDuration:        floatPtr(4),
		LastPracticeDate:    timePtr(decayNow.AddDate(0, 0, -daysSincePractice)),
	}
}

func TestApplyDecay_SeenIsNoOp(t *testing.T) {
	song := models.Song{Status: models.StatusSeen}

	decayed := leveling.ApplyDecay(song, decayNow)

	assert.Equal(t, song, decayed)
	assert.Nil(t, decayed.Level)
	assert.Nil(t, decayed.XP)
	assert.Nil(t, decayed.LastDecayDate)
}

func TestApplyDecay_WithinGraceIsNoOp(t *testing.T) {
	song := learningSong(5, 100, 7)

	decayed := leveling.ApplyDecay(song, decayNow)

	assert.Equal(t, song, decayed, "7 days is still inside the grace period")
}

func TestApplyDecay_PastGraceLosesXP(t *testing.T) {
	song := learningSong(5, 100, 10)

	decayed := leveling.ApplyDecay(song, decayNow)

	require.NotNil(t, decayed.XP)
	// 3 decay days at rate 0.05*(1+0.15*1) = 0.0575: floor(100 * 0.9425^3) = 83
	assert.Equal(t, 83.0, *decayed.XP)
	require.NotNil(t, decayed.LastDecayDate)
	assert.True(t, decayed.LastDecayDate.Equal(decayNow))
}

func TestApplyDecay_IdempotentWithinSameDay(t *testing.T) {
	song := learningSong(5, 100, 10)

	once := leveling.ApplyDecay(song, decayNow)
	twice := leveling.ApplyDecay(once, decayNow.Add(2*time.Hour))

	assert.Equal(t, once, twice, "a second decay pass on the same day must not change anything")
}

func TestApplyDecay_MasteredPastGraceStepsToRefined(t *testing.T) {
	song := models.Song{
		Difficulty:          models.DifficultyHard,
		Status:              models.StatusMastered,
		Level:               intPtr(25),
		XP:                  floatPtr(500),
		HighestLevelReached: intPtr(25),
		LastPracticeDate:    timePtr(decayNow.AddDate(0, 0, -91)),
	}

	decayed := leveling.ApplyDecay(song, decayNow)

	assert.Equal(t, models.StatusRefined, decayed.Status)
	assert.Equal(t, 25, *decayed.Level, "mastered downgrade must not touch level")
	assert.Equal(t, 500.0, *decayed.XP, "mastered downgrade must not touch xp")
	require.NotNil(t, decayed.LastDecayDate)
	assert.True(t, decayed.LastDecayDate.Equal(decayNow))
}

func TestApplyDecay_MasteredWithinGraceIsNoOp(t *testing.T) {
	song := models.Song{
		Status:              models.StatusMastered,
		Difficulty:          models.DifficultyNormal,
		Level:               intPtr(25),
		XP:                  floatPtr(10),
		HighestLevelReached: intPtr(25),
		LastPracticeDate:    timePtr(decayNow.AddDate(0, 0, -90)),
	}

	decayed := leveling.ApplyDecay(song, decayNow)
	assert.Equal(t, song, decayed)
}

func TestApplyDecay_LevelWalksDown(t *testing.T) {
	// Level 3 with minimal residual xp, a month without practice.
	song := learningSong(3, 5, 37)

	decayed := leveling.ApplyDecay(song, decayNow)

	require.NotNil(t, decayed.Level)
	assert.Less(t, *decayed.Level, 3)
	assert.GreaterOrEqual(t, *decayed.Level, 1)
}

func TestApplyDecay_NeverBelowLevelOne(t *testing.T) {
	song := learningSong(2, 1, 400)

	decayed := leveling.ApplyDecay(song, decayNow)

	assert.Equal(t, 1, *decayed.Level)
	assert.GreaterOrEqual(t, *decayed.XP, 0.0)
}

func TestApplyDecay_StaleWhenFallenFromHigher(t *testing.T) {
	song := learningSong(2, 1, 400)
	song.HighestLevelReached = intPtr(8)

	decayed := leveling.ApplyDecay(song, decayNow)

	assert.Equal(t, 1, *decayed.Level)
	assert.Equal(t, models.StatusStale, decayed.Status)
}

func TestApplyDecay_RefinedDroppingBelowThresholdBecomesLearning(t *testing.T) {
	song := learningSong(10, 400, 9)
	song.Status = models.StatusRefined
	song.HighestLevelReached = intPtr(10)

	decayed := leveling.ApplyDecay(song, decayNow)

	require.NotNil(t, decayed.Level)
	// 2 decay days: floor(400 * 0.9425^2) = 355, which walks the level
	// down until it clears the level-4 threshold of 348.
	assert.Equal(t, 355.0, *decayed.XP)
	assert.Equal(t, 5, *decayed.Level)
	assert.Equal(t, models.StatusLearning, decayed.Status)
}

func TestApplyDecay_HarderSongsDecayFaster(t *testing.T) {
	easy := learningSong(5, 100, 20)
	easy.Difficulty = models.DifficultyEasy
	hard := learningSong(5, 100, 20)
	hard.Difficulty = models.DifficultyHard

	easyAfter := leveling.ApplyDecay(easy, decayNow)
	hardAfter := leveling.ApplyDecay(hard, decayNow)

	assert.Greater(t, *easyAfter.XP, *hardAfter.XP)
}
