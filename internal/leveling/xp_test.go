package leveling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/fretlog/internal/leveling"
	"github.com/vytor/fretlog/internal/models"
)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestXPThreshold_KnownValues(t *testing.T) {
	assert.Equal(t, 50.0, leveling.XPThreshold(1))
	assert.Equal(t, 131.0, leveling.XPThreshold(2)) // floor(50 * 2^1.4)
	assert.Equal(t, 232.0, leveling.XPThreshold(3)) // floor(50 * 3^1.4)
}

func TestXPThreshold_StrictlyIncreasing(t *testing.T) {
	for level := 1; level < 100; level++ {
		assert.Less(t, leveling.XPThreshold(level), leveling.XPThreshold(level+1),
			"threshold must grow with level (level=%d)", level)
	}
}

func TestXPThreshold_Deterministic(t *testing.T) {
	for level := 1; level <= 50; level++ {
		assert.Equal(t, leveling.XPThreshold(level), leveling.XPThreshold(level))
	}
}

func TestDaysBetween_DateComponentsOnly(t *testing.T) {
	lateNight := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	earlyMorning := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, leveling.DaysBetween(lateNight, earlyMorning),
		"two minutes across midnight is still one calendar day")
	assert.Equal(t, 0, leveling.DaysBetween(earlyMorning, earlyMorning.Add(23*time.Hour)))
}

func TestStreakBonus_TableAndClamp(t *testing.T) {
	tests := []struct {
		days     int
		expected float64
	}{
		{days: 0, expected: 0},
		{days: 1, expected: 0.10},
		{days: 2, expected: 0.20},
		{days: 4, expected: 0.15},
		{days: 8, expected: 0},
		{days: 9, expected: 0},   // clamped to last entry
		{days: 365, expected: 0}, // clamped to last entry
		{days: -1, expected: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, leveling.StreakBonus(tt.days), "days=%d", tt.days)
	}
}

func TestCalculateXPGain_Formula(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	song := models.Song{
		Difficulty:          models.DifficultyNormal,
		Status:              models.StatusLearning,
		Level:               intPtr(1),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(1),
		SongDuration:        floatPtr(4),
		LastPracticeDate:    timePtr(now),
	}

	// 40 * (1/2) * (30/4) * (1 + 0.1*1) * (1 + 0) = 165
	gain := leveling.CalculateXPGain(song, 30, now)
	assert.InDelta(t, 165.0, gain, 1e-9)
}

func TestCalculateXPGain_StreakBonusApplied(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	song := models.Song{
		Difficulty:          models.DifficultyEasy,
		Status:              models.StatusLearning,
		Level:               intPtr(1),
		XP:                  floatPtr(0),
		HighestLevelReached: intPtr(1),
		SongDuration:        floatPtr(5),
		LastPracticeDate:    timePtr(now.AddDate(0, 0, -1)),
	}

	// 40 * 1 * (5/5) * 1.1 * 1.10 = 48.4
	gain := leveling.CalculateXPGain(song, 5, now)
	assert.InDelta(t, 48.4, gain, 1e-9)
}

func TestCalculateXPGain_MissingDurationIsNotFinite(t *testing.T) {
	now := time.Now()
	song := models.Song{
		Difficulty:          models.DifficultyNormal,
		Status:              models.StatusLearning,
		Level:               intPtr(1),
		HighestLevelReached: intPtr(1),
	}

	gain := leveling.CalculateXPGain(song, 10, now)
	assert.False(t, gain == gain && gain < 1e308 && gain > -1e308, "gain should not be finite without a duration")
}

func TestCalculateLevelUp_SingleLevel(t *testing.T) {
	song := models.Song{
		Status: models.StatusLearning,
		Level:  intPtr(1),
		XP:     floatPtr(0),
	}

	level, xp, status := leveling.CalculateLevelUp(song, 120)

	assert.Equal(t, 2, level, "120 covers the level-1 threshold of 50")
	assert.Equal(t, 70.0, xp, "remainder after subtracting the threshold")
	assert.Equal(t, models.StatusLearning, status)
}

func TestCalculateLevelUp_CascadesWithoutCap(t *testing.T) {
	song := models.Song{
		Status: models.StatusLearning,
		Level:  intPtr(1),
		XP:     floatPtr(0),
	}

	level, xp, _ := leveling.CalculateLevelUp(song, 100000)

	assert.Greater(t, level, 10, "a huge gain cascades several level-ups")
	assert.Less(t, xp, leveling.XPThreshold(level), "residual xp stays under the current threshold")
}

func TestCalculateLevelUp_StatusPromotion(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		total    float64
		status   models.Status
		expected models.Status
	}{
		{
			name:     "crossing refined threshold",
			level:    9,
			total:    leveling.XPThreshold(9),
			status:   models.StatusLearning,
			expected: models.StatusRefined,
		},
		{
			name:     "crossing mastered threshold",
			level:    24,
			total:    leveling.XPThreshold(24),
			status:   models.StatusRefined,
			expected: models.StatusMastered,
		},
		{
			name:     "below refined keeps current",
			level:    3,
			total:    10,
			status:   models.StatusLearning,
			expected: models.StatusLearning,
		},
		{
			name:     "never downgrades",
			level:    12,
			total:    10,
			status:   models.StatusMastered,
			expected: models.StatusMastered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := models.Song{
				Status: tt.status,
				Level:  intPtr(tt.level),
				XP:     floatPtr(0),
			}

			_, _, status := leveling.CalculateLevelUp(song, tt.total)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestCalculateLevelUp_InvariantHolds(t *testing.T) {
	song := models.Song{
		Status: models.StatusLearning,
		Level:  intPtr(1),
		XP:     floatPtr(0),
	}

	for _, total := range []float64{0, 49, 50, 120, 500, 12345} {
		level, xp, _ := leveling.CalculateLevelUp(song, total)
		require.Less(t, xp, leveling.XPThreshold(level),
			"xp must stay below the threshold for the resulting level (total=%v)", total)
		require.GreaterOrEqual(t, xp, 0.0)
	}
}
