package leveling

import (
	"math"
	"time"

	"github.com/vytor/fretlog/internal/models"
)

const (
	// decayGraceDays is how long a non-mastered song may go unpracticed
	// before decay starts.
	decayGraceDays = 7

	// masteredGraceDays is the longer grace period for mastered songs.
	masteredGraceDays = 90

	// dailyDecayRate is the base fraction of XP lost per decay day.
	dailyDecayRate = 0.05

	// difficultyDecayScaling raises the decay rate per difficulty step.
	difficultyDecayScaling = 0.15
)

// ApplyDecay regresses a song that has gone unpracticed past its grace
// period and returns the new snapshot.
//
// Seen songs and songs within grace are returned unchanged. Decay runs at
// most once per calendar day: a second call on the same day is a no-op.
// A mastered song past grace only steps down to refined; its level and XP
// are untouched. Any other song past grace loses XP at the effective
// daily rate compounded over the days beyond grace, then walks its level
// down (never below 1) and recomputes status.
func ApplyDecay(song models.Song, now time.Time) models.Song {
	if song.Status == models.StatusSeen || song.LastPracticeDate == nil {
		return song
	}

	daysSincePractice := DaysBetween(*song.LastPracticeDate, now)

	if song.Status == models.StatusMastered {
		if daysSincePractice <= masteredGraceDays {
			return song
		}
		song.Status = models.StatusRefined
		stamp := now
		song.LastDecayDate = &stamp
		return song
	}

	if daysSincePractice <= decayGraceDays {
		return song
	}
	if song.LastDecayDate != nil && DaysBetween(*song.LastDecayDate, now) < 1 {
		return song
	}

	level := 1
	if song.Level != nil {
		level = *song.Level
	}
	var xp float64
	if song.XP != nil {
		xp = *song.XP
	}

	decayDays := daysSincePractice - decayGraceDays
	rate := dailyDecayRate * (1 + difficultyDecayScaling*(song.Difficulty.Multiplier()-1))
	xp = math.Floor(xp * math.Pow(1-rate, float64(decayDays)))

	for level > 1 && xp < XPThreshold(level-1) {
		level--
	}

	highest := level
	if song.HighestLevelReached != nil {
		highest = *song.HighestLevelReached
	}
	switch {
	case level == 1 && highest > 1:
		song.Status = models.StatusStale
	case level < RefinedLevel:
		song.Status = models.StatusLearning
	}

	song.Level = &level
	song.XP = &xp
	stamp := now
	song.LastDecayDate = &stamp
	return song
}
