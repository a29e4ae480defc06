// Package leveling implements the XP, level-up and decay rules for songs.
// Every function is pure: it takes a song snapshot and a clock value and
// returns derived values or a new snapshot, never touching storage.
package leveling

import (
	"math"
	"time"

	"github.com/vytor/fretlog/internal/models"
)

const (
	// XPBase and XPExponent define the per-level XP threshold curve.
	XPBase     = 50.0
	XPExponent = 1.4

	// XPPracticeBase is the base XP awarded per practice session before
	// difficulty, duration, level and streak scaling.
	XPPracticeBase = 40.0

	// RefinedLevel and MasteredLevel are the status promotion thresholds.
	RefinedLevel  = 10
	MasteredLevel = 25
)

// streakBonuses is indexed by whole days since the last practice.
// Lookups beyond the table clamp to the last entry.
var streakBonuses = []float64{0, 0.10, 0.20, 0.20, 0.15, 0.15, 0.10, 0.10, 0}

// XPThreshold returns the XP required to advance from the given level to
// the next. Strictly increasing for level >= 1.
func XPThreshold(level int) float64 {
	if level < 1 {
		level = 1
	}
	return math.Floor(XPBase * math.Pow(float64(level), XPExponent))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Only the date components are compared, so 23:59 to 00:01 the next day
// counts as one day.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// StreakBonus returns the multiplicative XP bonus for a practice that
// happens the given number of whole days after the previous one.
func StreakBonus(daysSincePractice int) float64 {
	if daysSincePractice < 0 {
		daysSincePractice = 0
	}
	if daysSincePractice >= len(streakBonuses) {
		return streakBonuses[len(streakBonuses)-1]
	}
	return streakBonuses[daysSincePractice]
}

// CalculateXPGain computes the XP earned by practicing the song for the
// given number of minutes at the given time.
//
// The song must have a resolved, positive SongDuration; without one the
// result is not finite. Callers resolve the duration before invoking.
func CalculateXPGain(song models.Song, minutesPlayed float64, now time.Time) float64 {
	var duration float64
	if song.SongDuration != nil {
		duration = *song.SongDuration
	}

	highest := 1
	if song.HighestLevelReached != nil {
		highest = *song.HighestLevelReached
	}

	days := 0
	if song.LastPracticeDate != nil {
		days = DaysBetween(*song.LastPracticeDate, now)
	}

	return XPPracticeBase *
		(1 / song.Difficulty.Multiplier()) *
		(minutesPlayed / duration) *
		(1 + 0.1*float64(highest)) *
		(1 + StreakBonus(days))
}

// CalculateLevelUp applies a new running XP total to the song's current
// level, cascading through as many level-ups as the total covers. There
// is no cap: a single large gain can raise several levels in one call.
//
// The returned status is promoted when the new level crosses the refined
// or mastered threshold and is never downgraded.
func CalculateLevelUp(song models.Song, newXPTotal float64) (level int, xp float64, status models.Status) {
	level = 1
	if song.Level != nil {
		level = *song.Level
	}
	xp = newXPTotal

	for xp >= XPThreshold(level) {
		xp -= XPThreshold(level)
		level++
	}

	status = song.Status
	var promoted models.Status
	switch {
	case level >= MasteredLevel:
		promoted = models.StatusMastered
	case level >= RefinedLevel:
		promoted = models.StatusRefined
	default:
		promoted = status
	}
	if promoted.Rank() > status.Rank() {
		status = promoted
	}
	return level, xp, status
}
