package leveling

import (
	"time"

	"github.com/vytor/fretlog/internal/models"
)

// PracticeResult is the outcome of applying one practice session.
// XPGain is returned separately because level-ups reset the running XP
// counter, so the gain cannot be recovered from a before/after diff.
type PracticeResult struct {
	Song   models.Song
	XPGain float64
}

// UpdateSongWithPractice applies one practice session of minutesPlayed
// minutes to the song.
//
// A seen song is first initialized to learning at level 1 with the
// supplied duration. A song whose stored duration is missing adopts the
// supplied one. The XP gain is computed against the possibly
// just-initialized snapshot, added to the running total, and run through
// CalculateLevelUp. The last practice date is stamped to now and the
// highest level reached is raised when exceeded.
func UpdateSongWithPractice(song models.Song, minutesPlayed, songDuration float64, now time.Time) PracticeResult {
	if song.Status == models.StatusSeen {
		song = initializeForPractice(song, songDuration, now)
	} else if song.SongDuration == nil && songDuration > 0 {
		song.SongDuration = &songDuration
	}

	gain := CalculateXPGain(song, minutesPlayed, now)

	var total float64
	if song.XP != nil {
		total = *song.XP
	}
	level, xp, status := CalculateLevelUp(song, total+gain)
	song.Level = &level
	song.XP = &xp
	song.Status = status

	song.PracticeStreak = nextStreak(song, now)

	stamp := now
	song.LastPracticeDate = &stamp
	if song.HighestLevelReached == nil || level > *song.HighestLevelReached {
		song.HighestLevelReached = &level
	}

	return PracticeResult{Song: song, XPGain: gain}
}

// nextStreak advances the consecutive-day practice streak: practicing the
// day after the last session extends it, the same day keeps it, and any
// longer gap resets it to 1.
func nextStreak(song models.Song, now time.Time) *int {
	streak := 1
	if song.LastPracticeDate != nil && song.PracticeStreak != nil {
		switch DaysBetween(*song.LastPracticeDate, now) {
		case 0:
			streak = *song.PracticeStreak
		case 1:
			streak = *song.PracticeStreak + 1
		}
	}
	return &streak
}

func initializeForPractice(song models.Song, songDuration float64, now time.Time) models.Song {
	level := 1
	xp := 0.0
	highest := 1
	stamp := now

	song.Status = models.StatusLearning
	song.Level = &level
	song.XP = &xp
	song.HighestLevelReached = &highest
	song.LastPracticeDate = &stamp
	song.LastDecayDate = &stamp
	if songDuration > 0 {
		song.SongDuration = &songDuration
	}
	return song
}

// SeedStats synthesizes starting stats for a song added directly in a
// non-seen status. Seen songs get no stats at all.
func SeedStats(song models.Song, now time.Time) models.Song {
	addStamp := now
	song.AddDate = &addStamp
	if song.Status == models.StatusSeen {
		return song
	}

	level := 1
	highest := 1
	switch song.Status {
	case models.StatusRefined:
		level, highest = RefinedLevel, RefinedLevel
	case models.StatusMastered:
		level, highest = MasteredLevel, MasteredLevel
	case models.StatusStale:
		// Stale means decayed from something higher.
		level, highest = 1, 2
	}

	xp := 0.0
	stamp := now
	song.Level = &level
	song.XP = &xp
	song.HighestLevelReached = &highest
	song.LastPracticeDate = &stamp
	song.LastDecayDate = &stamp
	return song
}
