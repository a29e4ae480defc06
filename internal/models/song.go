package models

import "time"

// Difficulty classifies how hard a song is to play.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Multiplier returns the numeric difficulty multiplier used by the
// leveling engine (easy=1, normal=2, hard=3).
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyNormal:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	}
	return false
}

// Status is a song's lifecycle state.
//
// A song in StatusSeen carries no leveling stats at all; any other status
// carries a non-nil level and xp.
type Status string

const (
	StatusSeen     Status = "seen"
	StatusLearning Status = "learning"
	StatusStale    Status = "stale"
	StatusRefined  Status = "refined"
	StatusMastered Status = "mastered"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSeen, StatusLearning, StatusStale, StatusRefined, StatusMastered:
		return true
	}
	return false
}

// Rank orders statuses by progression so upgrades never regress.
func (s Status) Rank() int {
	switch s {
	case StatusSeen:
		return 0
	case StatusLearning:
		return 1
	case StatusStale:
		return 2
	case StatusRefined:
		return 3
	case StatusMastered:
		return 4
	default:
		return 0
	}
}

// Tuning is the pitch name of each string, low to high.
type Tuning []string

// StandardTuning is EADGBE.
var StandardTuning = Tuning{"E", "A", "D", "G", "B", "E"}

// Valid reports whether the tuning names all six strings.
func (t Tuning) Valid() bool {
	if len(t) != 6 {
		return false
	}
	for _, s := range t {
		if s == "" {
			return false
		}
	}
	return true
}

type Song struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Artist              string     `json:"artist"`
	Difficulty          Difficulty `json:"difficulty"`
	Status              Status     `json:"status"`
	Level               *int       `json:"level"`
	XP                  *float64   `json:"xp"`
	HighestLevelReached *int       `json:"highestLevelReached"`
	SongDuration        *float64   `json:"songDuration"` // minutes
	PracticeStreak      *int       `json:"practiceStreak"`
	LastPracticeDate    *time.Time `json:"lastPracticeDate"`
	LastDecayDate       *time.Time `json:"lastDecayDate"`
	AddDate             *time.Time `json:"addDate"`
	Tuning              Tuning     `json:"tuning"`
	Capo                int        `json:"capo"`
	Lyrics              string     `json:"lyrics"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HasStats reports whether the song carries leveling stats.
// Seen songs have none.
func (s Song) HasStats() bool {
	return s.Status != StatusSeen
}

// SongFilter narrows song listings.
type SongFilter struct {
	Status     Status
	Difficulty Difficulty
	Search     string // matches title or artist
	Limit      int
	Offset     int
	OrderBy    string
	OrderDir   string
}

// SongStats is the aggregate practice history of one song.
type SongStats struct {
	SongID       string  `json:"songId"`
	TotalMinutes float64 `json:"totalMinutes"`
	Sessions     int     `json:"sessions"`
}
