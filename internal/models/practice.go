package models

import "time"

// Practice is an immutable record of one practice session.
// It is created by practice submission and only ever removed by the
// cascade when its song is deleted.
type Practice struct {
	ID            string    `json:"id"`
	SongID        string    `json:"songId"`
	MinutesPlayed float64   `json:"minutesPlayed"`
	XPGain        float64   `json:"xpGain"`
	PracticeDate  time.Time `json:"practiceDate"`
	UpdatedAt     time.Time `json:"updated_at"`
}
