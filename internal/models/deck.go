package models

import "time"

// MasteredDeckID identifies the reserved virtual deck of all mastered
// songs. It is never persisted and cannot be edited or deleted.
const MasteredDeckID = "mastered"

// MasteredDeckLevel is the fixed level shown for the virtual mastered
// deck instead of the computed average.
const MasteredDeckLevel = 25

type Deck struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Level         *int      `json:"level"`         // derived: rounded mean of member levels
	TotalDuration float64   `json:"totalDuration"` // derived: sum of member durations
	CreationDate  time.Time `json:"creationDate"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Virtual reports whether the deck is the synthesized mastered deck.
func (d Deck) Virtual() bool {
	return d.ID == MasteredDeckID
}

// DeckMembership associates one song with one deck. A song appears at
// most once per deck. Order defaults to the insertion-time timestamp in
// milliseconds so new members sort last.
type DeckMembership struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deckId"`
	SongID    string    `json:"songId"`
	Order     int64     `json:"order"`
	AddedDate time.Time `json:"addedDate"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VirtualMasteredDeck synthesizes the reserved mastered deck from the
// given songs. Songs that are not mastered are ignored.
func VirtualMasteredDeck(songs []Song) Deck {
	level := MasteredDeckLevel
	deck := Deck{
		ID:          MasteredDeckID,
		Title:       "Mastered",
		Description: "Every song you have mastered",
		Level:       &level,
	}
	for _, s := range songs {
		if s.Status != StatusMastered {
			continue
		}
		if s.SongDuration != nil {
			deck.TotalDuration += *s.SongDuration
		}
	}
	return deck
}
