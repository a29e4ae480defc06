package models

import "time"

// Snapshot is a full export of the four entity collections, used by
// backup and restore.
type Snapshot struct {
	Songs       []Song           `json:"songs"`
	Practices   []Practice       `json:"practices"`
	Decks       []Deck           `json:"decks"`
	Memberships []DeckMembership `json:"memberships"`
	ExportedAt  time.Time        `json:"exportedAt"`
}
