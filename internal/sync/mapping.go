package sync

import (
	"fmt"
	"time"

	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/remote"
	"github.com/vytor/fretlog/internal/store"
)

// Remote table names, one per entity type.
const (
	TableSongs       = "songs"
	TablePractices   = "practices"
	TableDecks       = "decks"
	TableMemberships = "deck_songs"
)

func entityTable(entity store.EntityType) string {
	switch entity {
	case store.EntitySong:
		return TableSongs
	case store.EntityPractice:
		return TablePractices
	case store.EntityDeck:
		return TableDecks
	case store.EntityMembership:
		return TableMemberships
	}
	return ""
}

// The remote schema forbids NULL for its integer and xp columns, so
// those get a zero default on the way up. Local records are never
// altered; the zeros are reconstructed back to nil on pull for songs
// that have no stats yet.

func songToRow(s models.Song) remote.Row {
	return remote.Row{
		"id":                    s.ID,
		"title":                 s.Title,
		"artist":                s.Artist,
		"difficulty":            string(s.Difficulty),
		"status":                string(s.Status),
		"level":                 zeroInt(s.Level),
		"xp":                    zeroFloat(s.XP),
		"highest_level_reached": zeroInt(s.HighestLevelReached),
		"song_duration":         nullableFloat(s.SongDuration),
		"practice_streak":       zeroInt(s.PracticeStreak),
		"last_practice_date":    nullableTime(s.LastPracticeDate),
		"last_decay_date":       nullableTime(s.LastDecayDate),
		"add_date":              nullableTime(s.AddDate),
		"tuning":                []string(s.Tuning),
		"capo":                  s.Capo,
		"lyrics":                s.Lyrics,
		"updated_at":            encodeTime(s.UpdatedAt),
	}
}

func songFromRow(row remote.Row) (models.Song, error) {
	s := models.Song{
		ID:         asString(row["id"]),
		Title:      asString(row["title"]),
		Artist:     asString(row["artist"]),
		Difficulty: models.Difficulty(asString(row["difficulty"])),
		Status:     models.Status(asString(row["status"])),
		Tuning:     asTuning(row["tuning"]),
		Capo:       asInt(row["capo"]),
		Lyrics:     asString(row["lyrics"]),
	}
	if s.ID == "" {
		return models.Song{}, fmt.Errorf("song row missing id")
	}

	updatedAt, err := decodeTime(row["updated_at"])
	if err != nil {
		return models.Song{}, fmt.Errorf("song %s: %w", s.ID, err)
	}
	if updatedAt != nil {
		s.UpdatedAt = *updatedAt
	}

	if duration := row["song_duration"]; duration != nil {
		d := asFloat(duration)
		s.SongDuration = &d
	}

	// Songs without stats carry zero defaults remotely; those become
	// nil again here so the no-stats shape survives the round trip.
	if s.Status != models.StatusSeen {
		level := asInt(row["level"])
		xp := asFloat(row["xp"])
		highest := asInt(row["highest_level_reached"])
		streak := asInt(row["practice_streak"])
		s.Level = &level
		s.XP = &xp
		s.HighestLevelReached = &highest
		s.PracticeStreak = &streak

		if s.LastPracticeDate, err = decodeTime(row["last_practice_date"]); err != nil {
			return models.Song{}, fmt.Errorf("song %s: %w", s.ID, err)
		}
		if s.LastDecayDate, err = decodeTime(row["last_decay_date"]); err != nil {
			return models.Song{}, fmt.Errorf("song %s: %w", s.ID, err)
		}
	}
	if s.AddDate, err = decodeTime(row["add_date"]); err != nil {
		return models.Song{}, fmt.Errorf("song %s: %w", s.ID, err)
	}
	return s, nil
}

func practiceToRow(p models.Practice) remote.Row {
	return remote.Row{
		"id":             p.ID,
		"song_id":        p.SongID,
		"minutes_played": p.MinutesPlayed,
		"xp_gain":        p.XPGain,
		"practice_date":  encodeTime(p.PracticeDate),
		"updated_at":     encodeTime(p.UpdatedAt),
	}
}

func practiceFromRow(row remote.Row) (models.Practice, error) {
	p := models.Practice{
		ID:            asString(row["id"]),
		SongID:        asString(row["song_id"]),
		MinutesPlayed: asFloat(row["minutes_played"]),
		XPGain:        asFloat(row["xp_gain"]),
	}
	if p.ID == "" {
		return models.Practice{}, fmt.Errorf("practice row missing id")
	}

	practiceDate, err := decodeTime(row["practice_date"])
	if err != nil {
		return models.Practice{}, fmt.Errorf("practice %s: %w", p.ID, err)
	}
	if practiceDate != nil {
		p.PracticeDate = *practiceDate
	}
	updatedAt, err := decodeTime(row["updated_at"])
	if err != nil {
		return models.Practice{}, fmt.Errorf("practice %s: %w", p.ID, err)
	}
	if updatedAt != nil {
		p.UpdatedAt = *updatedAt
	}
	return p, nil
}

func deckToRow(d models.Deck) remote.Row {
	return remote.Row{
		"id":             d.ID,
		"title":          d.Title,
		"description":    d.Description,
		"level":          zeroInt(d.Level),
		"total_duration": d.TotalDuration,
		"creation_date":  encodeTime(d.CreationDate),
		"updated_at":     encodeTime(d.UpdatedAt),
	}
}

func deckFromRow(row remote.Row) (models.Deck, error) {
	d := models.Deck{
		ID:            asString(row["id"]),
		Title:         asString(row["title"]),
		Description:   asString(row["description"]),
		TotalDuration: asFloat(row["total_duration"]),
	}
	if d.ID == "" {
		return models.Deck{}, fmt.Errorf("deck row missing id")
	}

	// Member song levels start at 1, so a zero deck level can only be
	// the pushed stand-in for "no leveled members yet".
	if level := asInt(row["level"]); level > 0 {
		d.Level = &level
	}

	creationDate, err := decodeTime(row["creation_date"])
	if err != nil {
		return models.Deck{}, fmt.Errorf("deck %s: %w", d.ID, err)
	}
	if creationDate != nil {
		d.CreationDate = *creationDate
	}
	updatedAt, err := decodeTime(row["updated_at"])
	if err != nil {
		return models.Deck{}, fmt.Errorf("deck %s: %w", d.ID, err)
	}
	if updatedAt != nil {
		d.UpdatedAt = *updatedAt
	}
	return d, nil
}

func membershipToRow(m models.DeckMembership) remote.Row {
	return remote.Row{
		"id":         m.ID,
		"deck_id":    m.DeckID,
		"song_id":    m.SongID,
		"sort_order": m.Order,
		"added_date": encodeTime(m.AddedDate),
		"updated_at": encodeTime(m.UpdatedAt),
	}
}

func membershipFromRow(row remote.Row) (models.DeckMembership, error) {
	m := models.DeckMembership{
		ID:     asString(row["id"]),
		DeckID: asString(row["deck_id"]),
		SongID: asString(row["song_id"]),
		Order:  int64(asInt(row["sort_order"])),
	}
	if m.ID == "" {
		return models.DeckMembership{}, fmt.Errorf("membership row missing id")
	}

	addedDate, err := decodeTime(row["added_date"])
	if err != nil {
		return models.DeckMembership{}, fmt.Errorf("membership %s: %w", m.ID, err)
	}
	if addedDate != nil {
		m.AddedDate = *addedDate
	}
	updatedAt, err := decodeTime(row["updated_at"])
	if err != nil {
		return models.DeckMembership{}, fmt.Errorf("membership %s: %w", m.ID, err)
	}
	if updatedAt != nil {
		m.UpdatedAt = *updatedAt
	}
	return m, nil
}

// --- Value coercion helpers. JSON numbers arrive as float64. ---

func zeroInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func zeroFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(v any) (*time.Time, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", val, err)
		}
		return &t, nil
	case time.Time:
		return &val, nil
	default:
		return nil, fmt.Errorf("bad timestamp type %T", v)
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return 0
}

func asInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case int64:
		return int(val)
	}
	return 0
}

func asTuning(v any) models.Tuning {
	switch val := v.(type) {
	case []string:
		return models.Tuning(val)
	case []any:
		tuning := make(models.Tuning, 0, len(val))
		for _, item := range val {
			tuning = append(tuning, asString(item))
		}
		return tuning
	}
	return models.StandardTuning
}
