package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/repository"
)

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db DBTX) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s, title=%s", d.ID, d.Title)

	d.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO decks (id, title, description, level, total_duration, creation_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, d.ID, d.Title, d.Description, nullInt(d.Level), d.TotalDuration, d.CreationDate, d.UpdatedAt)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
	}
	return err
}

func (r *deckRepository) Update(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("updating deck: id=%s", d.ID)

	d.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
UPDATE decks
SET title = ?, description = ?, level = ?, total_duration = ?, updated_at = ?
WHERE id = ?
`, d.Title, d.Description, nullInt(d.Level), d.TotalDuration, d.UpdatedAt, d.ID)
	if err != nil {
		log.Error("failed to update deck: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *deckRepository) Upsert(ctx context.Context, d models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("upserting deck: id=%s", d.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO decks (id, title, description, level, total_duration, creation_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title, description = excluded.description, level = excluded.level,
    total_duration = excluded.total_duration, creation_date = excluded.creation_date,
    updated_at = excluded.updated_at
`, d.ID, d.Title, d.Description, nullInt(d.Level), d.TotalDuration, d.CreationDate, d.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert deck: %v", err)
	}
	return err
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	var (
		d     models.Deck
		level sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, title, description, level, total_duration, creation_date, updated_at
FROM decks WHERE id = ?
`, id).Scan(&d.ID, &d.Title, &d.Description, &level, &d.TotalDuration, &d.CreationDate, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Level = intPtr(level)
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, description, level, total_duration, creation_date, updated_at
FROM decks
ORDER BY creation_date ASC
`)
	if err != nil {
		log.Error("failed to query decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var (
			d     models.Deck
			level sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &level, &d.TotalDuration, &d.CreationDate, &d.UpdatedAt); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		d.Level = intPtr(level)
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *deckRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM decks`)
	return err
}

func (r *deckRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks`).Scan(&count)
	return count, err
}

// RecomputeAggregates refreshes the derived level and total duration.
// Level is the rounded mean across member songs that have a level (null
// when none do); total duration sums member durations with missing ones
// counted as zero.
func (r *deckRepository) RecomputeAggregates(ctx context.Context, deckID string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("recomputing deck aggregates: deck_id=%s", deckID)

	var (
		avgLevel      sql.NullFloat64
		totalDuration float64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT AVG(s.level), COALESCE(SUM(COALESCE(s.song_duration, 0)), 0)
FROM deck_memberships m
JOIN songs s ON s.id = m.song_id
WHERE m.deck_id = ?
`, deckID).Scan(&avgLevel, &totalDuration)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to aggregate deck members: %v", err)
		return nil, err
	}

	var level *int
	if avgLevel.Valid {
		rounded := int(math.Round(avgLevel.Float64))
		level = &rounded
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE decks SET level = ?, total_duration = ?, updated_at = ? WHERE id = ?
`, nullInt(level), totalDuration, time.Now(), deckID)
	if err != nil {
		log.Error("failed to store deck aggregates: %v", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.Get(ctx, deckID)
}
