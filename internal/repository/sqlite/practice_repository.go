package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/repository"
)

type practiceRepository struct {
	db DBTX
}

// NewPracticeRepository creates a new PracticeRepository implementation
func NewPracticeRepository(db DBTX) repository.PracticeRepository {
	return &practiceRepository{db: db}
}

func (r *practiceRepository) Insert(ctx context.Context, p models.Practice) error {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")
	log.Debug("inserting practice: id=%s, song_id=%s, minutes=%.1f", p.ID, p.SongID, p.MinutesPlayed)

	p.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO practices (id, song_id, minutes_played, xp_gain, practice_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, p.ID, p.SongID, p.MinutesPlayed, p.XPGain, p.PracticeDate, p.UpdatedAt)
	if err != nil {
		log.Error("failed to insert practice: %v", err)
	}
	return err
}

func (r *practiceRepository) Upsert(ctx context.Context, p models.Practice) error {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")
	log.Debug("upserting practice: id=%s", p.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO practices (id, song_id, minutes_played, xp_gain, practice_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    song_id = excluded.song_id, minutes_played = excluded.minutes_played,
    xp_gain = excluded.xp_gain, practice_date = excluded.practice_date,
    updated_at = excluded.updated_at
`, p.ID, p.SongID, p.MinutesPlayed, p.XPGain, p.PracticeDate, p.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert practice: %v", err)
	}
	return err
}

func (r *practiceRepository) Get(ctx context.Context, id string) (*models.Practice, error) {
	var p models.Practice
	err := r.db.QueryRowContext(ctx, `
SELECT id, song_id, minutes_played, xp_gain, practice_date, updated_at
FROM practices WHERE id = ?
`, id).Scan(&p.ID, &p.SongID, &p.MinutesPlayed, &p.XPGain, &p.PracticeDate, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *practiceRepository) ListBySong(ctx context.Context, songID string) ([]models.Practice, error) {
	return r.list(ctx, `
SELECT id, song_id, minutes_played, xp_gain, practice_date, updated_at
FROM practices WHERE song_id = ?
ORDER BY practice_date DESC
`, songID)
}

func (r *practiceRepository) ListAll(ctx context.Context) ([]models.Practice, error) {
	return r.list(ctx, `
SELECT id, song_id, minutes_played, xp_gain, practice_date, updated_at
FROM practices
ORDER BY practice_date DESC
`)
}

func (r *practiceRepository) list(ctx context.Context, query string, args ...any) ([]models.Practice, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query practices: %v", err)
		return nil, err
	}
	defer rows.Close()

	var practices []models.Practice
	for rows.Next() {
		var p models.Practice
		if err := rows.Scan(&p.ID, &p.SongID, &p.MinutesPlayed, &p.XPGain, &p.PracticeDate, &p.UpdatedAt); err != nil {
			log.Error("failed to scan practice row: %v", err)
			return nil, err
		}
		practices = append(practices, p)
	}
	return practices, rows.Err()
}

func (r *practiceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM practices WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *practiceRepository) DeleteBySong(ctx context.Context, songID string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")
	log.Debug("cascade-deleting practices: song_id=%s", songID)

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM practices WHERE song_id = ?`, songID)
	if err != nil {
		log.Error("failed to collect practice ids: %v", err)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM practices WHERE song_id = ?`, songID); err != nil {
		log.Error("failed to delete practices: %v", err)
		return nil, err
	}
	log.Debug("deleted %d practices for song %s", len(ids), songID)
	return ids, nil
}

func (r *practiceRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM practices`)
	return err
}

func (r *practiceRepository) Stats(ctx context.Context, songID string) (*models.SongStats, error) {
	log := logger.FromContext(ctx).WithPrefix("practice_repo")

	stats := models.SongStats{SongID: songID}
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(minutes_played), 0), COUNT(*)
FROM practices WHERE song_id = ?
`, songID).Scan(&stats.TotalMinutes, &stats.Sessions)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to aggregate practice stats: %v", err)
		return nil, err
	}
	return &stats, nil
}
