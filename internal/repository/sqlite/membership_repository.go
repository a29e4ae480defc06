package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/repository"
)

type membershipRepository struct {
	db DBTX
}

// NewMembershipRepository creates a new MembershipRepository implementation
func NewMembershipRepository(db DBTX) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Insert(ctx context.Context, m models.DeckMembership) error {
	log := logger.FromContext(ctx).WithPrefix("membership_repo")
	log.Debug("inserting membership: deck_id=%s, song_id=%s", m.DeckID, m.SongID)

	m.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO deck_memberships (id, deck_id, song_id, sort_order, added_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, m.ID, m.DeckID, m.SongID, m.Order, m.AddedDate, m.UpdatedAt)
	if err != nil {
		log.Error("failed to insert membership: %v", err)
	}
	return err
}

func (r *membershipRepository) Upsert(ctx context.Context, m models.DeckMembership) error {
	log := logger.FromContext(ctx).WithPrefix("membership_repo")
	log.Debug("upserting membership: id=%s", m.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO deck_memberships (id, deck_id, song_id, sort_order, added_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    deck_id = excluded.deck_id, song_id = excluded.song_id, sort_order = excluded.sort_order,
    added_date = excluded.added_date, updated_at = excluded.updated_at
`, m.ID, m.DeckID, m.SongID, m.Order, m.AddedDate, m.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert membership: %v", err)
	}
	return err
}

func (r *membershipRepository) Get(ctx context.Context, id string) (*models.DeckMembership, error) {
	return r.getWhere(ctx, `id = ?`, id)
}

func (r *membershipRepository) GetByPair(ctx context.Context, deckID, songID string) (*models.DeckMembership, error) {
	return r.getWhere(ctx, `deck_id = ? AND song_id = ?`, deckID, songID)
}

func (r *membershipRepository) getWhere(ctx context.Context, where string, args ...any) (*models.DeckMembership, error) {
	var m models.DeckMembership
	err := r.db.QueryRowContext(ctx, `
SELECT id, deck_id, song_id, sort_order, added_date, updated_at
FROM deck_memberships WHERE `+where, args...).
		Scan(&m.ID, &m.DeckID, &m.SongID, &m.Order, &m.AddedDate, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) ListByDeck(ctx context.Context, deckID string) ([]models.DeckMembership, error) {
	return r.list(ctx, `
SELECT id, deck_id, song_id, sort_order, added_date, updated_at
FROM deck_memberships WHERE deck_id = ?
ORDER BY sort_order ASC
`, deckID)
}

func (r *membershipRepository) ListBySong(ctx context.Context, songID string) ([]models.DeckMembership, error) {
	return r.list(ctx, `
SELECT id, deck_id, song_id, sort_order, added_date, updated_at
FROM deck_memberships WHERE song_id = ?
ORDER BY sort_order ASC
`, songID)
}

func (r *membershipRepository) ListAll(ctx context.Context) ([]models.DeckMembership, error) {
	return r.list(ctx, `
SELECT id, deck_id, song_id, sort_order, added_date, updated_at
FROM deck_memberships
ORDER BY sort_order ASC
`)
}

func (r *membershipRepository) list(ctx context.Context, query string, args ...any) ([]models.DeckMembership, error) {
	log := logger.FromContext(ctx).WithPrefix("membership_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query memberships: %v", err)
		return nil, err
	}
	defer rows.Close()

	var memberships []models.DeckMembership
	for rows.Next() {
		var m models.DeckMembership
		if err := rows.Scan(&m.ID, &m.DeckID, &m.SongID, &m.Order, &m.AddedDate, &m.UpdatedAt); err != nil {
			log.Error("failed to scan membership row: %v", err)
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepository) UpdateOrder(ctx context.Context, id string, order int64) error {
	log := logger.FromContext(ctx).WithPrefix("membership_repo")
	log.Debug("updating membership order: id=%s, order=%d", id, order)

	res, err := r.db.ExecContext(ctx, `
UPDATE deck_memberships SET sort_order = ?, updated_at = ? WHERE id = ?
`, order, time.Now(), id)
	if err != nil {
		log.Error("failed to update membership order: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deck_memberships WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) DeleteByDeck(ctx context.Context, deckID string) ([]string, error) {
	return r.deleteWhere(ctx, `deck_id = ?`, deckID)
}

func (r *membershipRepository) DeleteBySong(ctx context.Context, songID string) ([]string, error) {
	return r.deleteWhere(ctx, `song_id = ?`, songID)
}

func (r *membershipRepository) deleteWhere(ctx context.Context, where string, args ...any) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("membership_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM deck_memberships WHERE `+where, args...)
	if err != nil {
		log.Error("failed to collect membership ids: %v", err)
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

	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_memberships WHERE `+where, args...); err != nil {
		log.Error("failed to delete memberships: %v", err)
		return nil, err
	}
	log.Debug("deleted %d memberships", len(ids))
	return ids, nil
}

func (r *membershipRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM deck_memberships`)
	return err
}
