package outbox

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/vytor/fretlog/internal/db"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/store"
)

// Operation is one pending outbound write. The record's current state
// is read at drain time, so the operation carries intent only.
type Operation struct {
	Position int64
	Entity   store.EntityType
	ID       string
	Action   store.Action
	QueuedAt time.Time
}

// Sink applies one operation against the remote side.
type Sink interface {
	Apply(ctx context.Context, op Operation) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, op Operation) error

func (f SinkFunc) Apply(ctx context.Context, op Operation) error { return f(ctx, op) }

// Queue is the durable outbound queue, scoped to one user. At most one
// operation per (entity, id) is kept: re-enqueueing the same record
// replaces the action in place without moving it back in line.
type Queue struct {
	db     *db.DB
	userID string
	log    *logger.Logger

	// drainMu makes Drain single-flight so two triggers cannot send
	// the same operation twice.
	drainMu sync.Mutex
}

func NewQueue(database *db.DB, userID string) *Queue {
	return &Queue{
		db:     database,
		userID: userID,
		log:    logger.Default().WithPrefix("outbox").WithField("user", userID),
	}
}

// Enqueue records an operation, deduplicating against any pending one
// for the same record. The earlier queue position is kept so drain
// order still reflects first-touch order.
func (q *Queue) Enqueue(ctx context.Context, entity store.EntityType, id string, action store.Action) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO sync_queue (user_id, entity_type, entity_id, action, queued_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, entity_type, entity_id) DO UPDATE SET
    action = excluded.action,
    queued_at = excluded.queued_at
`, q.userID, string(entity), id, string(action), time.Now())
	if err != nil {
		q.log.Error("failed to enqueue %s %s/%s: %v", action, entity, id, err)
		return err
	}
	q.log.Debug("queued %s %s/%s", action, entity, id)
	return nil
}

// Pending returns the queued operations in drain order.
func (q *Queue) Pending(ctx context.Context) ([]Operation, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT position, entity_type, entity_id, action, queued_at
FROM sync_queue WHERE user_id = ?
ORDER BY position ASC
`, q.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var entity, action string
		if err := rows.Scan(&op.Position, &entity, &op.ID, &action, &op.QueuedAt); err != nil {
			return nil, err
		}
		op.Entity = store.EntityType(entity)
		op.Action = store.Action(action)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Len reports how many operations are waiting.
func (q *Queue) Len(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue WHERE user_id = ?`, q.userID).Scan(&n)
	return n, err
}

// Drain applies pending operations to the sink in queue order. Every
// operation gets an attempt; an operation is removed only after the
// sink accepts it, so failures stay queued in their original relative
// order for the next pass. Drain is single-flight.
func (q *Queue) Drain(ctx context.Context, sink Sink) error {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	ops, err := q.Pending(ctx)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}
	q.log.Info("draining %d pending operations", len(ops))

	var failures []error
	for _, op := range ops {
		if err := sink.Apply(ctx, op); err != nil {
			q.log.Warn("retaining %s %s/%s: %v", op.Action, op.Entity, op.ID, err)
			failures = append(failures, err)
			continue
		}
		if _, err := q.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE position = ?`, op.Position); err != nil {
			return err
		}
	}
	if len(failures) > 0 {
		q.log.Warn("drain finished with %d of %d operations retained", len(failures), len(ops))
		return errors.Join(failures...)
	}
	q.log.Info("drain complete")
	return nil
}

// Clear drops every pending operation. Used on sign-out.
func (q *Queue) Clear(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE user_id = ?`, q.userID)
	return err
}

// LastFullSync returns when the last successful full sync finished,
// or nil if none has happened for this user.
func (q *Queue) LastFullSync(ctx context.Context) (*time.Time, error) {
	var t sql.NullTime
	err := q.db.QueryRowContext(ctx, `SELECT last_full_sync FROM sync_state WHERE user_id = ?`, q.userID).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}

// SetLastFullSync records a completed full sync.
func (q *Queue) SetLastFullSync(ctx context.Context, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO sync_state (user_id, last_full_sync) VALUES (?, ?)
ON CONFLICT(user_id) DO UPDATE SET last_full_sync = excluded.last_full_sync
`, q.userID, at)
	return err
}

// ResetState forgets the sync history. Used on sign-out so the next
// session starts from first contact.
func (q *Queue) ResetState(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sync_state WHERE user_id = ?`, q.userID)
	return err
}
