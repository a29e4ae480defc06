package sync

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	apperrors "github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/outbox"
	"github.com/vytor/fretlog/internal/remote"
	"github.com/vytor/fretlog/internal/store"
)

// State is the engine's current phase.
type State string

const (
	StateIdle      State = "idle"
	StateMigrating State = "migrating"
	StateSyncing   State = "syncing"
)

// Option configures an Engine.
type Option func(*Engine)

// WithConnectivity installs the gate consulted before any remote work.
// When it reports false every sync operation is a silent no-op.
func WithConnectivity(online func() bool) Option {
	return func(e *Engine) { e.online = online }
}

// WithInterval sets how often a periodic full sync runs.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// Engine keeps the local store and the remote store converged. It
// watches the store's mutation feed, queues outbound operations, and
// drains them in the background; remote-originated writes come back
// through the store's direct path so they never re-enter the queue.
type Engine struct {
	store  *store.Store
	queue  *outbox.Queue
	remote remote.Store
	log    *logger.Logger

	online   func() bool
	interval time.Duration

	// passMu serializes sync passes; stateMu only guards the phase label.
	passMu  sync.Mutex
	stateMu sync.Mutex
	state   State

	unsubscribe func()
	kick        chan struct{}
	stop        chan struct{}
	done        chan struct{}
	started     bool
}

var _ outbox.Sink = (*Engine)(nil)

func NewEngine(st *store.Store, queue *outbox.Queue, rem remote.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		queue:    queue,
		remote:   rem,
		log:      logger.Default().WithPrefix("sync"),
		online:   func() bool { return true },
		interval: 5 * time.Minute,
		state:    StateIdle,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the engine's current phase.
func (e *Engine) State() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// Start subscribes to the store's mutation feed and launches the
// background loop. The first-contact reconciliation runs on that loop,
// so Start returns immediately.
func (e *Engine) Start() {
	if e.started {
		return
	}
	e.started = true

	e.unsubscribe = e.store.Hub().Subscribe(e.onMutation)
	go e.run()
	e.log.Info("sync engine started")
}

// Stop tears the engine down: the mutation subscription goes first so
// nothing new is produced, then the drain loop is stopped and waited
// for. After Stop returns the caller can safely invalidate credentials.
func (e *Engine) Stop() {
	if !e.started {
		return
	}
	e.started = false

	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	close(e.stop)
	<-e.done
	e.log.Info("sync engine stopped")
}

// NotifyOnline signals that connectivity came back; the queue gets a
// drain attempt right away instead of waiting for the next tick.
func (e *Engine) NotifyOnline() {
	e.log.Debug("connectivity regained, scheduling drain")
	e.requestDrain()
}

func (e *Engine) onMutation(m store.Mutation) {
	ctx := context.Background()
	if err := e.queue.Enqueue(ctx, m.Entity, m.ID, m.Action); err != nil {
		e.log.Error("failed to queue %s %s/%s: %v", m.Action, m.Entity, m.ID, err)
		return
	}
	e.requestDrain()
}

func (e *Engine) requestDrain() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) run() {
	defer close(e.done)

	ctx := logger.NewContext(context.Background(), e.log)
	e.firstContact(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-e.kick:
			e.Drain(ctx)
		case <-ticker.C:
			e.FullSync(ctx)
		}
	}
}

// firstContact decides, once per session, how local and remote data
// get reconciled:
//   - remote empty, local non-empty: rewrite legacy ids, push
//     everything, then discard the queue so pre-migration entries never
//     replay against the new ids.
//   - remote non-empty: the remote dataset seeds this device. Pull,
//     discard stale queue entries, then push records that exist only
//     locally.
//   - both empty: nothing to do.
func (e *Engine) firstContact(ctx context.Context) {
	if !e.online() {
		e.log.Debug("offline, skipping first contact")
		return
	}

	remoteIDs, err := e.remoteIDSets(ctx)
	if err != nil {
		e.log.Warn("first contact aborted, cannot inspect remote: %v", err)
		return
	}
	remoteHas := len(remoteIDs[TableSongs]) > 0 || len(remoteIDs[TableDecks]) > 0

	localHas, err := e.store.HasData(ctx)
	if err != nil {
		e.log.Error("first contact aborted, cannot inspect local store: %v", err)
		return
	}

	switch {
	case !remoteHas && localHas:
		e.log.Info("first contact: remote empty, migrating and pushing local data")
		e.setState(StateMigrating)
		if _, err := migrateIdentifiers(ctx, e.store); err != nil {
			e.log.Error("identifier migration failed: %v", err)
			e.setState(StateIdle)
			return
		}
		e.setState(StateSyncing)
		if err := e.pushAll(ctx, nil); err != nil {
			e.log.Warn("initial push incomplete: %v", err)
			e.setState(StateIdle)
			return
		}
		if err := e.queue.Clear(ctx); err != nil {
			e.log.Error("failed to clear queue after migration: %v", err)
		}

	case remoteHas:
		e.log.Info("first contact: seeding from remote")
		e.setState(StateSyncing)
		if err := e.pull(ctx); err != nil {
			e.log.Warn("initial pull incomplete: %v", err)
			e.setState(StateIdle)
			return
		}
		if err := e.queue.Clear(ctx); err != nil {
			e.log.Error("failed to clear stale queue: %v", err)
		}
		if err := e.pushAll(ctx, remoteIDs); err != nil {
			e.log.Warn("local-only push incomplete: %v", err)
			e.setState(StateIdle)
			return
		}

	default:
		e.log.Info("first contact: nothing on either side")
		e.setState(StateIdle)
		return
	}

	e.setState(StateIdle)
	if err := e.queue.SetLastFullSync(ctx, time.Now()); err != nil {
		e.log.Error("failed to record sync time: %v", err)
	}
}

// FullSync runs pull, push-all, and drain. The steps are independent:
// a failure in one is logged and the others still run, with the next
// trigger retrying whatever failed.
func (e *Engine) FullSync(ctx context.Context) error {
	if !e.online() {
		return nil
	}
	e.passMu.Lock()
	defer e.passMu.Unlock()

	e.setState(StateSyncing)
	defer e.setState(StateIdle)

	clean := true
	if err := e.pull(ctx); err != nil {
		e.log.Warn("pull pass failed: %v", err)
		clean = false
	}
	if err := e.pushAll(ctx, nil); err != nil {
		e.log.Warn("push pass failed: %v", err)
		clean = false
	}
	if err := e.queue.Drain(ctx, e); err != nil {
		e.log.Warn("drain pass failed: %v", err)
		clean = false
	}

	if clean {
		if err := e.queue.SetLastFullSync(ctx, time.Now()); err != nil {
			e.log.Error("failed to record sync time: %v", err)
		}
	}
	return nil
}

// Drain pushes the queued operations if connectivity allows.
func (e *Engine) Drain(ctx context.Context) {
	if !e.online() {
		return
	}
	e.passMu.Lock()
	defer e.passMu.Unlock()

	e.setState(StateSyncing)
	defer e.setState(StateIdle)

	if err := e.queue.Drain(ctx, e); err != nil {
		e.log.Warn("drain failed, operations retained: %v", err)
	}
}

// Apply sends one queued operation to the remote store. Upserts read
// the record's current state, so a burst of edits collapses into
// whatever the record looks like now.
func (e *Engine) Apply(ctx context.Context, op outbox.Operation) error {
	table := entityTable(op.Entity)
	if table == "" {
		e.log.Error("dropping operation with unknown entity type %q", op.Entity)
		return nil
	}

	if op.Action == store.ActionDelete {
		return e.remote.Delete(ctx, table, op.ID)
	}

	row, err := e.loadRow(ctx, op)
	if err != nil {
		if isNotFound(err) {
			e.log.Debug("record %s/%s vanished before push, skipping", op.Entity, op.ID)
			return nil
		}
		return err
	}
	return e.remote.Upsert(ctx, table, op.ID, row)
}

func (e *Engine) loadRow(ctx context.Context, op outbox.Operation) (remote.Row, error) {
	switch op.Entity {
	case store.EntitySong:
		song, err := e.store.GetSong(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		return songToRow(*song), nil
	case store.EntityPractice:
		practice, err := e.store.GetPractice(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		return practiceToRow(*practice), nil
	case store.EntityDeck:
		deck, err := e.store.GetDeck(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		return deckToRow(*deck), nil
	case store.EntityMembership:
		m, err := e.store.GetMembership(ctx, op.ID)
		if err != nil {
			return nil, err
		}
		return membershipToRow(*m), nil
	}
	return nil, sql.ErrNoRows
}

// pull fetches every remote row and folds it into the local store over
// the non-notifying path. A local record with a later updated_at is
// left alone; the queued push will carry it upward instead.
func (e *Engine) pull(ctx context.Context) error {
	rows, err := e.remote.SelectAll(ctx, TableSongs)
	if err != nil {
		return err
	}
	for _, row := range rows {
		song, err := songFromRow(row)
		if err != nil {
			e.log.Warn("skipping malformed song row: %v", err)
			continue
		}
		local, err := e.store.GetSong(ctx, song.ID)
		if err == nil && local.UpdatedAt.After(song.UpdatedAt) {
			continue
		}
		if err != nil && !isNotFound(err) {
			return err
		}
		if err := e.store.PutSongDirect(ctx, song); err != nil {
			return err
		}
	}

	deckRows, err := e.remote.SelectAll(ctx, TableDecks)
	if err != nil {
		return err
	}
	for _, row := range deckRows {
		deck, err := deckFromRow(row)
		if err != nil {
			e.log.Warn("skipping malformed deck row: %v", err)
			continue
		}
		local, err := e.store.GetDeck(ctx, deck.ID)
		if err == nil && local.UpdatedAt.After(deck.UpdatedAt) {
			continue
		}
		if err != nil && !isNotFound(err) {
			return err
		}
		if err := e.store.PutDeckDirect(ctx, deck); err != nil {
			return err
		}
	}

	practiceRows, err := e.remote.SelectAll(ctx, TablePractices)
	if err != nil {
		return err
	}
	for _, row := range practiceRows {
		practice, err := practiceFromRow(row)
		if err != nil {
			e.log.Warn("skipping malformed practice row: %v", err)
			continue
		}
		if err := e.store.PutPracticeDirect(ctx, practice); err != nil {
			return err
		}
	}

	membershipRows, err := e.remote.SelectAll(ctx, TableMemberships)
	if err != nil {
		return err
	}
	for _, row := range membershipRows {
		m, err := membershipFromRow(row)
		if err != nil {
			e.log.Warn("skipping malformed membership row: %v", err)
			continue
		}
		local, err := e.store.GetMembership(ctx, m.ID)
		if err == nil && local.UpdatedAt.After(m.UpdatedAt) {
			continue
		}
		if err != nil && !isNotFound(err) {
			return err
		}
		if err := e.store.PutMembershipDirect(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// pushAll uploads every local record. When skip is non-nil, records
// whose ids the remote already holds are left out; first contact uses
// that to push only the purely-local ones after seeding from remote.
func (e *Engine) pushAll(ctx context.Context, skip map[string]map[string]bool) error {
	songs, err := e.store.ListSongs(ctx, models.SongFilter{})
	if err != nil {
		return err
	}
	for _, song := range songs {
		if skip[TableSongs][song.ID] {
			continue
		}
		if err := e.remote.Upsert(ctx, TableSongs, song.ID, songToRow(song)); err != nil {
			return err
		}
	}

	decks, err := e.store.ListDecks(ctx)
	if err != nil {
		return err
	}
	for _, deck := range decks {
		if skip[TableDecks][deck.ID] {
			continue
		}
		if err := e.remote.Upsert(ctx, TableDecks, deck.ID, deckToRow(deck)); err != nil {
			return err
		}
	}

	practices, err := e.store.ListPractices(ctx)
	if err != nil {
		return err
	}
	for _, practice := range practices {
		if skip[TablePractices][practice.ID] {
			continue
		}
		if err := e.remote.Upsert(ctx, TablePractices, practice.ID, practiceToRow(practice)); err != nil {
			return err
		}
	}

	memberships, err := e.store.ListMemberships(ctx)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if skip[TableMemberships][m.ID] {
			continue
		}
		if err := e.remote.Upsert(ctx, TableMemberships, m.ID, membershipToRow(m)); err != nil {
			return err
		}
	}
	return nil
}

// remoteIDSets fetches the id of every remote row, keyed by table.
func (e *Engine) remoteIDSets(ctx context.Context) (map[string]map[string]bool, error) {
	sets := make(map[string]map[string]bool, 4)
	for _, table := range []string{TableSongs, TableDecks, TablePractices, TableMemberships} {
		rows, err := e.remote.SelectAll(ctx, table)
		if err != nil {
			return nil, err
		}
		ids := make(map[string]bool, len(rows))
		for _, row := range rows {
			if id, ok := row["id"].(string); ok {
				ids[id] = true
			}
		}
		sets[table] = ids
	}
	return sets, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || apperrors.IsNotFound(err)
}
