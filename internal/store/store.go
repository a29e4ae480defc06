package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/fretlog/internal/db"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/repository"
	"github.com/vytor/fretlog/internal/repository/sqlite"
)

// Store is the single entry point for local persistence. Every write
// goes through it; committed writes are announced on the Hub so the
// sync layer can queue them for upload. The Direct variants skip the
// Hub and exist for writes that originate remotely.
type Store struct {
	db  *db.DB
	log *logger.Logger
	hub *Hub

	songs       repository.SongRepository
	practices   repository.PracticeRepository
	decks       repository.DeckRepository
	memberships repository.MembershipRepository
}

func New(database *db.DB, hub *Hub) *Store {
	return &Store{
		db:          database,
		log:         logger.Default().WithPrefix("store"),
		hub:         hub,
		songs:       sqlite.NewSongRepository(database.DB),
		practices:   sqlite.NewPracticeRepository(database.DB),
		decks:       sqlite.NewDeckRepository(database.DB),
		memberships: sqlite.NewMembershipRepository(database.DB),
	}
}

// Hub exposes the mutation feed for subscribers.
func (s *Store) Hub() *Hub {
	return s.hub
}

// --- Reads ---

func (s *Store) GetSong(ctx context.Context, id string) (*models.Song, error) {
	return s.songs.Get(ctx, id)
}

func (s *Store) ListSongs(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	return s.songs.List(ctx, filter)
}

func (s *Store) CountSongs(ctx context.Context) (int, error) {
	return s.songs.Count(ctx)
}

func (s *Store) SongStats(ctx context.Context, songID string) (*models.SongStats, error) {
	return s.practices.Stats(ctx, songID)
}

func (s *Store) GetPractice(ctx context.Context, id string) (*models.Practice, error) {
	return s.practices.Get(ctx, id)
}

func (s *Store) ListPracticesBySong(ctx context.Context, songID string) ([]models.Practice, error) {
	return s.practices.ListBySong(ctx, songID)
}

func (s *Store) ListPractices(ctx context.Context) ([]models.Practice, error) {
	return s.practices.ListAll(ctx)
}

func (s *Store) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	return s.decks.Get(ctx, id)
}

func (s *Store) ListDecks(ctx context.Context) ([]models.Deck, error) {
	return s.decks.List(ctx)
}

func (s *Store) CountDecks(ctx context.Context) (int, error) {
	return s.decks.Count(ctx)
}

func (s *Store) GetMembership(ctx context.Context, id string) (*models.DeckMembership, error) {
	return s.memberships.Get(ctx, id)
}

func (s *Store) GetMembershipByPair(ctx context.Context, deckID, songID string) (*models.DeckMembership, error) {
	return s.memberships.GetByPair(ctx, deckID, songID)
}

func (s *Store) ListMembershipsByDeck(ctx context.Context, deckID string) ([]models.DeckMembership, error) {
	return s.memberships.ListByDeck(ctx, deckID)
}

func (s *Store) ListMembershipsBySong(ctx context.Context, songID string) ([]models.DeckMembership, error) {
	return s.memberships.ListBySong(ctx, songID)
}

func (s *Store) ListMemberships(ctx context.Context) ([]models.DeckMembership, error) {
	return s.memberships.ListAll(ctx)
}

// HasData reports whether any songs or decks exist locally.
func (s *Store) HasData(ctx context.Context) (bool, error) {
	n, err := s.songs.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	n, err = s.decks.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Notifying writes ---

func (s *Store) CreateSong(ctx context.Context, song models.Song) error {
	if err := s.songs.Insert(ctx, song); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntitySong, Action: ActionUpsert, ID: song.ID})
	return nil
}

func (s *Store) UpdateSong(ctx context.Context, song models.Song) error {
	if err := s.songs.Update(ctx, song); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntitySong, Action: ActionUpsert, ID: song.ID})
	return nil
}

// DeleteSong removes the song along with its practices and deck
// memberships, announcing every removed row. Decks the song belonged
// to get their aggregates refreshed.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	memberships, err := s.memberships.ListBySong(ctx, id)
	if err != nil {
		return err
	}

	practiceIDs, err := s.practices.DeleteBySong(ctx, id)
	if err != nil {
		return err
	}
	membershipIDs, err := s.memberships.DeleteBySong(ctx, id)
	if err != nil {
		return err
	}
	if err := s.songs.Delete(ctx, id); err != nil {
		return err
	}

	for _, pid := range practiceIDs {
		s.hub.publish(Mutation{Entity: EntityPractice, Action: ActionDelete, ID: pid})
	}
	for _, mid := range membershipIDs {
		s.hub.publish(Mutation{Entity: EntityMembership, Action: ActionDelete, ID: mid})
	}
	s.hub.publish(Mutation{Entity: EntitySong, Action: ActionDelete, ID: id})

	for _, m := range memberships {
		if _, err := s.RecomputeDeckAggregates(ctx, m.DeckID); err != nil {
			s.log.Warn("failed to refresh deck %s after song delete: %v", m.DeckID, err)
		}
	}
	return nil
}

func (s *Store) CreatePractice(ctx context.Context, practice models.Practice) error {
	if err := s.practices.Insert(ctx, practice); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntityPractice, Action: ActionUpsert, ID: practice.ID})
	return nil
}

func (s *Store) CreateDeck(ctx context.Context, deck models.Deck) error {
	if err := s.decks.Insert(ctx, deck); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntityDeck, Action: ActionUpsert, ID: deck.ID})
	return nil
}

func (s *Store) UpdateDeck(ctx context.Context, deck models.Deck) error {
	if err := s.decks.Update(ctx, deck); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntityDeck, Action: ActionUpsert, ID: deck.ID})
	return nil
}

// DeleteDeck removes the deck and its memberships. Songs are untouched.
func (s *Store) DeleteDeck(ctx context.Context, id string) error {
	membershipIDs, err := s.memberships.DeleteByDeck(ctx, id)
	if err != nil {
		return err
	}
	if err := s.decks.Delete(ctx, id); err != nil {
		return err
	}

	for _, mid := range membershipIDs {
		s.hub.publish(Mutation{Entity: EntityMembership, Action: ActionDelete, ID: mid})
	}
	s.hub.publish(Mutation{Entity: EntityDeck, Action: ActionDelete, ID: id})
	return nil
}

func (s *Store) AddMembership(ctx context.Context, m models.DeckMembership) error {
	if err := s.memberships.Insert(ctx, m); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntityMembership, Action: ActionUpsert, ID: m.ID})

	if _, err := s.RecomputeDeckAggregates(ctx, m.DeckID); err != nil {
		s.log.Warn("failed to refresh deck %s after adding song: %v", m.DeckID, err)
	}
	return nil
}

func (s *Store) UpdateMembershipOrder(ctx context.Context, id string, order int64) error {
	if err := s.memberships.UpdateOrder(ctx, id, order); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntityMembership, Action: ActionUpsert, ID: id})
	return nil
}

func (s *Store) DeleteMembership(ctx context.Context, id string) error {
	m, err := s.memberships.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.memberships.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.publish(Mutation{Entity: EntityMembership, Action: ActionDelete, ID: id})

	if _, err := s.RecomputeDeckAggregates(ctx, m.DeckID); err != nil {
		s.log.Warn("failed to refresh deck %s after removing song: %v", m.DeckID, err)
	}
	return nil
}

// RecomputeDeckAggregates refreshes the deck's derived level and total
// duration and announces the change so it syncs upward.
func (s *Store) RecomputeDeckAggregates(ctx context.Context, deckID string) (*models.Deck, error) {
	deck, err := s.decks.RecomputeAggregates(ctx, deckID)
	if err != nil {
		return nil, err
	}
	s.hub.publish(Mutation{Entity: EntityDeck, Action: ActionUpsert, ID: deckID})
	return deck, nil
}

// --- Direct writes (remote-originated, no announcements) ---

func (s *Store) PutSongDirect(ctx context.Context, song models.Song) error {
	return s.songs.Upsert(ctx, song)
}

func (s *Store) PutPracticeDirect(ctx context.Context, practice models.Practice) error {
	return s.practices.Upsert(ctx, practice)
}

func (s *Store) PutDeckDirect(ctx context.Context, deck models.Deck) error {
	return s.decks.Upsert(ctx, deck)
}

func (s *Store) PutMembershipDirect(ctx context.Context, m models.DeckMembership) error {
	return s.memberships.Upsert(ctx, m)
}

func (s *Store) DeleteSongDirect(ctx context.Context, id string) error {
	_, err := s.practices.DeleteBySong(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.memberships.DeleteBySong(ctx, id); err != nil {
		return err
	}
	return s.songs.Delete(ctx, id)
}

func (s *Store) DeletePracticeDirect(ctx context.Context, id string) error {
	return s.practices.Delete(ctx, id)
}

func (s *Store) DeleteDeckDirect(ctx context.Context, id string) error {
	if _, err := s.memberships.DeleteByDeck(ctx, id); err != nil {
		return err
	}
	return s.decks.Delete(ctx, id)
}

func (s *Store) DeleteMembershipDirect(ctx context.Context, id string) error {
	return s.memberships.Delete(ctx, id)
}

// --- Bulk operations ---

// Snapshot captures every record for export.
func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	songs, err := s.songs.List(ctx, models.SongFilter{})
	if err != nil {
		return nil, err
	}
	practices, err := s.practices.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, err
	}
	memberships, err := s.memberships.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		Songs:       songs,
		Practices:   practices,
		Decks:       decks,
		Memberships: memberships,
		ExportedAt:  time.Now().UTC(),
	}, nil
}

// ReplaceAll swaps the entire dataset for the snapshot's contents in
// one transaction. Used by backup restore; nothing is announced, the
// caller decides whether a full sync should follow.
func (s *Store) ReplaceAll(ctx context.Context, snap *models.Snapshot) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		songs := sqlite.NewSongRepository(tx)
		practices := sqlite.NewPracticeRepository(tx)
		decks := sqlite.NewDeckRepository(tx)
		memberships := sqlite.NewMembershipRepository(tx)

		if err := memberships.DeleteAll(ctx); err != nil {
			return err
		}
		if err := practices.DeleteAll(ctx); err != nil {
			return err
		}
		if err := decks.DeleteAll(ctx); err != nil {
			return err
		}
		if err := songs.DeleteAll(ctx); err != nil {
			return err
		}

		for _, song := range snap.Songs {
			if err := songs.Upsert(ctx, song); err != nil {
				return err
			}
		}
		for _, deck := range snap.Decks {
			if err := decks.Upsert(ctx, deck); err != nil {
				return err
			}
		}
		for _, practice := range snap.Practices {
			if err := practices.Upsert(ctx, practice); err != nil {
				return err
			}
		}
		for _, m := range snap.Memberships {
			if err := memberships.Upsert(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearAll wipes every record. Used on sign-out.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.ReplaceAll(ctx, &models.Snapshot{})
}
