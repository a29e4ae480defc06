package sync

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/store"
)

// Early builds keyed records with small sequential integers. Those ids
// collide across devices, so before the first push every legacy-keyed
// record is rewritten under a fresh UUID, along with everything that
// references it.

func isLegacyID(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.Atoi(id)
	return err == nil
}

// migrateIdentifiers rewrites legacy-keyed records and returns how many
// ids were replaced. New-keyed parents are written before the children
// that reference them; old-keyed rows are removed only after every
// reference has moved.
func migrateIdentifiers(ctx context.Context, st *store.Store) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("sync")

	songs, err := st.ListSongs(ctx, models.SongFilter{})
	if err != nil {
		return 0, err
	}
	decks, err := st.ListDecks(ctx)
	if err != nil {
		return 0, err
	}
	practices, err := st.ListPractices(ctx)
	if err != nil {
		return 0, err
	}
	memberships, err := st.ListMemberships(ctx)
	if err != nil {
		return 0, err
	}

	migrated := 0

	songIDs := make(map[string]string)
	for _, song := range songs {
		if !isLegacyID(song.ID) {
			continue
		}
		oldID := song.ID
		song.ID = uuid.NewString()
		songIDs[oldID] = song.ID
		if err := st.PutSongDirect(ctx, song); err != nil {
			return migrated, err
		}
		migrated++
	}

	deckIDs := make(map[string]string)
	for _, deck := range decks {
		if !isLegacyID(deck.ID) {
			continue
		}
		oldID := deck.ID
		deck.ID = uuid.NewString()
		deckIDs[oldID] = deck.ID
		if err := st.PutDeckDirect(ctx, deck); err != nil {
			return migrated, err
		}
		migrated++
	}

	for _, practice := range practices {
		oldID := practice.ID
		rewritten := false
		if isLegacyID(practice.ID) {
			practice.ID = uuid.NewString()
			rewritten = true
			migrated++
		}
		if newSongID, ok := songIDs[practice.SongID]; ok {
			practice.SongID = newSongID
			rewritten = true
		}
		if !rewritten {
			continue
		}
		if err := st.PutPracticeDirect(ctx, practice); err != nil {
			return migrated, err
		}
		if practice.ID != oldID {
			if err := st.DeletePracticeDirect(ctx, oldID); err != nil {
				return migrated, err
			}
		}
	}

	for _, m := range memberships {
		oldID := m.ID
		rewritten := false
		if isLegacyID(m.ID) {
			m.ID = uuid.NewString()
			rewritten = true
			migrated++
		}
		if newDeckID, ok := deckIDs[m.DeckID]; ok {
			m.DeckID = newDeckID
			rewritten = true
		}
		if newSongID, ok := songIDs[m.SongID]; ok {
			m.SongID = newSongID
			rewritten = true
		}
		if !rewritten {
			continue
		}
		if err := st.PutMembershipDirect(ctx, m); err != nil {
			return migrated, err
		}
		if m.ID != oldID {
			if err := st.DeleteMembershipDirect(ctx, oldID); err != nil {
				return migrated, err
			}
		}
	}

	// References have all moved; the old-keyed parents can go.
	for oldID := range songIDs {
		if err := st.DeleteSongDirect(ctx, oldID); err != nil {
			return migrated, err
		}
	}
	for oldID := range deckIDs {
		if err := st.DeleteDeckDirect(ctx, oldID); err != nil {
			return migrated, err
		}
	}

	if migrated > 0 {
		log.Info("rewrote %d legacy identifiers", migrated)
	}
	return migrated, nil
}
