package repository

import (
	"context"

	"github.com/vytor/fretlog/internal/models"
)

// MembershipRepository handles deck-membership data access
type MembershipRepository interface {
	Insert(ctx context.Context, m models.DeckMembership) error
	Upsert(ctx context.Context, m models.DeckMembership) error
	Get(ctx context.Context, id string) (*models.DeckMembership, error)
	GetByPair(ctx context.Context, deckID, songID string) (*models.DeckMembership, error)
	ListByDeck(ctx context.Context, deckID string) ([]models.DeckMembership, error)
	ListBySong(ctx context.Context, songID string) ([]models.DeckMembership, error)
	ListAll(ctx context.Context) ([]models.DeckMembership, error)
	UpdateOrder(ctx context.Context, id string, order int64) error
	Delete(ctx context.Context, id string) error
	// DeleteByDeck and DeleteBySong cascade-remove memberships and return
	// the ids of the removed rows for outbound sync.
	DeleteByDeck(ctx context.Context, deckID string) ([]string, error)
	DeleteBySong(ctx context.Context, songID string) ([]string, error)
	DeleteAll(ctx context.Context) error
}
