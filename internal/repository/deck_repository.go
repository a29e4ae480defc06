package repository

import (
	"context"

	"github.com/vytor/fretlog/internal/models"
)

// DeckRepository handles deck data access
type DeckRepository interface {
	Insert(ctx context.Context, deck models.Deck) error
	Update(ctx context.Context, deck models.Deck) error
	Upsert(ctx context.Context, deck models.Deck) error
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	// RecomputeAggregates refreshes the deck's derived level and total
	// duration from its current members.
	RecomputeAggregates(ctx context.Context, deckID string) (*models.Deck, error)
}
