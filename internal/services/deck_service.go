package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/store"
)

// NewDeckInput is the payload for creating a deck.
type NewDeckInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DeckMetadataInput carries the editable deck fields. Level and total
// duration are derived and cannot be set.
type DeckMetadataInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// DeckWithSongs pairs a deck with its member songs in deck order.
type DeckWithSongs struct {
	Deck  models.Deck   `json:"deck"`
	Songs []models.Song `json:"songs"`
}

// DeckService handles deck-related business logic
type DeckService interface {
	CreateDeck(ctx context.Context, input NewDeckInput) (*models.Deck, error)
	GetDeck(ctx context.Context, id string) (*DeckWithSongs, error)
	ListDecks(ctx context.Context) ([]models.Deck, error)
	EditDeckMetadata(ctx context.Context, id string, input DeckMetadataInput) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
	AddSongToDeck(ctx context.Context, deckID, songID string) (*models.DeckMembership, error)
	RemoveSongFromDeck(ctx context.Context, deckID, songID string) error
	ReorderDeck(ctx context.Context, deckID string, songIDs []string) error
}

type deckService struct {
	store *store.Store
	now   func() time.Time
}

// NewDeckService creates a new DeckService
func NewDeckService(st *store.Store) DeckService {
	return &deckService{store: st, now: time.Now}
}

func (s *deckService) CreateDeck(ctx context.Context, input NewDeckInput) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	if input.Title == "" {
		return nil, apperrors.NewValidationError("title", "must not be empty")
	}

	deck := models.Deck{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
		CreationDate: s.now(),
	}
	if err := s.store.CreateDeck(ctx, deck); err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	log.Info("created deck %s (%s)", deck.Title, deck.ID)
	return &deck, nil
}

func (s *deckService) GetDeck(ctx context.Context, id string) (*DeckWithSongs, error) {
	if id == models.MasteredDeckID {
		return s.masteredDeck(ctx)
	}

	deck, err := s.store.GetDeck(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("deck", id)
		}
		return nil, apperrors.NewInternalError(err)
	}

	memberships, err := s.store.ListMembershipsByDeck(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	songs := make([]models.Song, 0, len(memberships))
	for _, m := range memberships {
		song, err := s.store.GetSong(ctx, m.SongID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, apperrors.NewInternalError(err)
		}
		songs = append(songs, *song)
	}
	return &DeckWithSongs{Deck: *deck, Songs: songs}, nil
}

func (s *deckService) masteredDeck(ctx context.Context) (*DeckWithSongs, error) {
	songs, err := s.store.ListSongs(ctx, models.SongFilter{Status: models.StatusMastered})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &DeckWithSongs{Deck: models.VirtualMasteredDeck(songs), Songs: songs}, nil
}

// ListDecks returns the stored decks plus the virtual mastered deck,
// which always comes last.
func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.store.ListDecks(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	mastered, err := s.store.ListSongs(ctx, models.SongFilter{Status: models.StatusMastered})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return append(decks, models.VirtualMasteredDeck(mastered)), nil
}

func (s *deckService) EditDeckMetadata(ctx context.Context, id string, input DeckMetadataInput) (*models.Deck, error) {
	if id == models.MasteredDeckID {
		return nil, apperrors.NewValidationError("deck", "the mastered deck cannot be edited")
	}

	deck, err := s.store.GetDeck(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("deck", id)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.NewValidationError("title", "must not be empty")
		}
		deck.Title = *input.Title
	}
	if input.Description != nil {
		deck.Description = *input.Description
	}

	if err := s.store.UpdateDeck(ctx, *deck); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return s.store.GetDeck(ctx, id)
}

func (s *deckService) DeleteDeck(ctx context.Context, id string) error {
	if id == models.MasteredDeckID {
		return apperrors.NewValidationError("deck", "the mastered deck cannot be deleted")
	}
	if err := s.store.DeleteDeck(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError("deck", id)
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) AddSongToDeck(ctx context.Context, deckID, songID string) (*models.DeckMembership, error) {
	log := logger.FromContext(ctx)

	if deckID == models.MasteredDeckID {
		return nil, apperrors.NewValidationError("deck", "membership of the mastered deck is automatic")
	}
	if _, err := s.store.GetDeck(ctx, deckID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("deck", deckID)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if _, err := s.store.GetSong(ctx, songID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("song", songID)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if existing, err := s.store.GetMembershipByPair(ctx, deckID, songID); err == nil && existing != nil {
		return nil, apperrors.NewValidationError("song", "already in this deck")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	membership := models.DeckMembership{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		SongID:    songID,
		Order:     now.UnixMilli(),
		AddedDate: now,
	}
	if err := s.store.AddMembership(ctx, membership); err != nil {
		log.Error("failed to add song to deck: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return &membership, nil
}

func (s *deckService) RemoveSongFromDeck(ctx context.Context, deckID, songID string) error {
	if deckID == models.MasteredDeckID {
		return apperrors.NewValidationError("deck", "membership of the mastered deck is automatic")
	}

	membership, err := s.store.GetMembershipByPair(ctx, deckID, songID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError("deck membership", deckID+"/"+songID)
		}
		return apperrors.NewInternalError(err)
	}
	if err := s.store.DeleteMembership(ctx, membership.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ReorderDeck rewrites the deck's ordering to match songIDs. Every
// member must appear exactly once.
func (s *deckService) ReorderDeck(ctx context.Context, deckID string, songIDs []string) error {
	if deckID == models.MasteredDeckID {
		return apperrors.NewValidationError("deck", "the mastered deck cannot be reordered")
	}

	memberships, err := s.store.ListMembershipsByDeck(ctx, deckID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if len(memberships) == 0 {
		if _, err := s.store.GetDeck(ctx, deckID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFoundError("deck", deckID)
			}
			return apperrors.NewInternalError(err)
		}
	}

	bySong := make(map[string]models.DeckMembership, len(memberships))
	for _, m := range memberships {
		bySong[m.SongID] = m
	}
	if len(songIDs) != len(memberships) {
		return apperrors.NewValidationError("songIds", "must list every deck member exactly once")
	}
	seen := make(map[string]bool, len(songIDs))
	for _, songID := range songIDs {
		if _, ok := bySong[songID]; !ok || seen[songID] {
			return apperrors.NewValidationError("songIds", "must list every deck member exactly once")
		}
		seen[songID] = true
	}

	for i, songID := range songIDs {
		m := bySong[songID]
		if err := s.store.UpdateMembershipOrder(ctx, m.ID, int64(i+1)); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	return nil
}
