package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/fretlog/internal/services"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.DeckService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var input services.NewDeckInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.DeckService.GetDeck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	var input services.DeckMetadataInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.EditDeckMetadata(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.DeckService.DeleteDeck(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleAddSongToDeck(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SongID string `json:"songId"`
	}
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	membership, err := s.DeckService.AddSongToDeck(r.Context(), chi.URLParam(r, "id"), input.SongID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, membership)
}

func (s *Server) handleRemoveSongFromDeck(w http.ResponseWriter, r *http.Request) {
	err := s.DeckService.RemoveSongFromDeck(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "songId"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleReorderDeck(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SongIDs []string `json:"songIds"`
	}
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.DeckService.ReorderDeck(r.Context(), chi.URLParam(r, "id"), input.SongIDs); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
