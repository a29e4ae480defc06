package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/services"
)

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SongFilter{
		Status:     models.Status(q.Get("status")),
		Difficulty: models.Difficulty(q.Get("difficulty")),
		Search:     q.Get("search"),
		OrderBy:    q.Get("orderBy"),
		OrderDir:   q.Get("orderDir"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	songs, err := s.SongService.ListSongs(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"songs": songs})
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var input services.NewSongInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	song, err := s.SongService.AddSong(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, song)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.SongService.GetSong(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, song)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	var input services.SongMetadataInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	song, err := s.SongService.EditSongMetadata(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := s.SongService.DeleteSong(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleSongStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.SongService.SongStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}
