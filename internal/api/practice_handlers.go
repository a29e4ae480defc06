package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/fretlog/internal/services"
)

func (s *Server) handleSubmitPractice(w http.ResponseWriter, r *http.Request) {
	var input services.PracticeInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}

	outcome, err := s.PracticeService.SubmitPractice(r.Context(), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, outcome)
}

func (s *Server) handleListPractices(w http.ResponseWriter, r *http.Request) {
	practices, err := s.PracticeService.ListPractices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"practices": practices})
}
