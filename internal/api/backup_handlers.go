package api

import (
	"net/http"

	"github.com/vytor/fretlog/internal/models"
)

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.BackupService.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="fretlog-backup.json"`)
	respondJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	var snap models.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.BackupService.Import(r.Context(), &snap); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"songs":     len(snap.Songs),
		"practices": len(snap.Practices),
		"decks":     len(snap.Decks),
	})
}
