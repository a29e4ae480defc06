package api

import (
	"net/http"
	"time"

	"github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/worker"
)

type syncStatus struct {
	State        string     `json:"state"`
	Online       *bool      `json:"online,omitempty"`
	Pending      int        `json:"pending"`
	LastFullSync *time.Time `json:"lastFullSync"`
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status := syncStatus{State: "disabled"}
	if s.Engine != nil {
		status.State = string(s.Engine.State())
	}
	if s.Gate != nil {
		online := s.Gate.Online()
		status.Online = &online
	}

	pending, err := s.Queue.Len(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	status.Pending = pending

	last, err := s.Queue.LastFullSync(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	status.LastFullSync = last

	respondJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		handleError(w, r, errors.NewBadRequestError("remote sync is not configured"))
		return
	}

	if s.SyncPool != nil {
		if !s.SyncPool.TrySubmit(&worker.FullSyncJob{Syncer: s.Engine}) {
			handleError(w, r, &errors.AppError{
				Code:    errors.ErrCodeInternal,
				Message: "sync queue is full, try again later",
				Status:  http.StatusServiceUnavailable,
			})
			return
		}
		respondJSON(w, r, http.StatusAccepted, map[string]any{"queued": true})
		return
	}

	if err := s.Engine.FullSync(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"queued": false})
}

// handleSyncOnline is the platform layer reporting connectivity
// regained; the queue gets an immediate drain attempt.
func (s *Server) handleSyncOnline(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		handleError(w, r, errors.NewBadRequestError("remote sync is not configured"))
		return
	}

	if s.Gate != nil {
		s.Gate.Set(true)
	}
	s.Engine.NotifyOnline()
	respondJSON(w, r, http.StatusAccepted, map[string]any{"online": true})
}

// handleSyncOffline marks the remote unreachable so sync passes become
// no-ops until connectivity is reported back.
func (s *Server) handleSyncOffline(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		handleError(w, r, errors.NewBadRequestError("remote sync is not configured"))
		return
	}

	if s.Gate != nil {
		s.Gate.Set(false)
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"online": false})
}
