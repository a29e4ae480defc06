package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/fretlog/internal/db"
	"github.com/vytor/fretlog/internal/outbox"
	"github.com/vytor/fretlog/internal/services"
	"github.com/vytor/fretlog/internal/sync"
	"github.com/vytor/fretlog/internal/worker"
)

type Server struct {
	DB              *db.DB
	SongService     services.SongService
	PracticeService services.PracticeService
	DeckService     services.DeckService
	BackupService   services.BackupService

	// Queue is always present; Engine and Gate are nil when no remote
	// backend is configured.
	Queue    *outbox.Queue
	Engine   *sync.Engine
	Gate     *sync.Gate
	SyncPool *worker.Pool
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(userScopeMiddleware)

		r.Route("/songs", func(r chi.Router) {
			r.Get("/", s.handleListSongs)
			r.Post("/", s.handleCreateSong)
			r.Get("/{id}", s.handleGetSong)
			r.Patch("/{id}", s.handleUpdateSong)
			r.Delete("/{id}", s.handleDeleteSong)
			r.Get("/{id}/stats", s.handleSongStats)
			r.Get("/{id}/practices", s.handleListPractices)
		})

		r.Post("/practices", s.handleSubmitPractice)

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", s.handleListDecks)
			r.Post("/", s.handleCreateDeck)
			r.Get("/{id}", s.handleGetDeck)
			r.Patch("/{id}", s.handleUpdateDeck)
			r.Delete("/{id}", s.handleDeleteDeck)
			r.Post("/{id}/songs", s.handleAddSongToDeck)
			r.Delete("/{id}/songs/{songId}", s.handleRemoveSongFromDeck)
			r.Put("/{id}/order", s.handleReorderDeck)
		})

		// Backup moves the whole dataset; give it more room than a
		// normal request but never let it hang a worker forever.
		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(2 * time.Minute))
			r.Get("/backup", s.handleExportBackup)
			r.Post("/backup", s.handleImportBackup)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", s.handleSyncStatus)
			r.Post("/", s.handleTriggerSync)
			r.Post("/online", s.handleSyncOnline)
			r.Post("/offline", s.handleSyncOffline)
		})
	})

	return r
}
