package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vytor/fretlog/internal/db"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/repository"
	"github.com/vytor/fretlog/internal/repository/sqlite"
	"github.com/vytor/fretlog/internal/testutil"
)

type SongRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.SongRepository
}

func (s *SongRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSongRepository(s.db)
}

func ptrInt(v int) *int             { return &v }
func ptrFloat(v float64) *float64   { return &v }
func ptrTime(v time.Time) *time.Time { return &v }

func seenSong(id, title, artist string) models.Song {
	now := time.Now().UTC()
	return models.Song{
		ID:           id,
		Title:        title,
		Artist:       artist,
		Difficulty:   models.DifficultyNormal,
		Status:       models.StatusSeen,
		SongDuration: ptrFloat(240),
		AddDate:      ptrTime(now),
		Tuning:       models.StandardTuning,
	}
}

func (s *SongRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()

	song := seenSong("song-1", "Karma Police", "Radiohead")
	song.Capo = 2
	s.Require().NoError(s.repo.Insert(ctx, song))

	got, err := s.repo.Get(ctx, "song-1")
	s.Require().NoError(err)
	s.Assert().Equal("Karma Police", got.Title)
	s.Assert().Equal("Radiohead", got.Artist)
	s.Assert().Equal(2, got.Capo)
	s.Assert().Equal(models.StandardTuning, got.Tuning)
	s.Assert().Nil(got.Level)
	s.Assert().Nil(got.XP)
	s.Assert().False(got.UpdatedAt.IsZero())
}

func (s *SongRepositorySuite) TestGet_NotFound() {
	got, err := s.repo.Get(context.Background(), "missing")
	s.Assert().ErrorIs(err, sql.ErrNoRows)
	s.Assert().Nil(got)
}

func (s *SongRepositorySuite) TestUpdateTouchesUpdatedAt() {
	ctx := context.Background()

	song := seenSong("song-1", "Creep", "Radiohead")
	s.Require().NoError(s.repo.Insert(ctx, song))

	before, err := s.repo.Get(ctx, "song-1")
	s.Require().NoError(err)

	time.Sleep(5 * time.Millisecond)
	before.Title = "Creep (acoustic)"
	s.Require().NoError(s.repo.Update(ctx, *before))

	after, err := s.repo.Get(ctx, "song-1")
	s.Require().NoError(err)
	s.Assert().Equal("Creep (acoustic)", after.Title)
	s.Assert().True(after.UpdatedAt.After(before.UpdatedAt))
}

func (s *SongRepositorySuite) TestUpsertKeepsUpdatedAt() {
	ctx := context.Background()

	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	song := seenSong("song-1", "Lucky", "Radiohead")
	song.Status = models.StatusLearning
	song.Level = ptrInt(3)
	song.XP = ptrFloat(140)
	song.HighestLevelReached = ptrInt(3)
	song.PracticeStreak = ptrInt(2)
	song.UpdatedAt = stamp
	s.Require().NoError(s.repo.Upsert(ctx, song))

	got, err := s.repo.Get(ctx, "song-1")
	s.Require().NoError(err)
	s.Assert().True(got.UpdatedAt.Equal(stamp))
	s.Require().NotNil(got.Level)
	s.Assert().Equal(3, *got.Level)
}

func (s *SongRepositorySuite) TestListFilters() {
	ctx := context.Background()

	a := seenSong("song-a", "Karma Police", "Radiohead")
	b := seenSong("song-b", "Blackbird", "The Beatles")
	b.Status = models.StatusLearning
	b.Level = ptrInt(1)
	b.XP = ptrFloat(10)
	b.HighestLevelReached = ptrInt(1)
	b.PracticeStreak = ptrInt(1)
	s.Require().NoError(s.repo.Insert(ctx, a))
	s.Require().NoError(s.repo.Insert(ctx, b))

	learning, err := s.repo.List(ctx, models.SongFilter{Status: models.StatusLearning})
	s.Require().NoError(err)
	s.Require().Len(learning, 1)
	s.Assert().Equal("song-b", learning[0].ID)

	byArtist, err := s.repo.List(ctx, models.SongFilter{Search: "beatles"})
	s.Require().NoError(err)
	s.Require().Len(byArtist, 1)
	s.Assert().Equal("Blackbird", byArtist[0].Title)

	all, err := s.repo.List(ctx, models.SongFilter{OrderBy: "title", OrderDir: "ASC"})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Assert().Equal("Blackbird", all[0].Title)
}

func (s *SongRepositorySuite) TestDeleteAndCount() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Insert(ctx, seenSong("song-1", "Karma Police", "Radiohead")))
	s.Require().NoError(s.repo.Insert(ctx, seenSong("song-2", "No Surprises", "Radiohead")))

	count, err := s.repo.Count(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(2, count)

	s.Require().NoError(s.repo.Delete(ctx, "song-1"))
	s.Assert().ErrorIs(s.repo.Delete(ctx, "song-1"), sql.ErrNoRows)

	count, err = s.repo.Count(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

func TestSongRepositorySuite(t *testing.T) {
	suite.Run(t, new(SongRepositorySuite))
}
