package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/models"
	"github.com/vytor/fretlog/internal/repository"
)

const songColumns = `id, title, artist, difficulty, status, level, xp, highest_level_reached,
       song_duration, practice_streak, last_practice_date, last_decay_date, add_date,
       tuning, capo, lyrics, updated_at`

type songRepository struct {
	db DBTX
}

// NewSongRepository creates a new SongRepository implementation
func NewSongRepository(db DBTX) repository.SongRepository {
	return &songRepository{db: db}
}

func (r *songRepository) Insert(ctx context.Context, s models.Song) error {
	log := logger.FromContext(ctx).WithPrefix("song_repo")
	log.Debug("inserting song: id=%s, title=%s", s.ID, s.Title)

	s.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO songs (id, title, artist, difficulty, status, level, xp, highest_level_reached,
                   song_duration, practice_streak, last_practice_date, last_decay_date, add_date,
                   tuning, capo, lyrics, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.Title, s.Artist, s.Difficulty, s.Status, nullInt(s.Level), nullFloat(s.XP),
		nullInt(s.HighestLevelReached), nullFloat(s.SongDuration), nullInt(s.PracticeStreak),
		nullTime(s.LastPracticeDate), nullTime(s.LastDecayDate), nullTime(s.AddDate),
		marshalTuning(s.Tuning), s.Capo, s.Lyrics, s.UpdatedAt)
	if err != nil {
		log.Error("failed to insert song: %v", err)
	}
	return err
}

func (r *songRepository) Update(ctx context.Context, s models.Song) error {
	log := logger.FromContext(ctx).WithPrefix("song_repo")
	log.Debug("updating song: id=%s, status=%s", s.ID, s.Status)

	s.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
UPDATE songs
SET title = ?, artist = ?, difficulty = ?, status = ?, level = ?, xp = ?,
    highest_level_reached = ?, song_duration = ?, practice_streak = ?,
    last_practice_date = ?, last_decay_date = ?, add_date = ?,
    tuning = ?, capo = ?, lyrics = ?, updated_at = ?
WHERE id = ?
`, s.Title, s.Artist, s.Difficulty, s.Status, nullInt(s.Level), nullFloat(s.XP),
		nullInt(s.HighestLevelReached), nullFloat(s.SongDuration), nullInt(s.PracticeStreak),
		nullTime(s.LastPracticeDate), nullTime(s.LastDecayDate), nullTime(s.AddDate),
		marshalTuning(s.Tuning), s.Capo, s.Lyrics, s.UpdatedAt, s.ID)
	if err != nil {
		log.Error("failed to update song: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *songRepository) Upsert(ctx context.Context, s models.Song) error {
	log := logger.FromContext(ctx).WithPrefix("song_repo")
	log.Debug("upserting song: id=%s", s.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO songs (id, title, artist, difficulty, status, level, xp, highest_level_reached,
                   song_duration, practice_streak, last_practice_date, last_decay_date, add_date,
                   tuning, capo, lyrics, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title, artist = excluded.artist, difficulty = excluded.difficulty,
    status = excluded.status, level = excluded.level, xp = excluded.xp,
    highest_level_reached = excluded.highest_level_reached, song_duration = excluded.song_duration,
    practice_streak = excluded.practice_streak, last_practice_date = excluded.last_practice_date,
    last_decay_date = excluded.last_decay_date, add_date = excluded.add_date,
    tuning = excluded.tuning, capo = excluded.capo, lyrics = excluded.lyrics,
    updated_at = excluded.updated_at
`, s.ID, s.Title, s.Artist, s.Difficulty, s.Status, nullInt(s.Level), nullFloat(s.XP),
		nullInt(s.HighestLevelReached), nullFloat(s.SongDuration), nullInt(s.PracticeStreak),
		nullTime(s.LastPracticeDate), nullTime(s.LastDecayDate), nullTime(s.AddDate),
		marshalTuning(s.Tuning), s.Capo, s.Lyrics, s.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert song: %v", err)
	}
	return err
}

func (r *songRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	log := logger.FromContext(ctx).WithPrefix("song_repo")
	log.Debug("getting song: id=%s", id)

	row := r.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("song not found: id=%s", id)
		} else {
			log.Error("failed to get song: %v", err)
		}
		return nil, err
	}
	return song, nil
}

func (r *songRepository) List(ctx context.Context, filter models.SongFilter) ([]models.Song, error) {
	log := logger.FromContext(ctx).WithPrefix("song_repo")
	log.Debug("listing songs: status=%s, difficulty=%s, search=%s", filter.Status, filter.Difficulty, filter.Search)

	query := sqlBuilder.Select(
		"id", "title", "artist", "difficulty", "status", "level", "xp", "highest_level_reached",
		"song_duration", "practice_streak", "last_practice_date", "last_decay_date", "add_date",
		"tuning", "capo", "lyrics", "updated_at",
	).From("songs")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": filter.Difficulty})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"title": like},
			squirrel.Like{"artist": like},
		})
	}

	// Safe ORDER BY with validation
	orderBy := "add_date"
	switch filter.OrderBy {
	case "title", "artist", "level", "last_practice_date", "add_date":
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build song query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query songs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			log.Error("failed to scan song row: %v", err)
			return nil, err
		}
		songs = append(songs, *song)
	}
	log.Debug("found %d songs", len(songs))
	return songs, rows.Err()
}

func (r *songRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("song_repo")
	log.Debug("deleting song: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete song: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *songRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM songs`)
	return err
}

func (r *songRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

func scanSong(scan func(dest ...any) error) (*models.Song, error) {
	var (
		song                   models.Song
		level, highest, streak sql.NullInt64
		xp, duration           sql.NullFloat64
		lastPractice           sql.NullTime
		lastDecay              sql.NullTime
		addDate                sql.NullTime
		tuning                 string
	)
	err := scan(&song.ID, &song.Title, &song.Artist, &song.Difficulty, &song.Status,
		&level, &xp, &highest, &duration, &streak, &lastPractice, &lastDecay, &addDate,
		&tuning, &song.Capo, &song.Lyrics, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	song.Level = intPtr(level)
	song.XP = floatPtr(xp)
	song.HighestLevelReached = intPtr(highest)
	song.SongDuration = floatPtr(duration)
	song.PracticeStreak = intPtr(streak)
	song.LastPracticeDate = timePtr(lastPractice)
	song.LastDecayDate = timePtr(lastDecay)
	song.AddDate = timePtr(addDate)
	song.Tuning = unmarshalTuning(tuning)
	return &song, nil
}
