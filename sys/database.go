package sys

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/mattn/go-sqlite3"
)

// --- Database Connection & Lifecycle ---

var DB *sql.DB

func InitDatabase(ctx context.Context, dataSourceName string) error {
	var err error
	DB, err = sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(5)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA cache_size=-2000;",
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, p := range pragmas {
		if _, err := DB.ExecContext(initCtx, p); err != nil {
			return fmt.Errorf(MsgDatabasePragmaError, p, err)
		}
	}

	tx, err := DB.BeginTx(initCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tableQueries := []string{
		`CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			last_playing TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(guild_id, title)
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			author TEXT DEFAULT '',
			duration_ms INTEGER DEFAULT 0,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist
			ON playlist_tracks (playlist_id, position)`,
	}

	for _, q := range tableQueries {
		if _, err := tx.ExecContext(initCtx, q); err != nil {
			return fmt.Errorf(MsgDatabaseTableError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	_, _ = DB.ExecContext(initCtx, "PRAGMA foreign_keys=ON;")

	LogDatabase(MsgDatabaseInitSuccess)
	return nil
}

func CloseDatabase() {
	if DB != nil {
		DB.Close()
	}
}

// --- Playlists ---

type Playlist struct {
	ID          int64
	GuildID     snowflake.ID
	Title       string
	Author      string
	LastPlaying string
	Created     time.Time
	Updated     time.Time
	TrackCount  int
	Duration    time.Duration
}

type PlaylistTrack struct {
	ID         int64
	PlaylistID int64
	Title      string
	URL        string
	Author     string
	Duration   time.Duration
	Position   int
}

func CreatePlaylist(ctx context.Context, guildID snowflake.ID, title, author string) (*Playlist, error) {
	res, err := DB.ExecContext(ctx, `
		INSERT INTO playlists (guild_id, title, author) VALUES (?, ?, ?)
	`, guildID.String(), title, author)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetPlaylistByID(ctx, id)
}

func GetPlaylistByID(ctx context.Context, id int64) (*Playlist, error) {
	return scanPlaylist(DB.QueryRowContext(ctx, `
		SELECT p.id, p.guild_id, p.title, p.author, p.last_playing, p.created_at, p.updated_at,
			COUNT(t.id), COALESCE(SUM(t.duration_ms), 0)
		FROM playlists p LEFT JOIN playlist_tracks t ON t.playlist_id = p.id
		WHERE p.id = ? GROUP BY p.id
	`, id))
}

func GetPlaylist(ctx context.Context, guildID snowflake.ID, title string) (*Playlist, error) {
	return scanPlaylist(DB.QueryRowContext(ctx, `
		SELECT p.id, p.guild_id, p.title, p.author, p.last_playing, p.created_at, p.updated_at,
			COUNT(t.id), COALESCE(SUM(t.duration_ms), 0)
		FROM playlists p LEFT JOIN playlist_tracks t ON t.playlist_id = p.id
		WHERE p.guild_id = ? AND p.title = ? GROUP BY p.id
	`, guildID.String(), title))
}

func scanPlaylist(row *sql.Row) (*Playlist, error) {
	p := &Playlist{}
	var gid string
	var durationMS int64
	err := row.Scan(&p.ID, &gid, &p.Title, &p.Author, &p.LastPlaying, &p.Created, &p.Updated, &p.TrackCount, &durationMS)
	if err != nil {
		return nil, err
	}
	p.GuildID, _ = snowflake.Parse(gid)
	p.Duration = time.Duration(durationMS) * time.Millisecond
	return p, nil
}

func GetGuildPlaylists(ctx context.Context, guildID snowflake.ID) ([]*Playlist, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT p.id, p.guild_id, p.title, p.author, p.last_playing, p.created_at, p.updated_at,
			COUNT(t.id), COALESCE(SUM(t.duration_ms), 0)
		FROM playlists p LEFT JOIN playlist_tracks t ON t.playlist_id = p.id
		WHERE p.guild_id = ? GROUP BY p.id ORDER BY p.updated_at DESC
	`, guildID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []*Playlist
	for rows.Next() {
		p := &Playlist{}
		var gid string
		var durationMS int64
		if err := rows.Scan(&p.ID, &gid, &p.Title, &p.Author, &p.LastPlaying, &p.Created, &p.Updated, &p.TrackCount, &durationMS); err != nil {
			return nil, err
		}
		p.GuildID, _ = snowflake.Parse(gid)
		p.Duration = time.Duration(durationMS) * time.Millisecond
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func DeletePlaylist(ctx context.Context, id int64) (bool, error) {
	if _, err := DB.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return false, err
	}
	result, err := DB.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func SetPlaylistLastPlaying(ctx context.Context, id int64, trackTitle string) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE playlists SET last_playing = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, trackTitle, id)
	return err
}

// --- Playlist Tracks ---

func AddPlaylistTrack(ctx context.Context, t *PlaylistTrack) error {
	res, err := DB.ExecContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, title, url, author, duration_ms, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_tracks WHERE playlist_id = ?))
	`, t.PlaylistID, t.Title, t.URL, t.Author, t.Duration.Milliseconds(), t.PlaylistID)
	if err != nil {
		return err
	}
	t.ID, _ = res.LastInsertId()

	_, err = DB.ExecContext(ctx, "UPDATE playlists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", t.PlaylistID)
	return err
}

func GetPlaylistTracks(ctx context.Context, playlistID int64) ([]*PlaylistTrack, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, playlist_id, title, url, author, duration_ms, position
		FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []*PlaylistTrack
	for rows.Next() {
		t := &PlaylistTrack{}
		var durationMS int64
		if err := rows.Scan(&t.ID, &t.PlaylistID, &t.Title, &t.URL, &t.Author, &durationMS, &t.Position); err != nil {
			return nil, err
		}
		t.Duration = time.Duration(durationMS) * time.Millisecond
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func RemovePlaylistTrack(ctx context.Context, playlistID int64, position int) (bool, error) {
	result, err := DB.ExecContext(ctx, `
		DELETE FROM playlist_tracks WHERE playlist_id = ? AND position = ?
	`, playlistID, position)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}
	_, err = DB.ExecContext(ctx, `
		UPDATE playlist_tracks SET position = position - 1 WHERE playlist_id = ? AND position > ?
	`, playlistID, position)
	return true, err
}
