package sys

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGuild = snowflake.ID(100000000000000001)

func setupTestDatabase(t *testing.T) {
	t.Helper()
	// A plain :memory: DSN gives every pooled connection its own database.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	require.NoError(t, InitDatabase(context.Background(), dsn))
	t.Cleanup(CloseDatabase)
}

func TestPlaylistLifecycle(t *testing.T) {
	setupTestDatabase(t)
	ctx := context.Background()

	playlist, err := CreatePlaylist(ctx, testGuild, "favorites", "tester")
	require.NoError(t, err)
	assert.Equal(t, "favorites", playlist.Title)
	assert.Equal(t, testGuild, playlist.GuildID)
	assert.Zero(t, playlist.TrackCount)

	// Duplicate titles within a guild are rejected by the schema.
	_, err = CreatePlaylist(ctx, testGuild, "favorites", "tester")
	assert.Error(t, err)

	found, err := GetPlaylist(ctx, testGuild, "favorites")
	require.NoError(t, err)
	assert.Equal(t, playlist.ID, found.ID)

	deleted, err := DeletePlaylist(ctx, playlist.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = DeletePlaylist(ctx, playlist.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPlaylistTracks(t *testing.T) {
	setupTestDatabase(t)
	ctx := context.Background()

	playlist, err := CreatePlaylist(ctx, testGuild, "mix", "tester")
	require.NoError(t, err)

	for i, title := range []string{"one", "two", "three"} {
		track := &PlaylistTrack{
			PlaylistID: playlist.ID,
			Title:      title,
			URL:        "https://example.com/" + title,
			Author:     "artist",
			Duration:   time.Duration(i+1) * time.Minute,
		}
		require.NoError(t, AddPlaylistTrack(ctx, track))
		assert.NotZero(t, track.ID)
	}

	tracks, err := GetPlaylistTracks(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "one", tracks[0].Title)
	assert.Equal(t, 1, tracks[0].Position)
	assert.Equal(t, "three", tracks[2].Title)
	assert.Equal(t, 3, tracks[2].Position)

	updated, err := GetPlaylistByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.TrackCount)
	assert.Equal(t, 6*time.Minute, updated.Duration)

	// Removing the middle track renumbers the tail.
	removed, err := RemovePlaylistTrack(ctx, playlist.ID, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	tracks, err = GetPlaylistTracks(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "three", tracks[1].Title)
	assert.Equal(t, 2, tracks[1].Position)

	removed, err = RemovePlaylistTrack(ctx, playlist.ID, 9)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGuildPlaylists(t *testing.T) {
	setupTestDatabase(t)
	ctx := context.Background()

	otherGuild := snowflake.ID(100000000000000002)
	_, err := CreatePlaylist(ctx, testGuild, "first", "tester")
	require.NoError(t, err)
	_, err = CreatePlaylist(ctx, testGuild, "second", "tester")
	require.NoError(t, err)
	_, err = CreatePlaylist(ctx, otherGuild, "elsewhere", "tester")
	require.NoError(t, err)

	playlists, err := GetGuildPlaylists(ctx, testGuild)
	require.NoError(t, err)
	assert.Len(t, playlists, 2)

	require.NoError(t, SetPlaylistLastPlaying(ctx, playlists[0].ID, "some track"))
	refreshed, err := GetPlaylistByID(ctx, playlists[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "some track", refreshed.LastPlaying)
}
