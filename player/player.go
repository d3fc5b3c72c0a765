// Package player implements a per-guild music queue engine: voice session
// management, search and stream resolution, filterable ffmpeg playback and
// a typed event bus.
package player

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// Options configures a Player. Transport is required; Streamer and Lyrics
// default to the production implementations when nil.
type Options struct {
	Config    sys.PlayerConfig
	Transport Transport
	Streamer  AudioStreamer
	Lyrics    LyricsProvider
}

// Player owns every guild queue and the shared services behind them. All
// queue state is guarded by a single mutex; slow operations (voice
// connects, stream loads) release it and re-validate on resume.
type Player struct {
	mu     sync.Mutex
	queues map[snowflake.ID]*GuildQueue

	opts     sys.PlayerConfig
	filters  *FilterRegistry
	voices   *VoiceManager
	streamer AudioStreamer
	search   *Searcher
	lyrics   LyricsProvider
	subs     *subscriberHub
	rand     *rand.Rand
}

func New(opts Options) *Player {
	resolver := NewResolver()
	streamer := opts.Streamer
	if streamer == nil {
		streamer = NewFFmpegStreamer(resolver)
	}
	lyrics := opts.Lyrics
	if lyrics == nil {
		lyrics = NewLyricsClient()
	}
	return &Player{
		queues:   make(map[snowflake.ID]*GuildQueue),
		opts:     opts.Config,
		filters:  NewFilterRegistry(),
		voices:   NewVoiceManager(opts.Transport, DefaultReadyTimeout),
		streamer: streamer,
		search:   NewSearcher(resolver, opts.Config.SearchResultsLimit),
		lyrics:   lyrics,
		subs:     newSubscriberHub(),
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Options returns the player configuration.
func (p *Player) Options() sys.PlayerConfig { return p.opts }

// Filters exposes the filter registry for custom registrations.
func (p *Player) Filters() *FilterRegistry { return p.filters }

// Voices exposes the voice session manager.
func (p *Player) Voices() *VoiceManager { return p.voices }

// Subscribe returns a new event subscription.
func (p *Player) Subscribe() *Subscription {
	return p.subs.subscribe()
}

// Unsubscribe closes a subscription and stops delivery to it.
func (p *Player) Unsubscribe(s *Subscription) {
	p.subs.unsubscribe(s)
}

// Search resolves a query into candidate tracks, see Searcher.Search.
func (p *Player) Search(ctx context.Context, query string) ([]Track, error) {
	return p.search.Search(ctx, query)
}

// Lyrics fetches lyrics for a free-text query.
func (p *Player) Lyrics(ctx context.Context, query string) (LyricsResult, error) {
	return p.lyrics.Search(ctx, query)
}

// Shutdown tears down every queue without emitting end events.
func (p *Player) Shutdown() {
	p.mu.Lock()
	queues := make([]*GuildQueue, 0, len(p.queues))
	for _, q := range p.queues {
		queues = append(queues, q)
	}
	for _, q := range queues {
		p.teardownLocked(q, false)
	}
	p.mu.Unlock()

	p.subs.each(func(s *Subscription) { s.close() })
}

// ===========================
// Persisted playlists
// ===========================

// CreatePlaylist persists a new named playlist for the guild.
func (p *Player) CreatePlaylist(ctx context.Context, guildID snowflake.ID, title, author string) (*sys.Playlist, error) {
	if title == "" {
		return nil, newError(CodeInvalidArgument, "createPlaylist", "empty playlist title")
	}
	if existing, err := sys.GetPlaylist(ctx, guildID, title); err == nil && existing != nil {
		return nil, newError(CodeInvalidArgument, "createPlaylist", "playlist %q already exists in guild %s", title, guildID)
	}

	playlist, err := sys.CreatePlaylist(ctx, guildID, title, author)
	if err != nil {
		return nil, wrapError(CodeInvalidArgument, "createPlaylist", err, "failed to create playlist %q", title)
	}
	p.subs.sendPlaylistCreated(PlaylistCreatedEvent{Playlist: *playlist})
	return playlist, nil
}

// DeletePlaylist removes a persisted playlist and its tracks.
func (p *Player) DeletePlaylist(ctx context.Context, guildID snowflake.ID, title string) (*sys.Playlist, error) {
	playlist, err := p.findPlaylist(ctx, guildID, title, "deletePlaylist")
	if err != nil {
		return nil, err
	}

	if _, err := sys.DeletePlaylist(ctx, playlist.ID); err != nil {
		return nil, wrapError(CodePlaylistNotFound, "deletePlaylist", err, "failed to delete playlist %q", title)
	}
	p.subs.sendPlaylistDeleted(PlaylistDeletedEvent{Playlist: *playlist})
	return playlist, nil
}

// Playlists lists the guild's persisted playlists.
func (p *Player) Playlists(ctx context.Context, guildID snowflake.ID) ([]*sys.Playlist, error) {
	playlists, err := sys.GetGuildPlaylists(ctx, guildID)
	if err != nil {
		return nil, wrapError(CodePlaylistNotFound, "playlists", err, "failed to list playlists for guild %s", guildID)
	}
	return playlists, nil
}

// AddToPlaylist appends a track to a persisted playlist.
func (p *Player) AddToPlaylist(ctx context.Context, guildID snowflake.ID, title string, track Track) (*sys.Playlist, error) {
	if track.URL == "" {
		return nil, newError(CodeInvalidArgument, "addToPlaylist", "track has no URL")
	}
	playlist, err := p.findPlaylist(ctx, guildID, title, "addToPlaylist")
	if err != nil {
		return nil, err
	}

	row := &sys.PlaylistTrack{
		PlaylistID: playlist.ID,
		Title:      track.Title,
		URL:        track.URL,
		Author:     track.Author.Name,
		Duration:   track.Duration.Raw,
	}
	if err := sys.AddPlaylistTrack(ctx, row); err != nil {
		return nil, wrapError(CodeInvalidArgument, "addToPlaylist", err, "failed to add track to playlist %q", title)
	}
	return sys.GetPlaylistByID(ctx, playlist.ID)
}

// RemoveFromPlaylist deletes the track at the given 1-based position.
func (p *Player) RemoveFromPlaylist(ctx context.Context, guildID snowflake.ID, title string, position int) error {
	playlist, err := p.findPlaylist(ctx, guildID, title, "removeFromPlaylist")
	if err != nil {
		return err
	}

	removed, err := sys.RemovePlaylistTrack(ctx, playlist.ID, position)
	if err != nil {
		return wrapError(CodeTrackNotFound, "removeFromPlaylist", err, "failed to remove track %d from playlist %q", position, title)
	}
	if !removed {
		return newError(CodeTrackNotFound, "removeFromPlaylist", "playlist %q has no track at position %d", title, position)
	}
	return nil
}

// PlayPlaylist loads a persisted playlist into the guild queue, creating
// and starting the queue when absent.
func (p *Player) PlayPlaylist(ctx context.Context, guildID snowflake.ID, title string, textChannelID, voiceChannelID, requestedBy snowflake.ID) (QueueInfo, error) {
	playlist, err := p.findPlaylist(ctx, guildID, title, "playPlaylist")
	if err != nil {
		return QueueInfo{}, err
	}

	rows, err := sys.GetPlaylistTracks(ctx, playlist.ID)
	if err != nil {
		return QueueInfo{}, wrapError(CodePlaylistNotFound, "playPlaylist", err, "failed to load playlist %q", title)
	}
	if len(rows) == 0 {
		return QueueInfo{}, newError(CodePlaylistNotFound, "playPlaylist", "playlist %q is empty", title)
	}

	tracks := make([]Track, 0, len(rows))
	for _, row := range rows {
		tracks = append(tracks, Track{
			Title:          row.Title,
			URL:            row.URL,
			Author:         TrackAuthor{Name: row.Author},
			Duration:       NewTrackDuration(row.Duration),
			GuildID:        guildID,
			TextChannelID:  textChannelID,
			VoiceChannelID: voiceChannelID,
			RequestedBy:    requestedBy,
		})
	}

	info, err := p.AddAll(ctx, tracks)
	if err != nil {
		return QueueInfo{}, err
	}
	if err := sys.SetPlaylistLastPlaying(ctx, playlist.ID, tracks[0].Title); err != nil {
		sys.LogDatabase("Failed to update playlist %q last playing: %v", title, err)
	}
	return info, nil
}

func (p *Player) findPlaylist(ctx context.Context, guildID snowflake.ID, title, method string) (*sys.Playlist, error) {
	playlist, err := sys.GetPlaylist(ctx, guildID, title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, newError(CodePlaylistNotFound, method, "no playlist %q in guild %s", title, guildID)
		}
		return nil, wrapError(CodePlaylistNotFound, method, err, "failed to look up playlist %q", title)
	}
	return playlist, nil
}
