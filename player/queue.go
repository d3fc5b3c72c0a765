package player

import (
	"context"
	"math"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PlayState is the lifecycle state of a guild queue.
type PlayState string

const (
	StateIdle    PlayState = "IDLE"
	StateLoading PlayState = "LOADING"
	StatePlaying PlayState = "PLAYING"
	StatePaused  PlayState = "PAUSED"
	StateError   PlayState = "ERROR"
)

// LoopMode holds the two repeat flags of a queue. With synchronized looping
// enabled at the player level the flags are mutually exclusive.
type LoopMode struct {
	Track bool
	Queue bool
}

// LoopTarget selects which repeat flag a SetLoop call toggles.
type LoopTarget string

const (
	LoopTrack LoopTarget = "track"
	LoopQueue LoopTarget = "queue"
)

// GuildQueue is the per-guild playback state. All fields are guarded by the
// owning Player's mutex; external callers only ever see QueueInfo snapshots.
type GuildQueue struct {
	GuildID        snowflake.ID
	TextChannelID  snowflake.ID
	VoiceChannelID snowflake.ID

	tracks      []Track
	loop        LoopMode
	volume      float64
	filterName  string
	filterValue string
	state       PlayState
	startedAt   time.Time

	session  *VoiceSession
	resource AudioResource

	// playSeq is bumped every time the current resource is replaced or torn
	// down. Completion callbacks carry the sequence they were started with;
	// a mismatch means the callback belongs to a replaced resource.
	playSeq uint64
}

// QueueInfo is an immutable snapshot of a guild queue.
type QueueInfo struct {
	GuildID        snowflake.ID
	TextChannelID  snowflake.ID
	VoiceChannelID snowflake.ID
	Tracks         []Track
	Loop           LoopMode
	Volume         float64
	Filter         string
	State          PlayState
	StartedAt      time.Time
}

func (q *GuildQueue) snapshot() QueueInfo {
	tracks := make([]Track, len(q.tracks))
	copy(tracks, q.tracks)
	return QueueInfo{
		GuildID:        q.GuildID,
		TextChannelID:  q.TextChannelID,
		VoiceChannelID: q.VoiceChannelID,
		Tracks:         tracks,
		Loop:           q.loop,
		Volume:         q.volume,
		Filter:         q.filterName,
		State:          q.state,
		StartedAt:      q.startedAt,
	}
}

// gain converts the user-facing volume into a linear ffmpeg gain factor,
// normalized so the configured default volume plays at unity.
func (q *GuildQueue) gain(defaultVolume float64) float64 {
	if defaultVolume <= 0 {
		return 1.0
	}
	return q.volume / defaultVolume
}

// ===========================
// Queue registry
// ===========================

// Queue returns a snapshot of the guild's queue.
func (p *Player) Queue(guildID snowflake.ID) (QueueInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return QueueInfo{}, newError(CodeQueueNotFound, "queue", "no queue for guild %s", guildID)
	}
	return q.snapshot(), nil
}

// Add appends a track to the guild's queue, creating the queue and starting
// playback when none exists yet. The track must carry its guild and channel
// bindings.
func (p *Player) Add(ctx context.Context, track Track) (QueueInfo, error) {
	if track.URL == "" {
		return QueueInfo{}, newError(CodeInvalidArgument, "add", "track has no URL")
	}
	if track.GuildID == 0 || track.VoiceChannelID == 0 {
		return QueueInfo{}, newError(CodeInvalidArgument, "add", "track %q is missing guild or voice channel binding", track.Title)
	}

	p.mu.Lock()

	if q, ok := p.queues[track.GuildID]; ok {
		q.tracks = append(q.tracks, track)
		info := q.snapshot()
		p.mu.Unlock()
		p.subs.sendTrackAdded(TrackAddedEvent{Track: track})
		return info, nil
	}

	q := &GuildQueue{
		GuildID:        track.GuildID,
		TextChannelID:  track.TextChannelID,
		VoiceChannelID: track.VoiceChannelID,
		tracks:         []Track{track},
		volume:         p.opts.DefaultVolume,
		state:          StateIdle,
		startedAt:      time.Now(),
	}
	p.queues[track.GuildID] = q
	info := q.snapshot()
	p.mu.Unlock()

	// The creating track is announced through QueueStarted and the
	// TrackPlaying emitted once its stream starts; TrackAdded is reserved
	// for appends to a live queue.
	p.subs.sendQueueStarted(QueueStartedEvent{Queue: info})

	if err := p.startPlayback(ctx, track.GuildID); err != nil {
		return QueueInfo{}, err
	}
	return info, nil
}

// AddAll appends a batch of tracks, creating and starting the queue with the
// first entry when absent. Used for playlist loads.
func (p *Player) AddAll(ctx context.Context, tracks []Track) (QueueInfo, error) {
	if len(tracks) == 0 {
		return QueueInfo{}, newError(CodeInvalidArgument, "addAll", "no tracks")
	}
	info, err := p.Add(ctx, tracks[0])
	if err != nil {
		return QueueInfo{}, err
	}
	for _, track := range tracks[1:] {
		if next, err := p.Add(ctx, track); err == nil {
			info = next
		}
	}
	return info, nil
}

// ===========================
// Playback control
// ===========================

// SetState pauses or resumes playback. Without a target it toggles; with
// one it moves to that state, failing when the queue is already there.
func (p *Player) SetState(guildID snowflake.ID, target ...PlayState) (QueueInfo, error) {
	p.mu.Lock()

	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeQueueNotFound, "setState", "no queue for guild %s", guildID)
	}
	if q.state != StatePlaying && q.state != StatePaused {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeStateUnchanged, "setState", "queue for guild %s is %s", guildID, q.state)
	}

	next := StatePaused
	if q.state == StatePaused {
		next = StatePlaying
	}
	if len(target) > 0 {
		if target[0] != StatePlaying && target[0] != StatePaused {
			p.mu.Unlock()
			return QueueInfo{}, newError(CodeInvalidArgument, "setState", "invalid target state %s", target[0])
		}
		next = target[0]
	}
	if next == q.state {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeStateUnchanged, "setState", "queue for guild %s is already %s", guildID, next)
	}

	old := q.state
	q.state = next
	if q.resource != nil {
		q.resource.Pause(next == StatePaused)
	}
	info := q.snapshot()
	p.mu.Unlock()

	p.subs.sendStateChange(StateChangeEvent{Queue: info, OldState: old, NewState: next})
	return info, nil
}

// SetLoop toggles a repeat flag and returns the resulting mode. Without a
// target it toggles track repeat. With synchronized looping enabled,
// turning one flag on turns the other off.
func (p *Player) SetLoop(guildID snowflake.ID, target ...LoopTarget) (LoopMode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return LoopMode{}, newError(CodeQueueNotFound, "setLoop", "no queue for guild %s", guildID)
	}

	t := LoopTrack
	if len(target) > 0 {
		t = target[0]
	}
	switch t {
	case LoopTrack:
		q.loop.Track = !q.loop.Track
		if q.loop.Track && p.opts.SynchronLoop {
			q.loop.Queue = false
		}
	case LoopQueue:
		q.loop.Queue = !q.loop.Queue
		if q.loop.Queue && p.opts.SynchronLoop {
			q.loop.Track = false
		}
	default:
		return LoopMode{}, newError(CodeInvalidArgument, "setLoop", "unknown loop target %q", t)
	}
	return q.loop, nil
}

// SetVolume changes the queue volume, resetting to the configured default
// when no value is given. A live stream is rebuilt at its current position
// with the new gain; volume cannot be applied to encoded Opus frames in
// place.
func (p *Player) SetVolume(ctx context.Context, guildID snowflake.ID, value ...float64) (QueueInfo, error) {
	volume := p.opts.DefaultVolume
	if len(value) > 0 {
		volume = value[0]
	}
	if math.IsNaN(volume) || math.IsInf(volume, 0) || volume <= 0 {
		return QueueInfo{}, newError(CodeInvalidArgument, "setVolume", "volume must be a positive number, got %v", volume)
	}

	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeQueueNotFound, "setVolume", "no queue for guild %s", guildID)
	}

	q.volume = volume
	if q.resource == nil {
		info := q.snapshot()
		p.mu.Unlock()
		return info, nil
	}
	position := q.resource.Position()
	p.mu.Unlock()

	if err := p.restartCurrent(ctx, guildID, position, false); err != nil {
		return QueueInfo{}, err
	}
	return p.Queue(guildID)
}

// SetFilter applies a registered filter to the queue and restarts the
// current track from the beginning with the new filter graph.
func (p *Player) SetFilter(ctx context.Context, guildID snowflake.ID, name string) (QueueInfo, error) {
	filter, err := p.filters.Get(name)
	if err != nil {
		return QueueInfo{}, err
	}

	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeQueueNotFound, "setFilter", "no queue for guild %s", guildID)
	}
	q.filterName = filter.Name
	q.filterValue = filter.Value
	live := q.resource != nil
	p.mu.Unlock()

	if live {
		if err := p.restartCurrent(ctx, guildID, 0, false); err != nil {
			return QueueInfo{}, err
		}
	}
	return p.Queue(guildID)
}

// Seek restarts the current track at the given offset.
func (p *Player) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) (QueueInfo, error) {
	if position < 0 {
		return QueueInfo{}, newError(CodeInvalidArgument, "seek", "negative position %s", position)
	}

	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeQueueNotFound, "seek", "no queue for guild %s", guildID)
	}
	if q.resource == nil {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeStateUnchanged, "seek", "nothing is playing in guild %s", guildID)
	}
	if total := q.tracks[0].Duration.Raw; total > 0 && position >= total {
		p.mu.Unlock()
		return QueueInfo{}, newError(CodeInvalidArgument, "seek", "position %s is beyond track duration %s", position, total)
	}
	p.mu.Unlock()

	if err := p.restartCurrent(ctx, guildID, position, false); err != nil {
		return QueueInfo{}, err
	}
	return p.Queue(guildID)
}

// Skip advances past the current track and returns the skipped track along
// with the new head. With one track left the queue is torn down and the
// returned next track is zero. Track repeat rotates the head to the tail
// before replaying, so a later natural advance picks up where it left off.
func (p *Player) Skip(ctx context.Context, guildID snowflake.ID) (Track, Track, error) {
	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return Track{}, Track{}, newError(CodeQueueNotFound, "skip", "no queue for guild %s", guildID)
	}

	skipped := q.tracks[0]
	if len(q.tracks) <= 1 {
		p.teardownLocked(q, true)
		p.mu.Unlock()
		return skipped, Track{}, nil
	}

	switch {
	case q.loop.Track, q.loop.Queue:
		q.tracks = append(q.tracks[1:], skipped)
	default:
		q.tracks = q.tracks[1:]
	}
	next := q.tracks[0]
	p.mu.Unlock()

	if err := p.restartCurrent(ctx, guildID, 0, true); err != nil {
		return Track{}, Track{}, err
	}
	return skipped, next, nil
}

// RemoveTrack deletes the track at the given index. Index zero removes the
// current track from the list without interrupting its playback; the next
// natural advance starts from the new head. Removing the last remaining
// track tears the queue down.
func (p *Player) RemoveTrack(guildID snowflake.ID, index int) (Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return Track{}, newError(CodeQueueNotFound, "removeTrack", "no queue for guild %s", guildID)
	}
	if index < 0 || index >= len(q.tracks) {
		return Track{}, newError(CodeTrackNotFound, "removeTrack", "index %d out of range, queue has %d tracks", index, len(q.tracks))
	}

	removed := q.tracks[index]
	if len(q.tracks) == 1 {
		p.teardownLocked(q, true)
		return removed, nil
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return removed, nil
}

// Shuffle randomizes the order of all queued tracks except the currently
// playing head.
func (p *Player) Shuffle(guildID snowflake.ID) (QueueInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return QueueInfo{}, newError(CodeQueueNotFound, "shuffle", "no queue for guild %s", guildID)
	}
	if len(q.tracks) <= 2 {
		return QueueInfo{}, newError(CodeShuffleTooFew, "shuffle", "need more than 2 tracks to shuffle, have %d", len(q.tracks))
	}

	tail := q.tracks[1:]
	for i := len(tail) - 1; i > 0; i-- {
		j := p.rand.IntN(i + 1)
		tail[i], tail[j] = tail[j], tail[i]
	}
	return q.snapshot(), nil
}

// Stop tears down the guild's queue, releasing the stream and the voice
// session.
func (p *Player) Stop(guildID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return newError(CodeQueueNotFound, "stop", "no queue for guild %s", guildID)
	}
	p.teardownLocked(q, true)
	return nil
}

// ===========================
// Introspection
// ===========================

// StreamInfo describes the currently playing stream.
type StreamInfo struct {
	Track    Track
	Position time.Duration
	Duration time.Duration
	Paused   bool
}

// NowPlaying reports the current track and stream position.
func (p *Player) NowPlaying(guildID snowflake.ID) (StreamInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return StreamInfo{}, newError(CodeQueueNotFound, "nowPlaying", "no queue for guild %s", guildID)
	}
	if q.resource == nil {
		return StreamInfo{}, newError(CodeStateUnchanged, "nowPlaying", "nothing is playing in guild %s", guildID)
	}
	return StreamInfo{
		Track:    q.tracks[0],
		Position: q.resource.Position(),
		Duration: q.tracks[0].Duration.Raw,
		Paused:   q.state == StatePaused,
	}, nil
}

// TrackInfo returns the track at the given queue index.
func (p *Player) TrackInfo(guildID snowflake.ID, index int) (Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return Track{}, newError(CodeQueueNotFound, "trackInfo", "no queue for guild %s", guildID)
	}
	if index < 0 || index >= len(q.tracks) {
		return Track{}, newError(CodeTrackNotFound, "trackInfo", "index %d out of range, queue has %d tracks", index, len(q.tracks))
	}
	return q.tracks[index], nil
}

// Progress renders a textual progress bar for the current stream. A queue
// that has no live stream yet renders at zero.
func (p *Player) Progress(guildID snowflake.ID) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, ok := p.queues[guildID]
	if !ok {
		return "", newError(CodeQueueNotFound, "progress", "no queue for guild %s", guildID)
	}

	var position time.Duration
	if q.resource != nil {
		position = q.resource.Position()
	}
	return renderProgress(position, q.tracks[0].Duration.Raw, p.opts.ProgressSize, p.opts.ProgressLine, p.opts.ProgressSlider), nil
}
