package player

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

const trackStartTimeout = 30 * time.Second

// startPlayback brings a freshly created queue from idle to playing. It
// establishes the voice session first, reusing one left over from a
// previous queue in the same guild, then loads the head track.
func (p *Player) startPlayback(ctx context.Context, guildID snowflake.ID) error {
	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return newError(CodeQueueNotFound, "play", "no queue for guild %s", guildID)
	}
	if q.session != nil && !q.session.Destroyed() {
		p.mu.Unlock()
		return p.startTrack(ctx, guildID, 0, true)
	}
	channelID := q.VoiceChannelID
	p.mu.Unlock()

	session, err := p.voices.Connect(ctx, guildID, channelID)
	if err != nil {
		if IsCode(err, CodeAlreadyConnected) {
			session = p.voices.Session(guildID)
		}
		if session == nil {
			p.failQueue(guildID, "play", err)
			return err
		}
	}

	p.mu.Lock()
	q, ok = p.queues[guildID]
	if !ok {
		// Queue was torn down while connecting.
		p.mu.Unlock()
		go p.releaseSession(guildID)
		return newError(CodeQueueNotFound, "play", "queue for guild %s vanished during connect", guildID)
	}
	q.session = session
	p.mu.Unlock()

	return p.startTrack(ctx, guildID, 0, true)
}

// startTrack loads and attaches a resource for the queue's head track. The
// streamer call runs without the player lock; a sequence check on resume
// discards the result if the queue changed underneath it.
func (p *Player) startTrack(ctx context.Context, guildID snowflake.ID, seek time.Duration, announce bool) error {
	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return newError(CodeQueueNotFound, "play", "no queue for guild %s", guildID)
	}

	q.playSeq++
	seq := q.playSeq
	if q.resource != nil {
		q.resource.Stop()
		q.resource = nil
	}
	wasPaused := q.state == StatePaused
	q.state = StateLoading
	track := q.tracks[0]
	opts := StreamOptions{
		Filter: q.filterValue,
		Gain:   q.gain(p.opts.DefaultVolume),
		Seek:   seek,
	}
	p.mu.Unlock()

	resource, err := p.streamer.Open(ctx, track, opts)

	p.mu.Lock()
	q, ok = p.queues[guildID]
	if !ok || q.playSeq != seq {
		p.mu.Unlock()
		if err == nil {
			resource.Stop()
		}
		return nil
	}
	if err != nil {
		q.state = StateError
		p.teardownLocked(q, false)
		p.mu.Unlock()
		sys.LogPlayer("Failed to load %s for guild %s: %v", track.URL, guildID, err)
		p.subs.sendError(ErrorEvent{
			GuildID:       guildID,
			TextChannelID: track.TextChannelID,
			Method:        "play",
			Requested:     track.URL,
			Err:           err,
		})
		return err
	}

	q.resource = resource
	if wasPaused {
		resource.Pause(true)
		q.state = StatePaused
	} else {
		q.state = StatePlaying
	}
	session := q.session
	p.mu.Unlock()

	if session != nil {
		session.Attach(resource)
		if err := session.Speaking(ctx, true); err != nil {
			sys.LogVoice("Failed to set speaking for guild %s: %v", guildID, err)
		}
	}

	if announce {
		p.subs.sendTrackPlaying(TrackPlayingEvent{Track: track})
	}
	sys.LogPlayer("Now streaming %s in guild %s", track.Title, guildID)

	go p.watch(guildID, seq, resource)
	return nil
}

// restartCurrent rebuilds the head track's stream at the given offset,
// keeping the queue's filter, gain and pause state. Only restarts that
// change which track plays announce it; in-place rebuilds stay silent.
func (p *Player) restartCurrent(ctx context.Context, guildID snowflake.ID, seek time.Duration, announce bool) error {
	return p.startTrack(ctx, guildID, seek, announce)
}

// watch blocks on a resource's completion and routes it to onTrackEnd. One
// watcher runs per attached resource.
func (p *Player) watch(guildID snowflake.ID, seq uint64, resource AudioResource) {
	defer func() {
		if r := recover(); r != nil {
			sys.LogPlayer("Recovered watcher panic for guild %s: %v", guildID, r)
		}
	}()
	err := <-resource.Done()
	p.onTrackEnd(guildID, seq, err)
}

// onTrackEnd applies the completion rules after a track's stream drains.
// Track repeat replays the head; with nothing left the queue ends; queue
// repeat rotates the head to the tail; otherwise the head is dropped.
// Callbacks from replaced resources are discarded by the sequence check.
func (p *Player) onTrackEnd(guildID snowflake.ID, seq uint64, streamErr error) {
	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok || q.playSeq != seq {
		p.mu.Unlock()
		return
	}
	q.resource = nil

	if streamErr != nil {
		q.state = StateError
		track := q.tracks[0]
		p.teardownLocked(q, false)
		p.mu.Unlock()
		sys.LogPlayer("Stream for %s failed in guild %s: %v", track.URL, guildID, streamErr)
		p.subs.sendError(ErrorEvent{
			GuildID:       guildID,
			TextChannelID: track.TextChannelID,
			Method:        "stream",
			Requested:     track.URL,
			Err:           streamErr,
		})
		return
	}

	switch {
	case q.loop.Track:
		// Replay the head as-is.
	case len(q.tracks) <= 1:
		p.teardownLocked(q, true)
		p.mu.Unlock()
		return
	case q.loop.Queue:
		q.tracks = append(q.tracks[1:], q.tracks[0])
	default:
		q.tracks = q.tracks[1:]
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), trackStartTimeout)
	defer cancel()
	_ = p.startTrack(ctx, guildID, 0, true)
}

// teardownLocked removes the queue from the registry, stops its resource
// and releases the voice session. Caller holds the player lock.
func (p *Player) teardownLocked(q *GuildQueue, emitEnd bool) {
	q.playSeq++
	if q.resource != nil {
		q.resource.Stop()
		q.resource = nil
	}
	delete(p.queues, q.GuildID)
	if q.session != nil {
		q.session = nil
		go p.releaseSession(q.GuildID)
	}
	if emitEnd {
		p.subs.sendQueueEnded(QueueEndedEvent{Queue: q.snapshot()})
	}
	sys.LogPlayer("Queue for guild %s ended", q.GuildID)
}

// failQueue tears down a queue after an unrecoverable setup error and
// notifies subscribers.
func (p *Player) failQueue(guildID snowflake.ID, method string, cause error) {
	p.mu.Lock()
	q, ok := p.queues[guildID]
	if !ok {
		p.mu.Unlock()
		return
	}
	q.state = StateError
	textChannel := q.TextChannelID
	p.teardownLocked(q, false)
	p.mu.Unlock()

	p.subs.sendError(ErrorEvent{
		GuildID:       guildID,
		TextChannelID: textChannel,
		Method:        method,
		Err:           cause,
	})
}

// releaseSession disconnects the guild's voice session in the background.
func (p *Player) releaseSession(guildID snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := p.voices.Disconnect(ctx, guildID); err != nil && !IsCode(err, CodeNotConnected) {
		sys.LogVoice("Failed to release voice session for guild %s: %v", guildID, err)
	}
}
