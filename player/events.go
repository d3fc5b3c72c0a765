package player

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

const eventBufferSize = 16

// QueueStartedEvent fires when the first track of a guild starts a new queue.
type QueueStartedEvent struct {
	Queue QueueInfo
}

// QueueEndedEvent fires when a guild queue is torn down, either by draining
// naturally or by an explicit stop.
type QueueEndedEvent struct {
	Queue QueueInfo
}

// TrackAddedEvent fires when a track is appended to an existing queue.
type TrackAddedEvent struct {
	Track Track
}

// TrackPlayingEvent fires when playback of a track actually begins,
// including replays and loop rotations.
type TrackPlayingEvent struct {
	Track Track
}

// StateChangeEvent fires on an actual PLAYING/PAUSED transition. It is not
// emitted when SetState is a no-op.
type StateChangeEvent struct {
	Queue    QueueInfo
	OldState PlayState
	NewState PlayState
}

// ErrorEvent carries enough context to render a human-readable message:
// the failing method, the originating channels when known, and the cause.
type ErrorEvent struct {
	GuildID       snowflake.ID
	TextChannelID snowflake.ID
	Method        string
	Requested     string
	Err           error
}

// PlaylistCreatedEvent fires when a persisted playlist is created.
type PlaylistCreatedEvent struct {
	Playlist sys.Playlist
}

// PlaylistDeletedEvent fires when a persisted playlist is removed.
type PlaylistDeletedEvent struct {
	Playlist sys.Playlist
}

// Subscription provides event channels for one subscriber. Sends are
// non-blocking; a subscriber that stops draining loses events rather than
// stalling the player.
type Subscription struct {
	QueueStarted    <-chan QueueStartedEvent
	QueueEnded      <-chan QueueEndedEvent
	TrackAdded      <-chan TrackAddedEvent
	TrackPlaying    <-chan TrackPlayingEvent
	StateChanged    <-chan StateChangeEvent
	Error           <-chan ErrorEvent
	PlaylistCreated <-chan PlaylistCreatedEvent
	PlaylistDeleted <-chan PlaylistDeletedEvent
	Done            <-chan struct{}

	startedCh  chan QueueStartedEvent
	endedCh    chan QueueEndedEvent
	addedCh    chan TrackAddedEvent
	playingCh  chan TrackPlayingEvent
	stateCh    chan StateChangeEvent
	errorCh    chan ErrorEvent
	plCreateCh chan PlaylistCreatedEvent
	plDeleteCh chan PlaylistDeletedEvent
	doneCh     chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		startedCh:  make(chan QueueStartedEvent, eventBufferSize),
		endedCh:    make(chan QueueEndedEvent, eventBufferSize),
		addedCh:    make(chan TrackAddedEvent, eventBufferSize),
		playingCh:  make(chan TrackPlayingEvent, eventBufferSize),
		stateCh:    make(chan StateChangeEvent, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		plCreateCh: make(chan PlaylistCreatedEvent, eventBufferSize),
		plDeleteCh: make(chan PlaylistDeletedEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.QueueStarted = s.startedCh
	s.QueueEnded = s.endedCh
	s.TrackAdded = s.addedCh
	s.TrackPlaying = s.playingCh
	s.StateChanged = s.stateCh
	s.Error = s.errorCh
	s.PlaylistCreated = s.plCreateCh
	s.PlaylistDeleted = s.plDeleteCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

func (s *Subscription) sendQueueStarted(e QueueStartedEvent) {
	select {
	case s.startedCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendQueueEnded(e QueueEndedEvent) {
	select {
	case s.endedCh <- e:
	default:
	}
}

func (s *Subscription) sendTrackAdded(e TrackAddedEvent) {
	select {
	case s.addedCh <- e:
	default:
	}
}

func (s *Subscription) sendTrackPlaying(e TrackPlayingEvent) {
	select {
	case s.playingCh <- e:
	default:
	}
}

func (s *Subscription) sendStateChange(e StateChangeEvent) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

func (s *Subscription) sendPlaylistCreated(e PlaylistCreatedEvent) {
	select {
	case s.plCreateCh <- e:
	default:
	}
}

func (s *Subscription) sendPlaylistDeleted(e PlaylistDeletedEvent) {
	select {
	case s.plDeleteCh <- e:
	default:
	}
}

// subscriberHub fans events out to every live subscription. It has its own
// lock so events can be emitted while the player mutex is held.
type subscriberHub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func newSubscriberHub() *subscriberHub {
	return &subscriberHub{subs: make(map[*Subscription]struct{})}
}

func (h *subscriberHub) subscribe() *Subscription {
	s := newSubscription()
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *subscriberHub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		s.close()
	}
	h.mu.Unlock()
}

func (h *subscriberHub) each(fn func(*Subscription)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		fn(s)
	}
}

func (h *subscriberHub) sendQueueStarted(e QueueStartedEvent) {
	h.each(func(s *Subscription) { s.sendQueueStarted(e) })
}

func (h *subscriberHub) sendQueueEnded(e QueueEndedEvent) {
	h.each(func(s *Subscription) { s.sendQueueEnded(e) })
}

func (h *subscriberHub) sendTrackAdded(e TrackAddedEvent) {
	h.each(func(s *Subscription) { s.sendTrackAdded(e) })
}

func (h *subscriberHub) sendTrackPlaying(e TrackPlayingEvent) {
	h.each(func(s *Subscription) { s.sendTrackPlaying(e) })
}

func (h *subscriberHub) sendStateChange(e StateChangeEvent) {
	h.each(func(s *Subscription) { s.sendStateChange(e) })
}

func (h *subscriberHub) sendError(e ErrorEvent) {
	h.each(func(s *Subscription) { s.sendError(e) })
}

func (h *subscriberHub) sendPlaylistCreated(e PlaylistCreatedEvent) {
	h.each(func(s *Subscription) { s.sendPlaylistCreated(e) })
}

func (h *subscriberHub) sendPlaylistDeleted(e PlaylistDeletedEvent) {
	h.each(func(s *Subscription) { s.sendPlaylistDeleted(e) })
}
