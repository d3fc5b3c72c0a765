package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/disgo/voice"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

const (
	testGuild   = snowflake.ID(100000000000000001)
	testText    = snowflake.ID(100000000000000002)
	testVoice   = snowflake.ID(100000000000000003)
	testUser    = snowflake.ID(100000000000000004)
	waitTimeout = 2 * time.Second
	waitTick    = 5 * time.Millisecond
)

// fakeConn is an in-memory voice transport connection.
type fakeConn struct {
	mu       sync.Mutex
	openErr  error
	openHang bool
	opened   bool
	closed   bool
	provider voice.OpusFrameProvider
	speaking bool
}

func (c *fakeConn) Open(ctx context.Context, channelID snowflake.ID) error {
	if c.openHang {
		<-ctx.Done()
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return c.openErr
	}
	c.opened = true
	return nil
}

func (c *fakeConn) Close(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Attach(provider voice.OpusFrameProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = provider
}

func (c *fakeConn) Speaking(ctx context.Context, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speaking = active
	return nil
}

type fakeTransport struct {
	mu    sync.Mutex
	conns []*fakeConn
	next  *fakeConn
}

func (t *fakeTransport) CreateConn(guildID snowflake.ID) TransportConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn := t.next
	if conn == nil {
		conn = &fakeConn{}
	}
	t.next = nil
	t.conns = append(t.conns, conn)
	return conn
}

// fakeResource is a controllable audio resource.
type fakeResource struct {
	opts    StreamOptions
	track   Track
	done    chan error
	once    sync.Once
	paused  atomic.Bool
	stopped atomic.Bool
}

func newFakeResource(track Track, opts StreamOptions) *fakeResource {
	return &fakeResource{track: track, opts: opts, done: make(chan error, 1)}
}

func (r *fakeResource) ProvideOpusFrame() ([]byte, error) { return OpusSilence, nil }
func (r *fakeResource) Close()                            { r.Stop() }
func (r *fakeResource) Done() <-chan error                { return r.done }
func (r *fakeResource) Pause(paused bool)                 { r.paused.Store(paused) }
func (r *fakeResource) Paused() bool                      { return r.paused.Load() }
func (r *fakeResource) Position() time.Duration           { return 42 * time.Second }

func (r *fakeResource) Stop() {
	r.stopped.Store(true)
	r.finish(errResourceStopped)
}

// finish completes the stream, nil means natural end.
func (r *fakeResource) finish(err error) {
	r.once.Do(func() { r.done <- err })
}

type fakeStreamer struct {
	mu        sync.Mutex
	resources []*fakeResource
	openErr   error
}

func (s *fakeStreamer) Open(ctx context.Context, track Track, opts StreamOptions) (AudioResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	r := newFakeResource(track, opts)
	s.resources = append(s.resources, r)
	return r, nil
}

func (s *fakeStreamer) last() *fakeResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.resources) == 0 {
		return nil
	}
	return s.resources[len(s.resources)-1]
}

func (s *fakeStreamer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

func newTestPlayer() (*Player, *fakeStreamer, *fakeTransport) {
	streamer := &fakeStreamer{}
	transport := &fakeTransport{}
	p := New(Options{
		Config: sys.PlayerConfig{
			AutoAddTracks:      true,
			SearchResultsLimit: 10,
			SynchronLoop:       true,
			DefaultVolume:      5,
			ProgressSize:       11,
			ProgressLine:       "▬",
			ProgressSlider:     "🔘",
		},
		Transport: transport,
		Streamer:  streamer,
	})
	return p, streamer, transport
}

func testTrack(title string) Track {
	return Track{
		Title:          title,
		URL:            "https://www.youtube.com/watch?v=" + title,
		Author:         TrackAuthor{Name: "artist"},
		Duration:       NewTrackDuration(3 * time.Minute),
		GuildID:        testGuild,
		TextChannelID:  testText,
		VoiceChannelID: testVoice,
		RequestedBy:    testUser,
	}
}

func TestAddStartsPlayback(t *testing.T) {
	p, streamer, transport := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	info, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	assert.Len(t, info.Tracks, 1)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, queue.State)

	require.Equal(t, 1, streamer.count())
	res := streamer.last()
	assert.Equal(t, "one", res.track.Title)
	assert.Equal(t, 1.0, res.opts.Gain)
	assert.Zero(t, res.opts.Seek)

	require.Len(t, transport.conns, 1)
	assert.True(t, transport.conns[0].opened)
	assert.True(t, transport.conns[0].speaking)
	assert.NotNil(t, transport.conns[0].provider)

	select {
	case <-sub.TrackAdded:
		t.Fatal("creating the queue must not emit TrackAdded")
	default:
	}
	select {
	case e := <-sub.QueueStarted:
		assert.Equal(t, testGuild, e.Queue.GuildID)
	default:
		t.Fatal("expected QueueStarted event")
	}
	select {
	case e := <-sub.TrackPlaying:
		assert.Equal(t, "one", e.Track.Title)
	default:
		t.Fatal("expected TrackPlaying event")
	}
}

func TestAddToExistingQueueDoesNotRestart(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	info, err := p.Add(context.Background(), testTrack("two"))
	require.NoError(t, err)

	assert.Len(t, info.Tracks, 2)
	assert.Equal(t, 1, streamer.count())

	// Only the appended track is reported as added.
	select {
	case e := <-sub.TrackAdded:
		assert.Equal(t, "two", e.Track.Title)
	default:
		t.Fatal("expected TrackAdded for the appended track")
	}
	select {
	case <-sub.TrackAdded:
		t.Fatal("expected exactly one TrackAdded event")
	default:
	}
}

func TestNaturalAdvance(t *testing.T) {
	p, streamer, _ := newTestPlayer()

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	_, err = p.Add(context.Background(), testTrack("two"))
	require.NoError(t, err)

	streamer.last().finish(nil)

	require.Eventually(t, func() bool { return streamer.count() == 2 }, waitTimeout, waitTick)
	assert.Equal(t, "two", streamer.last().track.Title)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	assert.Len(t, queue.Tracks, 1)
}

func TestQueueEndsAfterLastTrack(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)

	streamer.last().finish(nil)

	require.Eventually(t, func() bool {
		_, err := p.Queue(testGuild)
		return IsCode(err, CodeQueueNotFound)
	}, waitTimeout, waitTick)

	select {
	case e := <-sub.QueueEnded:
		assert.Equal(t, testGuild, e.Queue.GuildID)
	case <-time.After(waitTimeout):
		t.Fatal("expected QueueEnded event")
	}
}

func TestTrackLoopReplaysHead(t *testing.T) {
	p, streamer, _ := newTestPlayer()

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	_, err = p.SetLoop(testGuild, LoopTrack)
	require.NoError(t, err)

	streamer.last().finish(nil)

	require.Eventually(t, func() bool { return streamer.count() == 2 }, waitTimeout, waitTick)
	assert.Equal(t, "one", streamer.last().track.Title)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	assert.Len(t, queue.Tracks, 1)
}

func TestQueueLoopRotates(t *testing.T) {
	p, streamer, _ := newTestPlayer()

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	_, err = p.Add(context.Background(), testTrack("two"))
	require.NoError(t, err)
	_, err = p.SetLoop(testGuild, LoopQueue)
	require.NoError(t, err)

	streamer.last().finish(nil)

	require.Eventually(t, func() bool { return streamer.count() == 2 }, waitTimeout, waitTick)
	assert.Equal(t, "two", streamer.last().track.Title)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	require.Len(t, queue.Tracks, 2)
	assert.Equal(t, "two", queue.Tracks[0].Title)
	assert.Equal(t, "one", queue.Tracks[1].Title)
}

func TestStreamErrorTearsDownQueue(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	_, err = p.Add(context.Background(), testTrack("two"))
	require.NoError(t, err)

	streamer.last().finish(errors.New("decode failure"))

	select {
	case e := <-sub.Error:
		assert.Equal(t, testGuild, e.GuildID)
		assert.Equal(t, "stream", e.Method)
	case <-time.After(waitTimeout):
		t.Fatal("expected Error event")
	}

	// No auto-skip after a stream failure.
	require.Eventually(t, func() bool {
		_, err := p.Queue(testGuild)
		return IsCode(err, CodeQueueNotFound)
	}, waitTimeout, waitTick)
	assert.Equal(t, 1, streamer.count())
}

func TestLoadFailureTerminatesQueue(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	streamer.openErr = errors.New("resolve failed")
	_, err := p.Add(context.Background(), testTrack("one"))
	require.Error(t, err)

	_, err = p.Queue(testGuild)
	assert.True(t, IsCode(err, CodeQueueNotFound))

	select {
	case e := <-sub.Error:
		assert.Equal(t, "play", e.Method)
	default:
		t.Fatal("expected Error event")
	}
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	p, streamer, _ := newTestPlayer()

	_, err := p.Add(context.Background(), testTrack("one"))
	require.NoError(t, err)
	_, err = p.Add(context.Background(), testTrack("two"))
	require.NoError(t, err)

	first := streamer.last()

	_, _, err = p.Skip(context.Background(), testGuild)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return streamer.count() == 2 }, waitTimeout, waitTick)

	// The replaced resource completing must not advance the queue again.
	first.finish(nil)
	time.Sleep(50 * time.Millisecond)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	assert.Equal(t, "two", queue.Tracks[0].Title)
	assert.Equal(t, 2, streamer.count())
}
