package player

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillQueue(t *testing.T, p *Player, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := p.Add(context.Background(), testTrack(title))
		require.NoError(t, err)
	}
}

func queueTitles(info QueueInfo) []string {
	titles := make([]string, len(info.Tracks))
	for i, track := range info.Tracks {
		titles[i] = track.Title
	}
	return titles
}

func TestAddRejectsUnboundTrack(t *testing.T) {
	p, _, _ := newTestPlayer()

	_, err := p.Add(context.Background(), Track{Title: "no url"})
	assert.True(t, IsCode(err, CodeInvalidArgument))

	_, err = p.Add(context.Background(), Track{Title: "no guild", URL: "https://example.com"})
	assert.True(t, IsCode(err, CodeInvalidArgument))
}

func TestQueueNotFound(t *testing.T) {
	p, _, _ := newTestPlayer()

	_, err := p.Queue(testGuild)
	assert.True(t, IsCode(err, CodeQueueNotFound))
}

func TestSetStateToggleAndTarget(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)
	fillQueue(t, p, "one")

	info, err := p.SetState(testGuild)
	require.NoError(t, err)
	assert.Equal(t, StatePaused, info.State)
	assert.True(t, streamer.last().Paused())

	select {
	case e := <-sub.StateChanged:
		assert.Equal(t, StatePlaying, e.OldState)
		assert.Equal(t, StatePaused, e.NewState)
	default:
		t.Fatal("expected StateChanged event")
	}

	_, err = p.SetState(testGuild, StatePaused)
	assert.True(t, IsCode(err, CodeStateUnchanged))

	info, err = p.SetState(testGuild, StatePlaying)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, info.State)
	assert.False(t, streamer.last().Paused())
}

func TestSetLoopSynchronExclusion(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one")

	loop, err := p.SetLoop(testGuild, LoopTrack)
	require.NoError(t, err)
	assert.True(t, loop.Track)
	assert.False(t, loop.Queue)

	loop, err = p.SetLoop(testGuild, LoopQueue)
	require.NoError(t, err)
	assert.False(t, loop.Track)
	assert.True(t, loop.Queue)

	// Default target toggles track repeat, disabling queue repeat.
	loop, err = p.SetLoop(testGuild)
	require.NoError(t, err)
	assert.True(t, loop.Track)
	assert.False(t, loop.Queue)

	loop, err = p.SetLoop(testGuild)
	require.NoError(t, err)
	assert.False(t, loop.Track)
	assert.False(t, loop.Queue)
}

func TestSetVolumeValidation(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one")

	for _, v := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		_, err := p.SetVolume(context.Background(), testGuild, v)
		assert.True(t, IsCode(err, CodeInvalidArgument), "volume %v", v)
	}
}

func TestSetVolumeRebuildsAtPosition(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	fillQueue(t, p, "one")

	info, err := p.SetVolume(context.Background(), testGuild, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, info.Volume)

	require.Equal(t, 2, streamer.count())
	res := streamer.last()
	assert.Equal(t, 2.0, res.opts.Gain)
	// The fake resource reports its position as 42s.
	assert.Equal(t, 42*time.Second, res.opts.Seek)
}

func TestSetVolumeOmittedResetsToDefault(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one")

	_, err := p.SetVolume(context.Background(), testGuild, 10)
	require.NoError(t, err)

	info, err := p.SetVolume(context.Background(), testGuild)
	require.NoError(t, err)
	assert.Equal(t, 5.0, info.Volume)
}

func TestSetFilterRestartsFromZero(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	fillQueue(t, p, "one")

	_, err := p.SetFilter(context.Background(), testGuild, "nope")
	assert.True(t, IsCode(err, CodeFilterNotFound))

	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	info, err := p.SetFilter(context.Background(), testGuild, "nightcore")
	require.NoError(t, err)
	assert.Equal(t, "nightcore", info.Filter)

	require.Equal(t, 2, streamer.count())
	res := streamer.last()
	assert.Equal(t, "aresample=48000,asetrate=48000*1.25", res.opts.Filter)
	assert.Zero(t, res.opts.Seek)

	// Rebuilding the same track must not announce it again.
	select {
	case <-sub.TrackPlaying:
		t.Fatal("filter rebuild must not emit TrackPlaying")
	default:
	}
}

func TestSeekValidation(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one")

	_, err := p.Seek(context.Background(), testGuild, -time.Second)
	assert.True(t, IsCode(err, CodeInvalidArgument))

	// Test tracks are 3 minutes long.
	_, err = p.Seek(context.Background(), testGuild, 10*time.Minute)
	assert.True(t, IsCode(err, CodeInvalidArgument))
}

func TestSeekRebuildsAtOffset(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	fillQueue(t, p, "one")

	_, err := p.Seek(context.Background(), testGuild, 90*time.Second)
	require.NoError(t, err)

	require.Equal(t, 2, streamer.count())
	assert.Equal(t, 90*time.Second, streamer.last().opts.Seek)
}

func TestSkipLastTrackEndsQueue(t *testing.T) {
	p, _, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)
	fillQueue(t, p, "one")

	skipped, next, err := p.Skip(context.Background(), testGuild)
	require.NoError(t, err)
	assert.Equal(t, "one", skipped.Title)
	assert.Empty(t, next.URL)

	_, err = p.Queue(testGuild)
	assert.True(t, IsCode(err, CodeQueueNotFound))

	select {
	case <-sub.QueueEnded:
	case <-time.After(waitTimeout):
		t.Fatal("expected QueueEnded event")
	}
}

func TestSkipAdvances(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	fillQueue(t, p, "one", "two")
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	skipped, next, err := p.Skip(context.Background(), testGuild)
	require.NoError(t, err)
	assert.Equal(t, "one", skipped.Title)
	assert.Equal(t, "two", next.Title)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	require.Len(t, queue.Tracks, 1)
	assert.Equal(t, "two", queue.Tracks[0].Title)
	assert.Equal(t, "two", streamer.last().track.Title)

	select {
	case e := <-sub.TrackPlaying:
		assert.Equal(t, "two", e.Track.Title)
	default:
		t.Fatal("expected TrackPlaying for the next track")
	}
}

func TestSkipWithTrackLoopRotates(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one", "two")
	_, err := p.SetLoop(testGuild, LoopTrack)
	require.NoError(t, err)

	skipped, next, err := p.Skip(context.Background(), testGuild)
	require.NoError(t, err)
	assert.Equal(t, "one", skipped.Title)
	assert.Equal(t, "two", next.Title)

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	require.Len(t, queue.Tracks, 2)
	assert.Equal(t, "two", queue.Tracks[0].Title)
	assert.Equal(t, "one", queue.Tracks[1].Title)
}

func TestRemoveTrack(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	fillQueue(t, p, "one", "two", "three")

	_, err := p.RemoveTrack(testGuild, 5)
	assert.True(t, IsCode(err, CodeTrackNotFound))
	_, err = p.RemoveTrack(testGuild, -1)
	assert.True(t, IsCode(err, CodeTrackNotFound))

	removed, err := p.RemoveTrack(testGuild, 1)
	require.NoError(t, err)
	assert.Equal(t, "two", removed.Title)

	// Removing the current track does not interrupt its stream.
	removed, err = p.RemoveTrack(testGuild, 0)
	require.NoError(t, err)
	assert.Equal(t, "one", removed.Title)
	assert.False(t, streamer.last().stopped.Load())

	queue, err := p.Queue(testGuild)
	require.NoError(t, err)
	require.Len(t, queue.Tracks, 1)
	assert.Equal(t, "three", queue.Tracks[0].Title)
}

func TestRemoveLastTrackEndsQueue(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one")

	removed, err := p.RemoveTrack(testGuild, 0)
	require.NoError(t, err)
	assert.Equal(t, "one", removed.Title)

	_, err = p.Queue(testGuild)
	assert.True(t, IsCode(err, CodeQueueNotFound))
}

func TestShuffle(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one", "two")

	_, err := p.Shuffle(testGuild)
	assert.True(t, IsCode(err, CodeShuffleTooFew))

	// A rejected shuffle leaves the queue untouched.
	info, err := p.Queue(testGuild)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, queueTitles(info))

	fillQueue(t, p, "three", "four", "five", "six", "seven")
	tail := []string{"two", "three", "four", "five", "six", "seven"}

	for i := 0; i < 10; i++ {
		info, err := p.Shuffle(testGuild)
		require.NoError(t, err)
		titles := queueTitles(info)
		require.Len(t, titles, 7)
		assert.Equal(t, "one", titles[0], "head must survive shuffling")
		assert.ElementsMatch(t, tail, titles[1:], "shuffling must only reorder the tail")
	}
}

func TestStop(t *testing.T) {
	p, streamer, _ := newTestPlayer()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)
	fillQueue(t, p, "one", "two")

	require.NoError(t, p.Stop(testGuild))
	assert.True(t, streamer.last().stopped.Load())

	_, err := p.Queue(testGuild)
	assert.True(t, IsCode(err, CodeQueueNotFound))

	select {
	case e := <-sub.QueueEnded:
		assert.Len(t, e.Queue.Tracks, 2)
	default:
		t.Fatal("expected QueueEnded event")
	}

	assert.True(t, IsCode(p.Stop(testGuild), CodeQueueNotFound))
}

func TestNowPlayingAndProgress(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one")

	info, err := p.NowPlaying(testGuild)
	require.NoError(t, err)
	assert.Equal(t, "one", info.Track.Title)
	assert.Equal(t, 42*time.Second, info.Position)
	assert.Equal(t, 3*time.Minute, info.Duration)

	bar, err := p.Progress(testGuild)
	require.NoError(t, err)
	assert.Contains(t, bar, "🔘")
	assert.Contains(t, bar, "[23%]")
}

func TestTrackInfo(t *testing.T) {
	p, _, _ := newTestPlayer()
	fillQueue(t, p, "one", "two")

	track, err := p.TrackInfo(testGuild, 1)
	require.NoError(t, err)
	assert.Equal(t, "two", track.Title)

	_, err = p.TrackInfo(testGuild, 2)
	assert.True(t, IsCode(err, CodeTrackNotFound))
}
