package player

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// OpusSilence is the Opus representation of one silent frame, fed to the
// transport while a resource is paused so the connection stays subscribed.
var OpusSilence = []byte{0xf8, 0xff, 0xfe}

const opusFrameDuration = 20 * time.Millisecond

// errResourceStopped marks a resource torn down on purpose. The driver never
// acts on it; completion callbacks for replaced resources are stale by
// generation.
var errResourceStopped = errors.New("audio resource stopped")

// StreamOptions describes how a track's audio resource is built. Filter is
// an ffmpeg -af chain (empty for none); Gain is a linear volume factor with
// 1.0 as unity; Seek is the start offset within the track.
type StreamOptions struct {
	Filter string
	Gain   float64
	Seek   time.Duration
}

// AudioResource is a live decoded audio stream for one track. It doubles as
// the Opus frame provider handed to the voice transport.
type AudioResource interface {
	ProvideOpusFrame() ([]byte, error)
	Close()

	// Done yields exactly one value: nil on natural end of stream, an error
	// on a mid-stream decode or network failure.
	Done() <-chan error
	Pause(paused bool)
	Paused() bool
	Position() time.Duration
	Stop()
}

// AudioStreamer builds audio resources. The production implementation runs
// ffmpeg against a resolved stream URL; tests substitute fakes.
type AudioStreamer interface {
	Open(ctx context.Context, track Track, opts StreamOptions) (AudioResource, error)
}

// FFmpegStreamer turns tracks into Ogg/Opus frame streams by piping a
// resolved stream URL through an ffmpeg child process. Filters, gain and
// seek offsets are baked into the ffmpeg invocation.
type FFmpegStreamer struct {
	resolver *Resolver
}

func NewFFmpegStreamer(resolver *Resolver) *FFmpegStreamer {
	return &FFmpegStreamer{resolver: resolver}
}

func (s *FFmpegStreamer) Open(ctx context.Context, track Track, opts StreamOptions) (AudioResource, error) {
	input, err := s.resolver.StreamURL(ctx, track.URL)
	if err != nil {
		return nil, wrapError(CodeStreamFailed, "stream.open", err, "failed to resolve stream for %s", track.URL)
	}

	args := make([]string, 0, 32)
	if strings.HasPrefix(input, "http") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_at_eof", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "2",
			"-user_agent", "Mozilla/5.0",
		)
	}
	if opts.Seek > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", opts.Seek.Seconds()))
	}
	args = append(args, "-i", input, "-map", "0:a")

	if chain := buildFilterChain(opts); chain != "" {
		args = append(args, "-af", chain)
	}

	args = append(args,
		"-acodec", "libopus",
		"-b:a", "128k",
		"-vbr", "on",
		"-compression_level", "10",
		"-analyzeduration", "0",
		"-probesize", "32",
		"-f", "opus",
		"pipe:1",
	)

	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, wrapError(CodeStreamFailed, "stream.open", err, "stdout pipe")
	}
	stderr, _ := cmd.StderrPipe()

	if err := cmd.Start(); err != nil {
		return nil, wrapError(CodeStreamFailed, "stream.open", err, "failed to start ffmpeg")
	}

	res := &ffmpegResource{
		cmd:        cmd,
		reader:     bufio.NewReaderSize(stdout, 16384),
		header:     make([]byte, 27),
		segBuf:     make([]byte, 255),
		baseOffset: opts.Seek,
		done:       make(chan error, 1),
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			res.lastStderr.Store(scanner.Text())
		}
	}()

	return res, nil
}

// buildFilterChain combines the queue filter with the gain into one -af
// argument. Unity gain is omitted so an unfiltered default-volume stream
// runs without a filter graph.
func buildFilterChain(opts StreamOptions) string {
	parts := make([]string, 0, 2)
	if opts.Filter != "" {
		parts = append(parts, opts.Filter)
	}
	if opts.Gain > 0 && opts.Gain != 1.0 {
		parts = append(parts, fmt.Sprintf("volume=%.4f", opts.Gain))
	}
	return strings.Join(parts, ",")
}

// ffmpegResource parses Opus packets out of the Ogg container ffmpeg
// produces on stdout.
type ffmpegResource struct {
	cmd        *exec.Cmd
	reader     *bufio.Reader
	header     []byte
	segBuf     []byte
	packetBuf  bytes.Buffer
	queue      [][]byte
	baseOffset time.Duration

	frameCount atomic.Int64
	paused     atomic.Bool
	stopped    atomic.Bool
	lastStderr atomic.Value

	done     chan error
	doneOnce sync.Once
	waitOnce sync.Once
	waitErr  error
}

func (r *ffmpegResource) Done() <-chan error { return r.done }

func (r *ffmpegResource) Pause(paused bool) { r.paused.Store(paused) }

func (r *ffmpegResource) Paused() bool { return r.paused.Load() }

// Position reports how much of the track has been provided so far,
// including the initial seek offset.
func (r *ffmpegResource) Position() time.Duration {
	return r.baseOffset + time.Duration(r.frameCount.Load())*opusFrameDuration
}

// Stop tears the resource down on purpose. The completion channel still
// fires, carrying a sentinel the driver treats as stale. The killed child
// is reaped in the background; nothing reads its stdout afterwards.
func (r *ffmpegResource) Stop() {
	r.stopped.Store(true)
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
		go r.wait()
	}
	r.finish(errResourceStopped)
}

func (r *ffmpegResource) Close() {
	r.Stop()
}

func (r *ffmpegResource) finish(err error) {
	r.doneOnce.Do(func() {
		r.done <- err
	})
}

// wait reaps the ffmpeg process once and classifies its exit.
func (r *ffmpegResource) wait() error {
	r.waitOnce.Do(func() {
		err := r.cmd.Wait()
		if err != nil && !r.stopped.Load() {
			detail := ""
			if s, ok := r.lastStderr.Load().(string); ok && s != "" {
				detail = ": " + s
			}
			r.waitErr = fmt.Errorf("ffmpeg exited: %w%s", err, detail)
			sys.LogVoice("Stream process failed: %v", r.waitErr)
		}
	})
	return r.waitErr
}

// ProvideOpusFrame parses the next Opus packet from the Ogg stream. While
// paused it yields silence so the transport keeps its subscription.
func (r *ffmpegResource) ProvideOpusFrame() ([]byte, error) {
	if r.paused.Load() {
		return OpusSilence, nil
	}

	// Return queued packets if any
	if len(r.queue) > 0 {
		frame := r.queue[0]
		r.queue = r.queue[1:]
		r.frameCount.Add(1)
		return frame, nil
	}

scanLoop:
	for {
		sig, err := r.reader.Peek(4)
		if err != nil {
			return nil, r.endOfStream(err)
		}

		if string(sig) == "OggS" {
			if _, err := io.ReadFull(r.reader, r.header); err != nil {
				return nil, r.endOfStream(err)
			}
		} else {
			_, _ = r.reader.Discard(1)
			continue scanLoop
		}

		numSegs := int(r.header[26])
		segTable := r.segBuf[:numSegs]
		if _, err := io.ReadFull(r.reader, segTable); err != nil {
			return nil, r.endOfStream(err)
		}

		for _, segLen := range segTable {
			l := int(segLen)
			if _, err := io.CopyN(&r.packetBuf, r.reader, int64(l)); err != nil {
				return nil, r.endOfStream(err)
			}

			if l < 255 {
				payload := r.packetBuf.Bytes()
				frame := make([]byte, len(payload))
				copy(frame, payload)
				r.packetBuf.Reset()

				// Skip metadata packets (OpusHead/OpusTags).
				if len(frame) > 8 && (string(frame[:8]) == "OpusHead" || string(frame[:8]) == "OpusTags") {
					continue
				}

				r.queue = append(r.queue, frame)
			}
		}

		if len(r.queue) > 0 {
			frame := r.queue[0]
			r.queue = r.queue[1:]
			r.frameCount.Add(1)
			return frame, nil
		}
	}
}

// endOfStream distinguishes a clean drain from a mid-stream failure by the
// ffmpeg exit status.
func (r *ffmpegResource) endOfStream(readErr error) error {
	if r.stopped.Load() {
		r.finish(errResourceStopped)
		return readErr
	}
	if waitErr := r.wait(); waitErr != nil {
		r.finish(waitErr)
		return waitErr
	}
	if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
		r.finish(nil)
		return io.EOF
	}
	r.finish(readErr)
	return readErr
}
