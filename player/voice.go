package player

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/voice"
	"github.com/disgoorg/snowflake/v2"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// DefaultReadyTimeout bounds the wait for a voice connection to become
// ready before playback is attempted.
const DefaultReadyTimeout = 5000 * time.Millisecond

// TransportConn is the narrow surface the player needs from a platform
// voice connection. The production implementation wraps disgo's voice.Conn;
// tests substitute fakes.
type TransportConn interface {
	Open(ctx context.Context, channelID snowflake.ID) error
	Close(ctx context.Context)
	Attach(provider voice.OpusFrameProvider)
	Speaking(ctx context.Context, active bool) error
}

// Transport creates per-guild voice connections. It is the only component
// allowed to perform the actual join/leave against the platform.
type Transport interface {
	CreateConn(guildID snowflake.ID) TransportConn
}

// VoiceSession is the live connection handle owned by exactly one guild
// queue. Destroy is idempotent; the playback driver checks Destroyed before
// issuing teardown a second time.
type VoiceSession struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID

	conn      TransportConn
	destroyed atomic.Bool
}

// Destroy closes the underlying connection exactly once. It reports whether
// this call performed the teardown.
func (s *VoiceSession) Destroy(ctx context.Context) bool {
	if !s.destroyed.CompareAndSwap(false, true) {
		return false
	}
	s.conn.Attach(nil)
	_ = s.conn.Speaking(ctx, false)
	s.conn.Close(ctx)
	return true
}

// Destroyed reports whether the session has been torn down.
func (s *VoiceSession) Destroyed() bool { return s.destroyed.Load() }

// Attach binds an Opus frame provider to the connection.
func (s *VoiceSession) Attach(provider voice.OpusFrameProvider) {
	if s.destroyed.Load() {
		return
	}
	s.conn.Attach(provider)
}

// Speaking toggles the speaking flag on the connection.
func (s *VoiceSession) Speaking(ctx context.Context, active bool) error {
	if s.destroyed.Load() {
		return nil
	}
	return s.conn.Speaking(ctx, active)
}

// VoiceManager opens and closes voice connections, one per guild.
type VoiceManager struct {
	mu           sync.Mutex
	transport    Transport
	sessions     map[snowflake.ID]*VoiceSession
	readyTimeout time.Duration
}

func NewVoiceManager(transport Transport, readyTimeout time.Duration) *VoiceManager {
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}
	return &VoiceManager{
		transport:    transport,
		sessions:     make(map[snowflake.ID]*VoiceSession),
		readyTimeout: readyTimeout,
	}
}

// Connect opens a voice connection for a guild. Connecting while a live
// session exists is a policy error; the bounded ready wait turns a hung
// join into a CodeConnectionTimeout failure.
func (vm *VoiceManager) Connect(ctx context.Context, guildID, channelID snowflake.ID) (*VoiceSession, error) {
	vm.mu.Lock()
	if existing, ok := vm.sessions[guildID]; ok && !existing.Destroyed() {
		vm.mu.Unlock()
		return nil, newError(CodeAlreadyConnected, "voice.connect", "already connected to a voice channel in guild %s", guildID)
	}
	session := &VoiceSession{
		GuildID:   guildID,
		ChannelID: channelID,
		conn:      vm.transport.CreateConn(guildID),
	}
	vm.sessions[guildID] = session
	vm.mu.Unlock()

	openCtx, cancel := context.WithTimeout(ctx, vm.readyTimeout)
	defer cancel()

	if err := session.conn.Open(openCtx, channelID); err != nil {
		vm.mu.Lock()
		if vm.sessions[guildID] == session {
			delete(vm.sessions, guildID)
		}
		vm.mu.Unlock()
		session.conn.Close(context.Background())

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, wrapError(CodeConnectionTimeout, "voice.connect", err, "voice connection not ready within %v", vm.readyTimeout)
		}
		return nil, wrapError(CodeNotConnected, "voice.connect", err, "failed to open voice connection in guild %s", guildID)
	}

	sys.LogVoice("Connected to channel %s in guild %s", channelID, guildID)
	return session, nil
}

// Disconnect tears down the guild's connection and returns the prior handle.
func (vm *VoiceManager) Disconnect(ctx context.Context, guildID snowflake.ID) (*VoiceSession, error) {
	vm.mu.Lock()
	session, ok := vm.sessions[guildID]
	if !ok {
		vm.mu.Unlock()
		return nil, newError(CodeNotConnected, "voice.disconnect", "no active voice connection in guild %s", guildID)
	}
	delete(vm.sessions, guildID)
	vm.mu.Unlock()

	if session.Destroy(ctx) {
		sys.LogVoice("Disconnected from guild %s", guildID)
	}
	return session, nil
}

// Session returns the live session for a guild, or nil.
func (vm *VoiceManager) Session(guildID snowflake.ID) *VoiceSession {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sessions[guildID]
}

// --- Disgo transport ---

// DisgoTransport adapts a disgo client's voice manager to the Transport
// interface.
type DisgoTransport struct {
	client *bot.Client
}

func NewDisgoTransport(client *bot.Client) *DisgoTransport {
	return &DisgoTransport{client: client}
}

func (t *DisgoTransport) CreateConn(guildID snowflake.ID) TransportConn {
	return &disgoConn{conn: t.client.VoiceManager.CreateConn(guildID)}
}

type disgoConn struct {
	conn voice.Conn
}

func (c *disgoConn) Open(ctx context.Context, channelID snowflake.ID) error {
	return c.conn.Open(ctx, channelID, false, true)
}

func (c *disgoConn) Close(ctx context.Context) {
	c.conn.Close(ctx)
}

func (c *disgoConn) Attach(provider voice.OpusFrameProvider) {
	c.conn.SetOpusFrameProvider(provider)
}

func (c *disgoConn) Speaking(ctx context.Context, active bool) error {
	if active {
		return c.conn.SetSpeaking(ctx, voice.SpeakingFlagMicrophone)
	}
	return c.conn.SetSpeaking(ctx, 0)
}
