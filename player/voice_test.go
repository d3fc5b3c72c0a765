package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceConnect(t *testing.T) {
	transport := &fakeTransport{}
	vm := NewVoiceManager(transport, time.Second)

	session, err := vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)
	assert.Equal(t, testGuild, session.GuildID)
	assert.Equal(t, testVoice, session.ChannelID)
	assert.Same(t, session, vm.Session(testGuild))
}

func TestVoiceConnectAlreadyConnected(t *testing.T) {
	transport := &fakeTransport{}
	vm := NewVoiceManager(transport, time.Second)

	_, err := vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)

	_, err = vm.Connect(context.Background(), testGuild, testVoice)
	assert.True(t, IsCode(err, CodeAlreadyConnected))
	assert.Len(t, transport.conns, 1)
}

func TestVoiceConnectTimeout(t *testing.T) {
	transport := &fakeTransport{next: &fakeConn{openHang: true}}
	vm := NewVoiceManager(transport, 30*time.Millisecond)

	_, err := vm.Connect(context.Background(), testGuild, testVoice)
	assert.True(t, IsCode(err, CodeConnectionTimeout))
	assert.Nil(t, vm.Session(testGuild))

	// The failed attempt must not block a retry.
	_, err = vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)
}

func TestVoiceDisconnect(t *testing.T) {
	transport := &fakeTransport{}
	vm := NewVoiceManager(transport, time.Second)

	_, err := vm.Disconnect(context.Background(), testGuild)
	assert.True(t, IsCode(err, CodeNotConnected))

	session, err := vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)

	_, err = vm.Disconnect(context.Background(), testGuild)
	require.NoError(t, err)
	assert.True(t, session.Destroyed())
	assert.True(t, transport.conns[0].closed)
	assert.Nil(t, vm.Session(testGuild))
}

func TestVoiceSessionDestroyIdempotent(t *testing.T) {
	transport := &fakeTransport{}
	vm := NewVoiceManager(transport, time.Second)

	session, err := vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)

	assert.True(t, session.Destroy(context.Background()))
	assert.False(t, session.Destroy(context.Background()))
	assert.True(t, session.Destroyed())
}

func TestVoiceReconnectAfterDisconnect(t *testing.T) {
	transport := &fakeTransport{}
	vm := NewVoiceManager(transport, time.Second)

	_, err := vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)
	_, err = vm.Disconnect(context.Background(), testGuild)
	require.NoError(t, err)

	session, err := vm.Connect(context.Background(), testGuild, testVoice)
	require.NoError(t, err)
	assert.False(t, session.Destroyed())
	assert.Len(t, transport.conns, 2)
}
