package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRegistryBuiltins(t *testing.T) {
	r := NewFilterRegistry()

	f, err := r.Get("nightcore")
	require.NoError(t, err)
	assert.Equal(t, "aresample=48000,asetrate=48000*1.25", f.Value)

	// Names are case-sensitive.
	_, err = r.Get("Nightcore")
	assert.True(t, IsCode(err, CodeFilterNotFound))

	// clear is the registered no-op filter.
	f, err = r.Get("clear")
	require.NoError(t, err)
	assert.Empty(t, f.Value)
}

func TestFilterRegistryAdd(t *testing.T) {
	r := NewFilterRegistry()

	f, err := r.Add("slowed", "aresample=48000,asetrate=48000*0.9")
	require.NoError(t, err)
	assert.Equal(t, "slowed", f.Name)

	_, err = r.Add("slowed", "something=else")
	assert.True(t, IsCode(err, CodeFilterExists))

	_, err = r.Add("nightcore", "whatever")
	assert.True(t, IsCode(err, CodeFilterExists))

	_, err = r.Add("", "x")
	assert.True(t, IsCode(err, CodeInvalidArgument))
}

func TestFilterRegistryRemove(t *testing.T) {
	r := NewFilterRegistry()

	_, err := r.Remove("missing")
	assert.True(t, IsCode(err, CodeFilterNotFound))

	f, err := r.Remove("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", f.Name)

	_, err = r.Get("echo")
	assert.True(t, IsCode(err, CodeFilterNotFound))
}

func TestFilterRegistryListSorted(t *testing.T) {
	r := NewFilterRegistry()

	list := r.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
}
