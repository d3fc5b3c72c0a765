package home

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func searchResults(n int) []player.Track {
	results := make([]player.Track, n)
	for i := range results {
		results[i].SearchIndex = i + 1
	}
	return results
}

func TestShouldCollectSelection(t *testing.T) {
	// Direct URL and playlist resolutions queue straight away.
	direct := []player.Track{{SearchIndex: 0}, {SearchIndex: 0}}
	assert.False(t, shouldCollectSelection(direct[:1], true))
	assert.False(t, shouldCollectSelection(direct[:1], false))
	assert.False(t, shouldCollectSelection(direct, true))

	// A lone search match is only auto-queued when auto adding is on.
	assert.False(t, shouldCollectSelection(searchResults(1), true))
	assert.True(t, shouldCollectSelection(searchResults(1), false))

	// Multiple search matches always need the user to pick.
	assert.True(t, shouldCollectSelection(searchResults(5), true))
	assert.True(t, shouldCollectSelection(searchResults(5), false))
}
