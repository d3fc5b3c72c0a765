package player

import (
	"bufio"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterChain(t *testing.T) {
	assert.Equal(t, "", buildFilterChain(StreamOptions{Gain: 1.0}))
	assert.Equal(t, "volume=0.5000", buildFilterChain(StreamOptions{Gain: 0.5}))
	assert.Equal(t, "bass=g=10", buildFilterChain(StreamOptions{Filter: "bass=g=10", Gain: 1.0}))
	assert.Equal(t, "bass=g=10,volume=2.0000", buildFilterChain(StreamOptions{Filter: "bass=g=10", Gain: 2.0}))
}

func TestStopReapsStreamProcess(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	r := &ffmpegResource{
		cmd:    cmd,
		reader: bufio.NewReader(stdout),
		header: make([]byte, 27),
		segBuf: make([]byte, 255),
		done:   make(chan error, 1),
	}

	r.Stop()

	// wait shares the reaping goroutine's once, so returning here means the
	// child has been collected and is no longer a zombie.
	assert.NoError(t, r.wait())
	assert.NotNil(t, cmd.ProcessState)
	assert.ErrorIs(t, <-r.Done(), errResourceStopped)
}
