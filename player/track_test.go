package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackDurationString(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{7 * time.Second, "00:07"},
		{3*time.Minute + 5*time.Second, "03:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{25*time.Hour + 42*time.Minute + 3*time.Second, "25:42:03"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NewTrackDuration(c.d).String(), "duration %s", c.d)
	}
}

func TestRenderProgress(t *testing.T) {
	total := 100 * time.Second

	// Below ten percent the slider is not drawn.
	bar := renderProgress(5*time.Second, total, 11, "-", "o")
	assert.Equal(t, "----------- [5%]", bar)

	bar = renderProgress(50*time.Second, total, 11, "-", "o")
	assert.Equal(t, "-----o----- [50%]", bar)

	bar = renderProgress(100*time.Second, total, 11, "-", "o")
	assert.Equal(t, "----------o [100%]", bar)

	// Streams can run past the reported duration.
	bar = renderProgress(120*time.Second, total, 11, "-", "o")
	assert.Equal(t, "----------o [120%]", bar)

	// Unknown duration renders an empty bar.
	bar = renderProgress(30*time.Second, 0, 11, "-", "o")
	assert.Equal(t, "----------- [0%]", bar)
}
