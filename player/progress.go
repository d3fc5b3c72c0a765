package player

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// renderProgress draws a textual progress bar. Streams running past their
// reported duration show percentages above 100 with a full bar; below ten
// percent the slider is not drawn at all.
func renderProgress(position, total time.Duration, size int, line, slider string) string {
	if size <= 0 {
		size = 11
	}
	if line == "" {
		line = "▬"
	}
	if slider == "" {
		slider = "🔘"
	}

	percent := 0.0
	if total > 0 {
		percent = position.Seconds() / total.Seconds() * 100
	}

	filled := int(math.Round(percent / 100 * float64(size)))
	if filled > size {
		filled = size
	}

	var bar string
	if percent < 10 || filled < 1 {
		bar = strings.Repeat(line, size)
	} else {
		bar = strings.Repeat(line, filled-1) + slider + strings.Repeat(line, size-filled)
	}
	return fmt.Sprintf("%s [%d%%]", bar, int(math.Round(percent)))
}
