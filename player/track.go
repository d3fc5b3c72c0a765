package player

import (
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackAuthor identifies the channel/artist a track belongs to.
type TrackAuthor struct {
	Name string
	URL  string
}

// TrackDuration carries the raw duration alongside zero-padded display
// components for message formatting.
type TrackDuration struct {
	Raw     time.Duration
	Hours   string
	Minutes string
	Seconds string
}

func (d TrackDuration) String() string {
	if d.Hours == "00" {
		return d.Minutes + ":" + d.Seconds
	}
	return d.Hours + ":" + d.Minutes + ":" + d.Seconds
}

// NewTrackDuration splits a duration into padded display components.
func NewTrackDuration(d time.Duration) TrackDuration {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return TrackDuration{
		Raw:     d,
		Hours:   fmt.Sprintf("%02d", total/3600),
		Minutes: fmt.Sprintf("%02d", (total%3600)/60),
		Seconds: fmt.Sprintf("%02d", total%60),
	}
}

// Track is an immutable description of a playable item. Tracks are created
// by the search layer and never mutated afterwards; queues copy them by
// value.
type Track struct {
	Title     string
	URL       string
	Thumbnail string
	Author    TrackAuthor
	Duration  TrackDuration

	GuildID        snowflake.ID
	TextChannelID  snowflake.ID
	VoiceChannelID snowflake.ID
	RequestedBy    snowflake.ID

	// SearchIndex is the 1-based position within a search result list, or 0
	// for a direct URL resolution.
	SearchIndex int
}

func (t Track) String() string {
	if t.Author.Name != "" {
		return t.Title + " · " + t.Author.Name
	}
	return t.Title
}
