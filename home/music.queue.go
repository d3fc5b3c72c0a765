package home

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

const queuePageSize = 15

func handleMusicQueue(event *events.ApplicationCommandInteractionCreate) {
	info, err := musicPlayer.Queue(*event.GuildID())
	if err != nil {
		respondEphemeral(event, "❌ Nothing is playing.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎶 **Queue** (%d tracks", len(info.Tracks))
	switch {
	case info.Loop.Track:
		sb.WriteString(", repeating track")
	case info.Loop.Queue:
		sb.WriteString(", repeating queue")
	}
	fmt.Fprintf(&sb, ", volume %g)\n", info.Volume)
	if info.Filter != "" && info.Filter != "clear" {
		fmt.Fprintf(&sb, "Filter: **%s**\n", info.Filter)
	}

	for i, t := range info.Tracks {
		if i >= queuePageSize {
			fmt.Fprintf(&sb, "…and %d more\n", len(info.Tracks)-queuePageSize)
			break
		}
		marker := fmt.Sprintf("`%d.`", i)
		if i == 0 {
			marker = "▶️"
		}
		fmt.Fprintf(&sb, "%s **%s** `[%s]`\n", marker, t.Title, t.Duration)
	}
	respond(event, "%s", sb.String())
}

func handleMusicNow(event *events.ApplicationCommandInteractionCreate) {
	info, err := musicPlayer.NowPlaying(*event.GuildID())
	if err != nil {
		respondEphemeral(event, "❌ Nothing is playing.")
		return
	}

	bar, err := musicPlayer.Progress(*event.GuildID())
	if err != nil {
		bar = ""
	}

	state := "▶️"
	if info.Paused {
		state = "⏸️"
	}
	respond(event, "%s **%s**\n`%s / %s`\n%s",
		state, info.Track.Title,
		player.NewTrackDuration(info.Position), player.NewTrackDuration(info.Duration),
		bar)
}
