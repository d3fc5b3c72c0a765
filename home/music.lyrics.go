package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
)

const lyricsMessageLimit = 1900

func handleMusicLyrics(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	query, ok := data.OptString("query")
	if !ok || query == "" {
		info, err := musicPlayer.NowPlaying(*event.GuildID())
		if err != nil {
			respondEphemeral(event, "❌ Nothing is playing, give me a song to look up.")
			return
		}
		query = info.Track.Title
		if info.Track.Author.Name != "" {
			query = info.Track.Author.Name + " " + query
		}
	}

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := musicPlayer.Lyrics(ctx, query)
	if err != nil {
		updateResponse(event, "❌ No lyrics found for **%s**.", query)
		return
	}

	text := result.PlainLyrics
	if len(text) > lyricsMessageLimit {
		text = text[:lyricsMessageLimit] + "…"
	}
	updateResponse(event, "📜 **%s • %s**\n\n%s", result.ArtistName, result.TrackName, text)
}
