package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handlePlaylistCreate(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	title, _ := data.OptString("title")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	playlist, err := musicPlayer.CreatePlaylist(ctx, *event.GuildID(), title, event.User().Username)
	if err != nil {
		respondEphemeral(event, "❌ Failed to create playlist: %v", err)
		return
	}
	respond(event, "📁 Created playlist **%s**.", playlist.Title)
}

func handlePlaylistDelete(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	title, _ := data.OptString("title")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	playlist, err := musicPlayer.DeletePlaylist(ctx, *event.GuildID(), title)
	if err != nil {
		if player.IsCode(err, player.CodePlaylistNotFound) {
			respondEphemeral(event, "⚠️ No playlist named **%s**.", title)
			return
		}
		respondEphemeral(event, "❌ Failed to delete playlist: %v", err)
		return
	}
	respond(event, "🗑️ Deleted playlist **%s** (%d tracks).", playlist.Title, playlist.TrackCount)
}

func handlePlaylistList(event *events.ApplicationCommandInteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	playlists, err := musicPlayer.Playlists(ctx, *event.GuildID())
	if err != nil {
		respondEphemeral(event, "❌ Failed to list playlists: %v", err)
		return
	}
	if len(playlists) == 0 {
		respondEphemeral(event, "📁 This server has no playlists yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📁 **Playlists**\n")
	for i, p := range playlists {
		fmt.Fprintf(&sb, "`%d.` **%s** • %d tracks, %s, by %s\n",
			i+1, p.Title, p.TrackCount, player.NewTrackDuration(p.Duration), p.Author)
	}
	respond(event, "%s", sb.String())
}

func handlePlaylistAdd(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	title, _ := data.OptString("title")
	query, _ := data.OptString("query")

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := musicPlayer.Search(ctx, query)
	if err != nil {
		updateResponse(event, "❌ Search failed: %v", err)
		return
	}
	track := results[0]

	playlist, err := musicPlayer.AddToPlaylist(ctx, *event.GuildID(), title, track)
	if err != nil {
		if player.IsCode(err, player.CodePlaylistNotFound) {
			updateResponse(event, "⚠️ No playlist named **%s**.", title)
			return
		}
		updateResponse(event, "❌ Failed to add track: %v", err)
		return
	}
	updateResponse(event, "➕ Added **%s** to **%s** (%d tracks).", track.Title, playlist.Title, playlist.TrackCount)
}

func handlePlaylistRemove(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	title, _ := data.OptString("title")
	position, _ := data.OptInt("position")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := musicPlayer.RemoveFromPlaylist(ctx, *event.GuildID(), title, position); err != nil {
		switch {
		case player.IsCode(err, player.CodePlaylistNotFound):
			respondEphemeral(event, "⚠️ No playlist named **%s**.", title)
		case player.IsCode(err, player.CodeTrackNotFound):
			respondEphemeral(event, "⚠️ No track at position %d.", position)
		default:
			respondEphemeral(event, "❌ Failed to remove track: %v", err)
		}
		return
	}
	respond(event, "🗑️ Removed track %d from **%s**.", position, title)
}

func handlePlaylistPlay(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	title, _ := data.OptString("title")

	voiceChannelID, ok := callerVoiceChannel(event)
	if !ok {
		respondEphemeral(event, "❌ Join a voice channel first.")
		return
	}

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := musicPlayer.PlayPlaylist(ctx, *event.GuildID(), title,
		event.Channel().ID(), voiceChannelID, event.User().ID)
	if err != nil {
		if player.IsCode(err, player.CodePlaylistNotFound) {
			updateResponse(event, "⚠️ No playlist named **%s**.", title)
			return
		}
		updateResponse(event, "❌ Failed to play playlist: %v", err)
		return
	}
	updateResponse(event, "🎵 Queued playlist **%s** (%d tracks).", title, len(info.Tracks))
}
