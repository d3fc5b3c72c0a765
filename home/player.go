// Package home contains the bot's user-facing commands and the glue between
// Discord interactions and the player engine.
package home

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

var musicPlayer *player.Player

// InitPlayer wires the player engine to a connected client and starts the
// event relay. Called once from the ready callback.
func InitPlayer(ctx context.Context, client *bot.Client) {
	musicPlayer = player.New(player.Options{
		Config:    sys.GlobalConfig.Player,
		Transport: player.NewDisgoTransport(client),
	})
	go relayPlayerEvents(ctx, client, musicPlayer.Subscribe())
}

// GetPlayer returns the shared player instance.
func GetPlayer() *player.Player { return musicPlayer }

// relayPlayerEvents forwards engine events to the originating text channels.
func relayPlayerEvents(ctx context.Context, client *bot.Client, sub *player.Subscription) {
	for {
		select {
		case e := <-sub.QueueStarted:
			notify(client, e.Queue.TextChannelID, "🎶 Started playing in <#%s>", e.Queue.VoiceChannelID)
		case e := <-sub.QueueEnded:
			notify(client, e.Queue.TextChannelID, "⏹️ Queue finished.")
		case e := <-sub.TrackPlaying:
			notify(client, e.Track.TextChannelID, "▶️ Now playing **%s** `[%s]`", e.Track.Title, e.Track.Duration)
		case e := <-sub.TrackAdded:
			notify(client, e.Track.TextChannelID, "➕ Added **%s** to the queue.", e.Track.Title)
		case e := <-sub.Error:
			sys.LogPlayer("Player error in guild %s (%s): %v", e.GuildID, e.Method, e.Err)
			notify(client, e.TextChannelID, "❌ Playback error: %v", e.Err)
		case <-sub.StateChanged:
		case <-sub.PlaylistCreated:
		case <-sub.PlaylistDeleted:
		case <-sub.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func notify(client *bot.Client, channelID snowflake.ID, format string, v ...any) {
	if channelID == 0 {
		return
	}
	_, err := client.Rest.CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf(format, v...)).
		Build())
	if err != nil {
		sys.LogPlayer("Failed to notify channel %s: %v", channelID, err)
	}
}

// respond sends an immediate interaction reply.
func respond(event *events.ApplicationCommandInteractionCreate, format string, v ...any) {
	_ = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf(format, v...)).
		Build())
}

// respondEphemeral sends an immediate reply only the caller can see.
func respondEphemeral(event *events.ApplicationCommandInteractionCreate, format string, v ...any) {
	_ = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf(format, v...)).
		SetEphemeral(true).
		Build())
}

// updateResponse edits a deferred interaction reply.
func updateResponse(event *events.ApplicationCommandInteractionCreate, format string, v ...any) {
	_, _ = event.Client().Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.NewMessageUpdateBuilder().
		SetContent(fmt.Sprintf(format, v...)).
		Build())
}

// callerVoiceChannel resolves the invoking member's current voice channel.
func callerVoiceChannel(event *events.ApplicationCommandInteractionCreate) (snowflake.ID, bool) {
	if event.GuildID() == nil || event.Member() == nil {
		return 0, false
	}
	voiceState, ok := event.Client().Caches.VoiceState(*event.GuildID(), event.User().ID)
	if !ok || voiceState.ChannelID == nil {
		return 0, false
	}
	return *voiceState.ChannelID, true
}
