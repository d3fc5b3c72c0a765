package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

func handleMusicPlay(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	query, _ := data.OptString("query")

	voiceChannelID, ok := callerVoiceChannel(event)
	if !ok {
		respondEphemeral(event, "❌ Join a voice channel first.")
		return
	}

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := musicPlayer.Search(ctx, query)
	if err != nil {
		updateResponse(event, "❌ Search failed: %v", err)
		return
	}

	if len(results) == 0 {
		updateResponse(event, "❌ No results for **%s**", query)
		return
	}

	bind := func(t player.Track) player.Track {
		t.GuildID = *event.GuildID()
		t.TextChannelID = event.Channel().ID()
		t.VoiceChannelID = voiceChannelID
		t.RequestedBy = event.User().ID
		return t
	}

	// Multiple search matches need the user to pick one.
	if shouldCollectSelection(results, sys.GlobalConfig.Player.AutoAddTracks) {
		startSearchCollector(event, results, bind)
		return
	}

	// Direct URL or playlist resolution: queue everything it yielded.
	if results[0].SearchIndex == 0 {
		tracks := make([]player.Track, len(results))
		for i, t := range results {
			tracks[i] = bind(t)
		}
		if _, err := musicPlayer.AddAll(ctx, tracks); err != nil {
			updateResponse(event, "❌ Failed to queue: %v", err)
			return
		}
		if len(tracks) == 1 {
			updateResponse(event, "🎵 Queued **%s**", tracks[0].Title)
		} else {
			updateResponse(event, "🎵 Queued **%d** tracks", len(tracks))
		}
		return
	}

	track := bind(results[0])
	if _, err := musicPlayer.Add(ctx, track); err != nil {
		updateResponse(event, "❌ Failed to queue: %v", err)
		return
	}
	updateResponse(event, "🎵 Queued **%s**", track.Title)
}

// shouldCollectSelection decides whether /music play hands the results to a
// selection collector. Direct resolutions never collect; a lone search match
// is queued straight away when auto adding is on.
func shouldCollectSelection(results []player.Track, autoAdd bool) bool {
	if results[0].SearchIndex == 0 {
		return false
	}
	return len(results) > 1 || !autoAdd
}

func handleMusicAutocomplete(event *events.AutocompleteInteractionCreate) {
	focused := event.Data.Focused()

	switch focused.Name {
	case "query":
		query := focused.String()
		if query == "" || musicPlayer == nil {
			_ = event.AutocompleteResult(nil)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		results, err := musicPlayer.Search(ctx, query)
		if err != nil {
			_ = event.AutocompleteResult(nil)
			return
		}

		var choices []discord.AutocompleteChoice
		for i, r := range results {
			if i >= 25 {
				break
			}
			name := r.Title
			if len(name) > 100 {
				name = name[:97] + "..."
			}
			val := r.URL
			if len(val) > 100 {
				val = name
			}
			choices = append(choices, discord.AutocompleteChoiceString{Name: name, Value: val})
		}
		_ = event.AutocompleteResult(choices)

	case "name":
		if musicPlayer == nil {
			_ = event.AutocompleteResult(nil)
			return
		}
		prefixFilter := focused.String()
		var choices []discord.AutocompleteChoice
		for _, f := range musicPlayer.Filters().List() {
			if prefixFilter != "" && !hasFold(f.Name, prefixFilter) {
				continue
			}
			if len(choices) >= 25 {
				break
			}
			choices = append(choices, discord.AutocompleteChoiceString{Name: f.Name, Value: f.Name})
		}
		_ = event.AutocompleteResult(choices)
	}
}
