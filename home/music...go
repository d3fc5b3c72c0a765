package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// Music command tree
func init() {
	voicePerm := discord.PermissionConnect

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "music",
		Description:              "Music playback",
		DefaultMemberPermissions: omit.New(&voicePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "play",
				Description: "Play a track by URL or search query",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:         "query",
						Description:  "The URL or song name to play",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "stop",
				Description: "Stop playback and clear the queue",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "skip",
				Description: "Skip the current track",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "pause",
				Description: "Pause playback",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "resume",
				Description: "Resume playback",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "loop",
				Description: "Toggle track or queue repeat",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "mode",
						Description: "What to repeat",
						Required:    false,
						Choices: []discord.ApplicationCommandOptionChoiceString{
							{Name: "track", Value: "track"},
							{Name: "queue", Value: "queue"},
						},
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "volume",
				Description: "Set the playback volume",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionFloat{
						Name:        "value",
						Description: "The new volume, omit to reset to the default",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "filter",
				Description: "Apply an audio filter",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:         "name",
						Description:  "The filter to apply",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "seek",
				Description: "Jump to a position in the current track",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "seconds",
						Description: "Position in seconds",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "shuffle",
				Description: "Shuffle the queued tracks",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "remove",
				Description: "Remove a track from the queue",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Queue position, 0 is the current track",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "queue",
				Description: "Show the queue",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "now",
				Description: "Show the current track and progress",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "lyrics",
				Description: "Fetch lyrics",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "query",
						Description: "Song to look up, defaults to the current track",
						Required:    false,
					},
				},
			},
		},
	}, func(event *events.ApplicationCommandInteractionCreate) {
		data := event.SlashCommandInteractionData()
		if data.SubCommandName == nil {
			return
		}

		switch *data.SubCommandName {
		case "play":
			handleMusicPlay(event, data)
		case "stop":
			handleMusicStop(event)
		case "skip":
			handleMusicSkip(event)
		case "pause":
			handleMusicPause(event)
		case "resume":
			handleMusicResume(event)
		case "loop":
			handleMusicLoop(event, data)
		case "volume":
			handleMusicVolume(event, data)
		case "filter":
			handleMusicFilter(event, data)
		case "seek":
			handleMusicSeek(event, data)
		case "shuffle":
			handleMusicShuffle(event)
		case "remove":
			handleMusicRemove(event, data)
		case "queue":
			handleMusicQueue(event)
		case "now":
			handleMusicNow(event)
		case "lyrics":
			handleMusicLyrics(event, data)
		}
	})

	sys.RegisterAutocompleteHandler("music", handleMusicAutocomplete)
}
