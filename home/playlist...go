package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// Playlist command tree
func init() {
	voicePerm := discord.PermissionConnect

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "playlist",
		Description:              "Saved playlists",
		DefaultMemberPermissions: omit.New(&voicePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "create",
				Description: "Create a new playlist",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "title",
						Description: "The playlist name",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "delete",
				Description: "Delete a playlist",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "title",
						Description: "The playlist name",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "list",
				Description: "List this server's playlists",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "add",
				Description: "Add a track to a playlist",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "title",
						Description: "The playlist name",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:         "query",
						Description:  "The URL or song name to add",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "remove",
				Description: "Remove a track from a playlist",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "title",
						Description: "The playlist name",
						Required:    true,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "position",
						Description: "The 1-based track position",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "play",
				Description: "Queue a playlist",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "title",
						Description: "The playlist name",
						Required:    true,
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
		case "create":
			handlePlaylistCreate(event, data)
		case "delete":
			handlePlaylistDelete(event, data)
		case "list":
			handlePlaylistList(event)
		case "add":
			handlePlaylistAdd(event, data)
		case "remove":
			handlePlaylistRemove(event, data)
		case "play":
			handlePlaylistPlay(event, data)
		}
	})

	sys.RegisterAutocompleteHandler("playlist", handleMusicAutocomplete)
}
