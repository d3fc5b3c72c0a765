package home

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// searchSession is one pending track selection. The user who invoked the
// search answers with a result number in the same channel.
type searchSession struct {
	results  []player.Track
	bind     func(player.Track) player.Track
	attempts int
	timer    *time.Timer
	event    *events.ApplicationCommandInteractionCreate
}

type collectorKey struct {
	channelID snowflake.ID
	userID    snowflake.ID
}

var (
	collectorMu sync.Mutex
	collectors  = map[collectorKey]*searchSession{}
)

func init() {
	sys.RegisterMessageCreateHandler(onCollectorMessage)
}

// startSearchCollector presents the search results and waits for the user
// to reply with a selection number.
func startSearchCollector(event *events.ApplicationCommandInteractionCreate, results []player.Track, bind func(player.Track) player.Track) {
	var sb strings.Builder
	sb.WriteString("🔍 Select a track by replying with its number:\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "`%d.` %s", r.SearchIndex, r.Title)
		if r.Author.Name != "" {
			fmt.Fprintf(&sb, " • %s", r.Author.Name)
		}
		sb.WriteString("\n")
	}
	updateResponse(event, "%s", sb.String())

	key := collectorKey{channelID: event.Channel().ID(), userID: event.User().ID}
	session := &searchSession{
		results:  results,
		bind:     bind,
		attempts: sys.GlobalConfig.Player.CollectorAttempts,
		event:    event,
	}
	session.timer = time.AfterFunc(sys.GlobalConfig.Player.CollectorTimeout, func() {
		expireCollector(key)
	})

	collectorMu.Lock()
	if old, ok := collectors[key]; ok {
		old.timer.Stop()
	}
	collectors[key] = session
	collectorMu.Unlock()

	sys.LogCollector("Waiting for selection from user %s in channel %s", key.userID, key.channelID)
}

func expireCollector(key collectorKey) {
	collectorMu.Lock()
	session, ok := collectors[key]
	if ok {
		delete(collectors, key)
	}
	collectorMu.Unlock()
	if !ok {
		return
	}

	sys.LogCollector("Selection from user %s timed out", key.userID)
	notify(session.event.Client(), key.channelID, "⌛ Track selection timed out.")
}

func onCollectorMessage(event *events.MessageCreate) {
	if event.Message.Author.Bot {
		return
	}

	key := collectorKey{channelID: event.ChannelID, userID: event.Message.Author.ID}
	collectorMu.Lock()
	session, ok := collectors[key]
	collectorMu.Unlock()
	if !ok {
		return
	}

	choice, err := strconv.Atoi(strings.TrimSpace(event.Message.Content))
	if err != nil || choice < 1 || choice > len(session.results) {
		session.attempts--
		if session.attempts <= 0 {
			session.timer.Stop()
			collectorMu.Lock()
			delete(collectors, key)
			collectorMu.Unlock()
			notify(event.Client(), key.channelID, "❌ Invalid selection, cancelled.")
			return
		}
		notify(event.Client(), key.channelID, "⚠️ Reply with a number between 1 and %d (%d attempts left).", len(session.results), session.attempts)
		return
	}

	session.timer.Stop()
	collectorMu.Lock()
	delete(collectors, key)
	collectorMu.Unlock()

	track := session.bind(session.results[choice-1])
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := musicPlayer.Add(ctx, track); err != nil {
		notify(event.Client(), key.channelID, "❌ Failed to queue: %v", err)
		return
	}
	notify(event.Client(), key.channelID, "🎵 Queued **%s**", track.Title)
}

// hasFold reports whether s contains substr, case-insensitively.
func hasFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
