package player

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
	"golang.org/x/time/rate"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

const searchTimeout = 2600 * time.Millisecond

// Searcher resolves free-text queries into candidate tracks. Direct URLs
// bypass the search backends entirely.
type Searcher struct {
	resolver *Resolver
	limiter  *rate.Limiter
	limit    int
}

func NewSearcher(resolver *Resolver, limit int) *Searcher {
	if limit <= 0 {
		limit = 10
	}
	return &Searcher{
		resolver: resolver,
		limiter:  rate.NewLimiter(rate.Every(300*time.Millisecond), 3),
		limit:    limit,
	}
}

// Search resolves a query into candidate tracks. A URL query yields exactly
// one result (or the expanded playlist) with a zero search index; a title
// query fans out to both search backends concurrently, merges with music
// results first and deduplicates by video ID, assigning 1-based indices.
func (s *Searcher) Search(ctx context.Context, query string) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(CodeInvalidArgument, "search", "empty query")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, wrapError(CodeSearchFailed, "search", err, "rate limit wait")
	}

	if isURL(query) {
		if isPlaylistURL(query) {
			return s.resolver.Playlist(ctx, query)
		}
		track, err := s.resolver.TrackMeta(ctx, query)
		if err != nil {
			return nil, err
		}
		return []Track{track}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	resMu := sync.Mutex{}
	var music, video []Track
	seen := make(map[string]bool)
	wg := sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		search := ytmusic.TrackSearch(query)
		result, err := search.Next()
		if err != nil {
			sys.LogSearch("Music search failed for %q: %v", query, err)
			return
		}
		for _, v := range result.Tracks {
			if v.VideoID == "" {
				continue
			}
			track := Track{
				Title: v.Title,
				URL:   "https://music.youtube.com/watch?v=" + v.VideoID,
			}
			if len(v.Artists) > 0 {
				track.Author = TrackAuthor{Name: v.Artists[0].Name}
			}
			if v.Duration > 0 {
				track.Duration = NewTrackDuration(time.Duration(v.Duration) * time.Second)
			}
			if len(v.Thumbnails) > 0 {
				track.Thumbnail = v.Thumbnails[len(v.Thumbnails)-1].URL
			}
			resMu.Lock()
			if !seen[v.VideoID] {
				seen[v.VideoID] = true
				music = append(music, track)
			}
			resMu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		c := ytsearch.NewClient(nil)
		result, err := c.Search(ctx, query)
		if err != nil {
			sys.LogSearch("Video search failed for %q: %v", query, err)
			return
		}
		for _, v := range result.Results {
			track := Track{
				Title: v.Title,
				URL:   "https://www.youtube.com/watch?v=" + v.VideoID,
			}
			resMu.Lock()
			if !seen[v.VideoID] {
				seen[v.VideoID] = true
				video = append(video, track)
			}
			resMu.Unlock()
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	resMu.Lock()
	defer resMu.Unlock()

	merged := append(append([]Track{}, music...), video...)
	if len(merged) == 0 {
		return nil, newError(CodeSearchFailed, "search", "no results for %q", query)
	}
	if len(merged) > s.limit {
		merged = merged[:s.limit]
	}
	for i := range merged {
		merged[i].SearchIndex = i + 1
	}
	return merged, nil
}

func isURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isPlaylistURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	list := u.Query().Get("list")
	return strings.Contains(u.Path, "playlist") || (list != "" && u.Query().Get("v") == "")
}
