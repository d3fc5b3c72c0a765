package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	lyricsBaseURL   = "https://lrclib.net/api"
	lyricsUserAgent = "discord-player-music/1.0 (https://github.com/xyligan-gp/discord-player-music-sub000)"
)

// LyricsResult is a single lyrics match from the lrclib.net API.
type LyricsResult struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// HasPlainLyrics reports whether the result carries plain text lyrics.
func (r *LyricsResult) HasPlainLyrics() bool {
	return r.PlainLyrics != ""
}

// LyricsProvider resolves a free-text query to lyrics.
type LyricsProvider interface {
	Search(ctx context.Context, query string) (LyricsResult, error)
}

// LyricsClient queries the lrclib.net lyrics API.
type LyricsClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewLyricsClient() *LyricsClient {
	return &LyricsClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    lyricsBaseURL,
	}
}

// Search returns the first non-instrumental match with plain lyrics.
func (c *LyricsClient) Search(ctx context.Context, query string) (LyricsResult, error) {
	if query == "" {
		return LyricsResult{}, newError(CodeInvalidArgument, "lyrics", "empty query")
	}

	params := url.Values{}
	params.Set("q", query)
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return LyricsResult{}, wrapError(CodeLyricsNotFound, "lyrics", err, "create request")
	}
	req.Header.Set("User-Agent", lyricsUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LyricsResult{}, wrapError(CodeLyricsNotFound, "lyrics", err, "http request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return LyricsResult{}, newError(CodeLyricsNotFound, "lyrics", "unexpected status %s for %q", resp.Status, query)
	}

	var results []LyricsResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return LyricsResult{}, wrapError(CodeLyricsNotFound, "lyrics", err, "decode response")
	}

	for _, r := range results {
		if !r.Instrumental && r.HasPlainLyrics() {
			return r, nil
		}
	}
	return LyricsResult{}, newError(CodeLyricsNotFound, "lyrics", "no lyrics found for %q", query)
}
