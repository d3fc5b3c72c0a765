package player

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"

	"github.com/xyligan-gp/discord-player-music-sub000/sys"
)

// Resolver turns a watch URL into playable audio metadata. The primary path
// uses the native YouTube client; yt-dlp covers everything the native
// client cannot parse, including playlists and non-YouTube hosts.
type Resolver struct {
	yt *youtube.Client
}

func NewResolver() *Resolver {
	return &Resolver{yt: &youtube.Client{}}
}

// StreamURL resolves a direct audio stream URL for the given page URL.
func (r *Resolver) StreamURL(ctx context.Context, pageURL string) (string, error) {
	if isYouTubeURL(pageURL) {
		video, err := r.yt.GetVideoContext(ctx, pageURL)
		if err == nil {
			formats := video.Formats.WithAudioChannels()
			if len(formats) > 0 {
				streamURL, err := r.yt.GetStreamURLContext(ctx, video, &formats[0])
				if err == nil {
					return streamURL, nil
				}
				sys.LogSearch("Native stream resolve failed for %s, falling back: %v", pageURL, err)
			}
		} else {
			sys.LogSearch("Native video resolve failed for %s, falling back: %v", pageURL, err)
		}
	}

	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		NoPlaylist().
		Format("bestaudio/best").
		Print("%(url)s")

	res, err := dl.Run(ctx, pageURL)
	if err != nil {
		return "", wrapError(CodeStreamFailed, "resolve.streamURL", err, "yt-dlp resolve failed for %s", pageURL)
	}

	streamURL := strings.TrimSpace(res.Stdout)
	if streamURL == "" {
		return "", newError(CodeStreamFailed, "resolve.streamURL", "no playable stream for %s", pageURL)
	}
	return streamURL, nil
}

// TrackMeta resolves display metadata for a single page URL. Duration comes
// from the video manifest when available and from a container probe as a
// last resort; an unknown duration degrades to zero rather than failing
// the resolve.
func (r *Resolver) TrackMeta(ctx context.Context, pageURL string) (Track, error) {
	if isYouTubeURL(pageURL) {
		video, err := r.yt.GetVideoContext(ctx, pageURL)
		if err == nil {
			track := Track{
				Title:     video.Title,
				URL:       pageURL,
				Author:    TrackAuthor{Name: video.Author, URL: channelURL(video.ChannelID)},
				Duration:  NewTrackDuration(video.Duration),
				Thumbnail: bestThumbnail(video.Thumbnails),
			}
			return track, nil
		}
		sys.LogSearch("Native metadata resolve failed for %s, falling back: %v", pageURL, err)
	}

	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		NoPlaylist().
		Print("%(title)s\t%(uploader)s\t%(duration)s\t%(thumbnail)s")

	res, err := dl.Run(ctx, pageURL)
	if err != nil {
		return Track{}, wrapError(CodeSearchFailed, "resolve.trackMeta", err, "yt-dlp metadata failed for %s", pageURL)
	}

	fields := strings.Split(strings.TrimSpace(res.Stdout), "\t")
	if len(fields) < 2 || fields[0] == "" {
		return Track{}, newError(CodeSearchFailed, "resolve.trackMeta", "no metadata for %s", pageURL)
	}

	track := Track{
		Title:  fields[0],
		URL:    pageURL,
		Author: TrackAuthor{Name: fields[1]},
	}
	if len(fields) > 2 {
		if secs, err := strconv.ParseFloat(fields[2], 64); err == nil {
			track.Duration = NewTrackDuration(time.Duration(secs * float64(time.Second)))
		}
	}
	if len(fields) > 3 {
		track.Thumbnail = fields[3]
	}
	if track.Duration.Raw == 0 {
		if streamURL, err := r.StreamURL(ctx, pageURL); err == nil {
			track.Duration = NewTrackDuration(r.ProbeDuration(streamURL))
		}
	}
	return track, nil
}

// Playlist expands a playlist URL into its entries using yt-dlp's flat
// extraction, which avoids resolving every entry's formats up front.
func (r *Resolver) Playlist(ctx context.Context, playlistURL string) ([]Track, error) {
	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		FlatPlaylist().
		Print("%(url)s\t%(title)s\t%(uploader)s\t%(duration)s")

	res, err := dl.Run(ctx, playlistURL)
	if err != nil {
		return nil, wrapError(CodeSearchFailed, "resolve.playlist", err, "yt-dlp playlist expand failed for %s", playlistURL)
	}

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	tracks := make([]Track, 0, len(lines))
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" || fields[0] == "NA" {
			continue
		}
		track := Track{
			Title: fields[1],
			URL:   fields[0],
		}
		if len(fields) > 2 && fields[2] != "NA" {
			track.Author = TrackAuthor{Name: fields[2]}
		}
		if len(fields) > 3 {
			if secs, err := strconv.ParseFloat(fields[3], 64); err == nil {
				track.Duration = NewTrackDuration(time.Duration(secs * float64(time.Second)))
			}
		}
		tracks = append(tracks, track)
	}

	if len(tracks) == 0 {
		return nil, newError(CodeSearchFailed, "resolve.playlist", "playlist %s has no playable entries", playlistURL)
	}
	return tracks, nil
}

// ProbeDuration opens the stream container and reads the declared duration.
// Used when neither the manifest nor yt-dlp reported one.
func (r *Resolver) ProbeDuration(streamURL string) time.Duration {
	inputCtx := astiav.AllocFormatContext()
	if inputCtx == nil {
		return 0
	}
	defer inputCtx.Free()

	if err := inputCtx.OpenInput(streamURL, nil, nil); err != nil {
		sys.LogSearch("Duration probe open failed: %v", err)
		return 0
	}
	defer inputCtx.CloseInput()

	if err := inputCtx.FindStreamInfo(nil); err != nil {
		sys.LogSearch("Duration probe stream info failed: %v", err)
		return 0
	}

	hasAudio := false
	for _, stream := range inputCtx.Streams() {
		if stream.CodecParameters().MediaType() == astiav.MediaTypeAudio {
			hasAudio = true
			break
		}
	}
	if !hasAudio {
		return 0
	}

	// Duration is reported in microseconds.
	micros := inputCtx.Duration()
	if micros <= 0 {
		return 0
	}
	return time.Duration(micros) * time.Microsecond
}

func isYouTubeURL(raw string) bool {
	return strings.Contains(raw, "youtube.com/") || strings.Contains(raw, "youtu.be/")
}

func channelURL(channelID string) string {
	if channelID == "" {
		return ""
	}
	return "https://www.youtube.com/channel/" + channelID
}

func bestThumbnail(thumbnails youtube.Thumbnails) string {
	best := ""
	var bestWidth uint
	for _, t := range thumbnails {
		if t.Width >= bestWidth {
			bestWidth = t.Width
			best = t.URL
		}
	}
	return best
}
