package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// Status classifies how a pipeline step ended.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusAuthRequired
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusAuthRequired:
		return "auth_required"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Placeholder text shown in place of missing data.
const (
	TranscriptUnavailable = "Transcript not available for this video."
	TranscriptAuthWall    = "Transcript not available: YouTube requires sign-in to view this video."
	TitleRestricted       = "Restricted video"
	TitleError            = "Error"
)

// Transcript is the outcome of the caption step.
type Transcript struct {
	Status Status
	Text   string
	Lang   string
	Kind   engine.TrackKind
	Err    error
}

// Display returns the transcript text, or a placeholder when there is none.
func (t Transcript) Display() string {
	switch t.Status {
	case StatusOK:
		return t.Text
	case StatusAuthRequired:
		return TranscriptAuthWall
	case StatusFailed:
		if t.Err != nil {
			return "Unable to extract video information: " + t.Err.Error()
		}
		return "Unable to extract video information."
	}
	return TranscriptUnavailable
}

// trackKindOrder is the per-language preference: uploader captions first.
var trackKindOrder = []engine.TrackKind{engine.TrackManual, engine.TrackAuto}

// captionCandidates lists the tracks to try, in order: for each preferred
// language every kind in trackKindOrder, then the first auto track of any
// language. A URL appears at most once.
func captionCandidates(meta *engine.VideoMetadata, langs []string) []engine.CaptionTrack {
	var out []engine.CaptionTrack
	seen := make(map[string]bool)
	add := func(t engine.CaptionTrack, ok bool) {
		if !ok || t.URL == "" || seen[t.URL] {
			return
		}
		seen[t.URL] = true
		out = append(out, t)
	}
	for _, lang := range langs {
		for _, kind := range trackKindOrder {
			add(meta.Track(kind, lang))
		}
	}
	add(meta.FirstAuto())
	return out
}

// FetchTranscript fetches metadata for id and downloads the first usable
// caption track. It never fails: degraded outcomes are carried in the
// returned Transcript and title.
func (p *Pipeline) FetchTranscript(ctx context.Context, id engine.VideoID) (string, Transcript) {
	meta, err := p.fetchMetadata(ctx, id.WatchURL())
	if errors.Is(err, engine.ErrLoginRequired) {
		engine.IncrEmbedFallback()
		slog.Info("extract: sign-in wall on watch page, retrying via embed",
			slog.String("video_id", id.String()))
		meta, err = p.fetchMetadata(ctx, id.EmbedURL())
		if err != nil {
			engine.IncrAuthWall()
			slog.Info("extract: embed retry failed, video is restricted",
				slog.String("video_id", id.String()), slog.Any("error", err))
			return TitleRestricted, Transcript{Status: StatusAuthRequired, Err: err}
		}
	}
	if err != nil {
		slog.Warn("extract: metadata fetch failed",
			slog.String("video_id", id.String()), slog.Any("error", err))
		return TitleError, Transcript{Status: StatusFailed, Err: err}
	}

	if !meta.HasTracks() {
		slog.Debug("extract: video has no caption tracks", slog.String("video_id", id.String()))
		engine.IncrTranscriptEmpty()
		return meta.Title, Transcript{Status: StatusEmpty}
	}
	for _, track := range captionCandidates(meta, p.Langs) {
		text, err := p.DownloadCaption(ctx, track.URL)
		if err != nil {
			slog.Debug("extract: caption track skipped",
				slog.String("lang", track.Lang), slog.String("kind", string(track.Kind)), slog.Any("error", err))
			continue
		}
		return meta.Title, Transcript{Status: StatusOK, Text: text, Lang: track.Lang, Kind: track.Kind}
	}
	engine.IncrTranscriptEmpty()
	return meta.Title, Transcript{Status: StatusEmpty}
}

func (p *Pipeline) fetchMetadata(ctx context.Context, pageURL string) (*engine.VideoMetadata, error) {
	if p.MetadataTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.MetadataTimeout)
		defer cancel()
	}
	return p.Metadata.FetchMetadata(ctx, pageURL, p.Langs)
}
