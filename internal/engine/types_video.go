package engine

import (
	"context"
	"errors"
	"iter"
)

// ErrLoginRequired is returned by a MetadataProvider when the platform asks
// for sign-in before serving the video.
var ErrLoginRequired = errors.New("youtube: sign-in required")

// VideoID is the platform's 11-character video token.
type VideoID string

func (id VideoID) String() string { return string(id) }

// WatchURL returns the canonical watch page URL.
func (id VideoID) WatchURL() string { return "https://www.youtube.com/watch?v=" + string(id) }

// EmbedURL returns the embeddable player URL, used when the watch page is gated.
func (id VideoID) EmbedURL() string { return "https://www.youtube.com/embed/" + string(id) }

// TrackKind distinguishes uploader captions from speech recognition.
type TrackKind string

const (
	TrackManual TrackKind = "manual"
	TrackAuto   TrackKind = "auto"
)

// CaptionTrack points at one downloadable caption track.
type CaptionTrack struct {
	Lang string    `json:"lang"`
	Name string    `json:"name,omitempty"`
	URL  string    `json:"url"`
	Ext  string    `json:"ext,omitempty"`
	Kind TrackKind `json:"kind"`
}

// VideoMetadata is what a MetadataProvider returns for one video page.
// Track slices keep upstream order.
type VideoMetadata struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Channel           string         `json:"channel,omitempty"`
	Subtitles         []CaptionTrack `json:"subtitles"`
	AutomaticCaptions []CaptionTrack `json:"automatic_captions"`
}

// Track returns the first track of the given kind and language.
func (m *VideoMetadata) Track(kind TrackKind, lang string) (CaptionTrack, bool) {
	for _, t := range m.tracks(kind) {
		if t.Lang == lang {
			return t, true
		}
	}
	return CaptionTrack{}, false
}

// FirstAuto returns the first auto-generated track of any language.
func (m *VideoMetadata) FirstAuto() (CaptionTrack, bool) {
	if len(m.AutomaticCaptions) == 0 {
		return CaptionTrack{}, false
	}
	return m.AutomaticCaptions[0], true
}

// HasTracks reports whether any caption track exists.
func (m *VideoMetadata) HasTracks() bool {
	return len(m.Subtitles) > 0 || len(m.AutomaticCaptions) > 0
}

func (m *VideoMetadata) tracks(kind TrackKind) []CaptionTrack {
	if kind == TrackAuto {
		return m.AutomaticCaptions
	}
	return m.Subtitles
}

// Comment is one top-level comment as delivered by a CommentSource.
type Comment struct {
	ID     string `json:"id,omitempty"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Votes  string `json:"votes"` // raw, may carry locale separators
	Rank   int    `json:"rank"`  // 1-based position in the upstream stream
}

// SortMode selects the ordering of a comment stream.
type SortMode int

const (
	SortPopular SortMode = iota
	SortRecent
)

// MetadataProvider fetches title and caption tracks for a watch or embed URL.
type MetadataProvider interface {
	FetchMetadata(ctx context.Context, pageURL string, langs []string) (*VideoMetadata, error)
}

// CommentSource yields comments lazily. Consumers stop the stream by
// breaking out of the range loop.
type CommentSource interface {
	Comments(ctx context.Context, watchURL string, sort SortMode) iter.Seq2[Comment, error]
}
