package sources

import (
	"errors"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// ErrVideoIDNotFound means the input is neither a recognised YouTube URL nor a bare video ID.
var ErrVideoIDNotFound = errors.New("no YouTube video ID found in input")

// videoIDPattern is one step of the resolver chain. The first capture group is the ID.
type videoIDPattern struct {
	Name string
	Re   *regexp.Regexp
}

// videoIDPatterns is tried in order; the first match wins.
var videoIDPatterns = []videoIDPattern{
	{
		// watch, shorts, embed, v/ and live/ paths plus youtu.be; the ID runs
		// up to the first &, ?, #, / or line break.
		Name: "url",
		Re: regexp.MustCompile(`(?:https?://)?(?:(?:www|m|music)\.)?` +
			`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#\n]*?&)?v=|shorts/|embed/|v/|live/)|youtu\.be/)` +
			`([^&?#/\s]+)`),
	},
	{
		Name: "bare",
		Re:   regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
	},
}

// ResolveVideoID extracts the video ID from a URL or bare ID.
func ResolveVideoID(input string) (engine.VideoID, error) {
	input = strings.TrimSpace(input)
	for _, p := range videoIDPatterns {
		if m := p.Re.FindStringSubmatch(input); len(m) >= 2 && m[1] != "" {
			return engine.VideoID(m[1]), nil
		}
	}
	return "", ErrVideoIDNotFound
}

// IsEmbedURL reports whether pageURL is the embeddable player form.
func IsEmbedURL(pageURL string) bool {
	return strings.Contains(pageURL, "/embed/")
}
