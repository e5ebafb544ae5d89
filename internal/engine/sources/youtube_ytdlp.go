package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/lrstanley/go-ytdlp"
	"github.com/tidwall/gjson"
)

// signInMarkers are stderr fragments yt-dlp prints when YouTube gates a video
// behind sign-in. This is the only place that inspects message text; callers
// see engine.ErrLoginRequired.
var signInMarkers = []string{
	"Sign in to confirm",
	"Use --cookies-from-browser or --cookies for the authentication",
	"This video may be inappropriate for some users",
	"LOGIN_REQUIRED",
}

// YtdlpMetadata implements engine.MetadataProvider by running
// `yt-dlp --skip-download --print-json`.
type YtdlpMetadata struct {
	Executable  string
	Proxy       string
	CookiesFile string
}

// NewYtdlpMetadata returns a provider configured from engine.Cfg.
func NewYtdlpMetadata() *YtdlpMetadata {
	return &YtdlpMetadata{
		Executable:  engine.Cfg.YtdlpPath,
		Proxy:       engine.Cfg.YtdlpProxy,
		CookiesFile: engine.Cfg.CookiesFile,
	}
}

// FetchMetadata implements engine.MetadataProvider.
func (p *YtdlpMetadata) FetchMetadata(ctx context.Context, pageURL string, langs []string) (*engine.VideoMetadata, error) {
	engine.IncrMetadata()

	res, err := p.command(langs).Run(ctx, pageURL)
	if err != nil {
		var stderr string
		if res != nil {
			stderr = res.Stderr
		}
		return nil, classifyYtdlpError(err, stderr)
	}
	return metadataFromYtdlpJSON([]byte(res.Stdout))
}

// command builds the yt-dlp invocation. langs narrows --sub-langs; the JSON
// still lists every track, ordering is applied by the pipeline.
func (p *YtdlpMetadata) command(langs []string) *ytdlp.Command {
	dl := ytdlp.New().SkipDownload().PrintJSON()
	if p.Executable != "" {
		dl = dl.SetExecutable(p.Executable)
	}
	if p.Proxy != "" {
		dl = dl.Proxy(p.Proxy)
	}
	if len(langs) > 0 {
		dl = dl.SubLangs(strings.Join(langs, ","))
	}
	if cookies, err := engine.LoadCookieFile(p.CookiesFile); err == nil && len(cookies) > 0 {
		dl = dl.Cookies(p.CookiesFile)
	}
	return dl
}

// classifyYtdlpError maps yt-dlp's sign-in message onto engine.ErrLoginRequired.
func classifyYtdlpError(err error, stderr string) error {
	msg := err.Error() + "\n" + stderr
	for _, m := range signInMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %s", engine.ErrLoginRequired, firstLine(stderr, err))
		}
	}
	return fmt.Errorf("yt-dlp: %s", firstLine(stderr, err))
}

func firstLine(stderr string, err error) string {
	for _, line := range strings.Split(stderr, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	return err.Error()
}

// metadataFromYtdlpJSON maps the info JSON onto VideoMetadata. gjson keeps
// the document order of the subtitles objects, which a Go map would lose.
func metadataFromYtdlpJSON(data []byte) (*engine.VideoMetadata, error) {
	// --print-json emits one object per line; the video is the last one.
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	doc := strings.TrimSpace(lines[len(lines)-1])
	if doc == "" || !gjson.Valid(doc) {
		return nil, errors.New("yt-dlp: no JSON info in output")
	}
	info := gjson.Parse(doc)

	meta := &engine.VideoMetadata{
		ID:      info.Get("id").String(),
		Title:   info.Get("title").String(),
		Channel: info.Get("channel").String(),
	}
	if meta.Channel == "" {
		meta.Channel = info.Get("uploader").String()
	}
	meta.Subtitles = ytdlpTracks(info.Get("subtitles"), engine.TrackManual)
	meta.AutomaticCaptions = ytdlpTracks(info.Get("automatic_captions"), engine.TrackAuto)
	return meta, nil
}

// ytdlpTracks picks one format per language, json3 when available.
func ytdlpTracks(langs gjson.Result, kind engine.TrackKind) []engine.CaptionTrack {
	var out []engine.CaptionTrack
	langs.ForEach(func(lang, formats gjson.Result) bool {
		if lang.String() == "live_chat" {
			return true
		}
		var pick gjson.Result
		formats.ForEach(func(_, f gjson.Result) bool {
			if !pick.Exists() {
				pick = f
			}
			if f.Get("ext").String() == "json3" {
				pick = f
				return false
			}
			return true
		})
		if !pick.Exists() || pick.Get("url").String() == "" {
			return true
		}
		out = append(out, engine.CaptionTrack{
			Lang: lang.String(),
			Name: pick.Get("name").String(),
			URL:  pick.Get("url").String(),
			Ext:  pick.Get("ext").String(),
			Kind: kind,
		})
		return true
	})
	return out
}
