package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// InnertubeMetadata implements engine.MetadataProvider over the Innertube
// /player endpoint. Watch URLs go through the ANDROID client, embed URLs
// through WEB_EMBEDDED_PLAYER with the embed URL as third-party context,
// which is often served when the watch page asks for sign-in.
type InnertubeMetadata struct {
	// CookiesFile is re-read on every fetch; empty or missing = anonymous.
	CookiesFile string
}

// NewInnertubeMetadata returns a provider using the engine's cookies file.
func NewInnertubeMetadata() *InnertubeMetadata {
	return &InnertubeMetadata{CookiesFile: engine.Cfg.CookiesFile}
}

// FetchMetadata implements engine.MetadataProvider.
func (p *InnertubeMetadata) FetchMetadata(ctx context.Context, pageURL string, langs []string) (*engine.VideoMetadata, error) {
	engine.IncrMetadata()
	id, err := ResolveVideoID(pageURL)
	if err != nil {
		return nil, err
	}

	cookies, err := engine.LoadCookieFile(p.CookiesFile)
	if err != nil {
		slog.Warn("youtube: cookies file unreadable, continuing anonymously",
			slog.String("path", p.CookiesFile), slog.Any("error", err))
		cookies = nil
	}

	profile := clientAndroid
	req := innertubeReq{
		VideoID:        string(id),
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}
	if IsEmbedURL(pageURL) {
		profile = clientEmbedded
		req.Context.ThirdParty = &innertubeThirdParty{EmbedURL: pageURL}
	}
	visitorData := generateVisitorData()
	req.Context.Client = clientContext(profile, visitorData)

	data, err := postInnertube(ctx, ytPlayerURL, profile, req, visitorData, cookies)
	if err != nil {
		return nil, err
	}
	var playerResp innertubePlayerResp
	if err := json.Unmarshal(data, &playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return metadataFromPlayer(id, &playerResp, langs)
}

// metadataFromPlayer maps a /player response onto VideoMetadata.
func metadataFromPlayer(id engine.VideoID, resp *innertubePlayerResp, langs []string) (*engine.VideoMetadata, error) {
	if ps := resp.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "OK", "":
		case "LOGIN_REQUIRED", "AGE_CHECK_REQUIRED", "CONTENT_CHECK_REQUIRED":
			return nil, fmt.Errorf("%w: %s", engine.ErrLoginRequired, ps.Reason)
		default:
			if resp.VideoDetails == nil {
				return nil, fmt.Errorf("video unplayable (%s): %s", ps.Status, ps.Reason)
			}
		}
	}
	if resp.VideoDetails == nil {
		return nil, errors.New("player response has no video details")
	}

	meta := &engine.VideoMetadata{
		ID:      string(id),
		Title:   resp.VideoDetails.Title,
		Channel: resp.VideoDetails.Author,
	}
	if resp.Captions == nil {
		return meta, nil
	}

	list := resp.Captions.PlayerCaptionsTracklistRenderer
	// Translations are derived from the first manual track, else the first track.
	var source, firstManual string
	for _, t := range list.CaptionTracks {
		if t.BaseURL == "" || needsPoToken(t.BaseURL) {
			continue
		}
		track := engine.CaptionTrack{
			Lang: t.LanguageCode,
			Name: t.Name.String(),
			URL:  json3URL(t.BaseURL),
			Ext:  "json3",
			Kind: engine.TrackManual,
		}
		if t.Kind == "asr" {
			track.Kind = engine.TrackAuto
			meta.AutomaticCaptions = append(meta.AutomaticCaptions, track)
		} else {
			meta.Subtitles = append(meta.Subtitles, track)
			if firstManual == "" {
				firstManual = t.BaseURL
			}
		}
		if source == "" {
			source = t.BaseURL
		}
	}
	if firstManual != "" {
		source = firstManual
	}
	if source == "" {
		return meta, nil
	}

	translatable := make(map[string]bool, len(list.TranslationLanguages))
	for _, tl := range list.TranslationLanguages {
		translatable[tl.LanguageCode] = true
	}
	for _, lang := range langs {
		if !translatable[lang] {
			continue
		}
		if _, ok := meta.Track(engine.TrackManual, lang); ok {
			continue
		}
		if _, ok := meta.Track(engine.TrackAuto, lang); ok {
			continue
		}
		meta.AutomaticCaptions = append(meta.AutomaticCaptions, engine.CaptionTrack{
			Lang: lang,
			Name: lang + " (auto-translated)",
			URL:  json3URL(withTlang(source, lang)),
			Ext:  "json3",
			Kind: engine.TrackAuto,
		})
	}
	return meta, nil
}

func withTlang(baseURL, lang string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "&tlang=" + url.QueryEscape(lang)
	}
	q := u.Query()
	q.Set("tlang", lang)
	u.RawQuery = q.Encode()
	return u.String()
}
