package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// ErrNoCaptionText means the payload was unreadable or had no non-empty segments.
var ErrNoCaptionText = errors.New("caption payload has no text")

// --- json3 payload ---

type json3Doc struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// --- Timedtext XML payloads (srv1 <transcript><text>, srv3 <timedtext><body><p>) ---

type ytTimedText struct {
	Lines []ytLine `xml:"text"`
	Paras []ytLine `xml:"body>p"`
}

type ytLine struct {
	Inner string `xml:",innerxml"`
}

// ParseCaptionPayload converts a caption document into flowing text: every
// segment trimmed, empty ones dropped, the rest joined by single spaces.
// ok is false for malformed payloads and for payloads without any text.
func ParseCaptionPayload(data []byte) (text string, ok bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", false
	}
	var parts []string
	switch trimmed[0] {
	case '{':
		var doc json3Doc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return "", false
		}
		for _, ev := range doc.Events {
			for _, seg := range ev.Segs {
				parts = append(parts, seg.UTF8)
			}
		}
	case '<':
		var tt ytTimedText
		if err := xml.Unmarshal(trimmed, &tt); err != nil {
			return "", false
		}
		for _, l := range append(tt.Lines, tt.Paras...) {
			// srv1 text is entity-encoded twice.
			parts = append(parts, html.UnescapeString(engine.CleanHTML(l.Inner)))
		}
	default:
		return "", false
	}
	text = engine.JoinNonEmpty(parts, " ")
	return text, text != ""
}

// json3URL asks the timedtext endpoint for the json3 format.
func json3URL(trackURL string) string {
	u, err := url.Parse(trackURL)
	if err != nil {
		return trackURL
	}
	q := u.Query()
	if q.Get("fmt") != "" {
		return trackURL
	}
	q.Set("fmt", "json3")
	u.RawQuery = q.Encode()
	return u.String()
}

// DownloadCaption fetches a caption track and parses it. The call is bounded
// by Cfg.CaptionTimeout. Any failure is an error the caller treats as
// "try the next track".
func DownloadCaption(ctx context.Context, trackURL string) (string, error) {
	engine.IncrCaptionDownload()
	if engine.Cfg.CaptionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engine.Cfg.CaptionTimeout)
		defer cancel()
	}

	body, err := engine.GetUpstream(ctx, json3URL(trackURL), nil)
	if err != nil {
		return "", fmt.Errorf("fetch captions: %w", err)
	}
	text, ok := ParseCaptionPayload(body)
	if !ok {
		return "", ErrNoCaptionText
	}
	return text, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}
