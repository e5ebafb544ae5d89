package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// YouTube Innertube API — low-level constants, types, and HTTP primitives.
// Higher-level logic lives in youtube_player.go and youtube_comments.go.

const (
	ytOrigin         = "https://www.youtube.com"
	ytPlayerURL      = ytOrigin + "/youtubei/v1/player"
	ytNextURL        = ytOrigin + "/youtubei/v1/next"
	ytWebVersion     = "2.20250222.10.00"
	ytEmbedVersion   = "1.20250219.01.00"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"

	// consentCookie skips the EU consent interstitial on watch pages.
	consentCookie = "CONSENT=YES+cb; SOCS=CAI"
)

// innertubeClientProfile describes one Innertube client identity.
type innertubeClientProfile struct {
	Name      string // clientName in the request context
	NameID    string // X-Youtube-Client-Name header
	Version   string
	UserAgent string
	SDK       int // androidSdkVersion, ANDROID only
}

var (
	clientAndroid = innertubeClientProfile{
		Name: "ANDROID", NameID: "3", Version: ytAndroidVersion, UserAgent: ytAndroidUA, SDK: 30,
	}
	clientWeb = innertubeClientProfile{
		Name: "WEB", NameID: "1", Version: ytWebVersion, UserAgent: engine.UserAgentChrome,
	}
	clientEmbedded = innertubeClientProfile{
		Name: "WEB_EMBEDDED_PLAYER", NameID: "56", Version: ytEmbedVersion, UserAgent: engine.UserAgentChrome,
	}
)

// --- /player request and response ---

type innertubeReq struct {
	VideoID        string       `json:"videoId,omitempty"`
	Continuation   string       `json:"continuation,omitempty"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk,omitempty"`
	ContentCheckOk bool         `json:"contentCheckOk,omitempty"`
}

type innertubeCtx struct {
	Client     innertubeClient      `json:"client"`
	ThirdParty *innertubeThirdParty `json:"thirdParty,omitempty"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	VisitorData       string `json:"visitorData,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type innertubeThirdParty struct {
	EmbedURL string `json:"embedUrl"`
}

type innertubePlayerResp struct {
	VideoDetails *struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
		Author  string `json:"author"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks        []captionTrack        `json:"captionTracks"`
			TranslationLanguages []translationLanguage `json:"translationLanguages"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string   `json:"baseUrl"`
	LanguageCode string   `json:"languageCode"`
	Kind         string   `json:"kind"` // "asr" = auto-generated
	Name         textRuns `json:"name"`
}

type translationLanguage struct {
	LanguageCode string `json:"languageCode"`
}

// textRuns covers both {"simpleText": ...} and {"runs": [{"text": ...}]}.
type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b bytes.Buffer
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// clientContext builds the "client" part of an Innertube payload.
func clientContext(p innertubeClientProfile, visitorData string) innertubeClient {
	return innertubeClient{
		ClientName:        p.Name,
		ClientVersion:     p.Version,
		AndroidSdkVersion: p.SDK,
		VisitorData:       visitorData,
		Hl:                "en",
		Gl:                "US",
	}
}

// postInnertube POSTs a JSON payload to an Innertube endpoint as client p.
// cookies may be nil; when they carry SAPISID the request is signed.
func postInnertube(ctx context.Context, endpoint string, p innertubeClientProfile, payload any, visitorData string, cookies []engine.FileCookie) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	data, err := engine.DoUpstream(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?prettyPrint=false", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", p.UserAgent)
		req.Header.Set("X-Youtube-Client-Name", p.NameID)
		req.Header.Set("X-Youtube-Client-Version", p.Version)
		if visitorData != "" {
			req.Header.Set("X-Goog-Visitor-Id", visitorData)
		}
		req.Header.Set("Origin", ytOrigin)
		req.Header.Set("Referer", ytOrigin+"/")
		cookie := consentCookie
		if c := engine.CookieHeader(cookies, "www.youtube.com", now); c != "" {
			cookie = c + "; " + consentCookie
		}
		req.Header.Set("Cookie", cookie)
		if auth := engine.SAPISIDHash(cookies, ytOrigin, now); auth != "" {
			req.Header.Set("Authorization", auth)
			req.Header.Set("X-Origin", ytOrigin)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("innertube %s [%s]: %w", p.Name, endpoint, err)
	}
	return data, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
