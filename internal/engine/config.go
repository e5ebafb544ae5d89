package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	MetadataBackend    string   // "innertube" (default) or "ytdlp"
	YtdlpPath          string   // yt-dlp executable; empty = resolve from PATH
	YtdlpProxy         string   // optional proxy passed to yt-dlp
	CookiesFile        string   // Netscape cookies.txt; missing file is not an error
	CaptionLangs       []string // preference order, e.g. it, en
	CaptionTimeout     time.Duration
	MetadataTimeout    time.Duration
	CommentsTimeout    time.Duration
	MaxComments        int
	MinCommentChars    int
	RateLimit          float64 // upstream requests per second, 0 = unlimited
	RateBurst          int
	MaxArtifactChars   int // transcript cap inside the artifact, 0 = unlimited
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	HTTPClient         *http.Client
	LLMClient          *llm.Client // nil = analysis disabled
}

// DefaultConfig returns the values main falls back to when env is empty.
func DefaultConfig() Config {
	return Config{
		MetadataBackend: "innertube",
		CaptionLangs:    []string{"it", "en"},
		CaptionTimeout:  10 * time.Second,
		MetadataTimeout: 20 * time.Second,
		CommentsTimeout: 30 * time.Second,
		MaxComments:     50,
		MinCommentChars: 10,
		RateLimit:       2,
		RateBurst:       4,
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
	}
}

var cfg = DefaultConfig()

// Cfg exposes the engine configuration for sub-packages (sources, extract).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.RateLimit, c.RateBurst)
}
