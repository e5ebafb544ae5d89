// go_ytextract — YouTube transcript & comment extraction server.
//
// Exposes two MCP tools (video_extract, video_analyze) on MCP_PORT and a
// REST API (POST /api/extract, GET /health, GET /metrics) on API_PORT.
// Both share one extraction pipeline.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/anatolykoptev/go_ytextract/internal/engine/sources"
	"github.com/anatolykoptev/go_ytextract/internal/extract"
	"github.com/anatolykoptev/go_ytextract/internal/videoserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
	apiPort = env.Str("API_PORT", "8894")
)

func main() {
	initEngine()

	srv := &videoserver.Server{
		Pipeline:      extract.New(newMetadataProvider(), sources.NewInnertubeComments()),
		Analyzer:      extract.NewAnalyzer(),
		MaxTranscript: engine.Cfg.MaxArtifactChars,
	}

	slog.Info("starting go_ytextract",
		slog.String("mcp_port", mcpPort),
		slog.String("api_port", apiPort),
		slog.String("metadata_backend", engine.Cfg.MetadataBackend),
		slog.Any("caption_langs", engine.Cfg.CaptionLangs),
		slog.Bool("analyzer", srv.Analyzer != nil),
	)

	api := srv.NewEcho()
	go func() {
		if err := api.Start(":" + apiPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", slog.Any("error", err))
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytextract",
		Version: version,
	}, nil)

	srv.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytextract",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 180 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(ctx); err != nil {
		slog.Error("api shutdown failed", slog.Any("error", err))
	}
}

func initEngine() {
	d := engine.DefaultConfig()
	c := engine.Config{
		MetadataBackend:    env.Str("METADATA_BACKEND", d.MetadataBackend),
		YtdlpPath:          env.Str("YTDLP_PATH", ""),
		YtdlpProxy:         env.Str("YTDLP_PROXY", ""),
		CookiesFile:        env.Str("COOKIES_FILE", ""),
		CaptionLangs:       env.List("CAPTION_LANGS", "it,en"),
		CaptionTimeout:     env.Duration("CAPTION_TIMEOUT", d.CaptionTimeout),
		MetadataTimeout:    env.Duration("METADATA_TIMEOUT", d.MetadataTimeout),
		CommentsTimeout:    env.Duration("COMMENTS_TIMEOUT", d.CommentsTimeout),
		MaxComments:        env.Int("MAX_COMMENTS", d.MaxComments),
		MinCommentChars:    env.Int("MIN_COMMENT_CHARS", d.MinCommentChars),
		RateLimit:          env.Float("YT_RATE_LIMIT", d.RateLimit),
		RateBurst:          env.Int("YT_RATE_BURST", d.RateBurst),
		MaxArtifactChars:   env.Int("ARTIFACT_MAX_TRANSCRIPT_CHARS", 0),
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 2048),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.LLMAPIKey != "" {
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
	} else {
		slog.Info("LLM_API_KEY not set, video_analyze disabled")
	}

	engine.Init(c)
}

func newMetadataProvider() engine.MetadataProvider {
	switch engine.Cfg.MetadataBackend {
	case "ytdlp", "yt-dlp":
		return sources.NewYtdlpMetadata()
	case "", "innertube":
	default:
		slog.Warn("unknown METADATA_BACKEND, using innertube",
			slog.String("backend", engine.Cfg.MetadataBackend))
	}
	return sources.NewInnertubeMetadata()
}
