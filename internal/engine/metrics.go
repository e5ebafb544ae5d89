package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ExtractRequests  atomic.Int64
	ExtractInvalid   atomic.Int64
	UpstreamRequests atomic.Int64
	UpstreamErrors   atomic.Int64
	MetadataRequests atomic.Int64
	EmbedFallbacks   atomic.Int64
	AuthWalls        atomic.Int64
	CaptionDownloads atomic.Int64
	TranscriptsEmpty atomic.Int64
	CommentPages     atomic.Int64
	CommentsAccepted atomic.Int64
	AnalyzeCalls     atomic.Int64
	AnalyzeErrors    atomic.Int64
}

var metricKeys = []string{
	"extract_requests", "extract_invalid",
	"upstream_requests", "upstream_errors",
	"metadata_requests", "embed_fallbacks", "auth_walls",
	"caption_downloads", "transcripts_empty",
	"comment_pages", "comments_accepted",
	"analyze_calls", "analyze_errors",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"extract_requests":  metrics.ExtractRequests.Load(),
		"extract_invalid":   metrics.ExtractInvalid.Load(),
		"upstream_requests": metrics.UpstreamRequests.Load(),
		"upstream_errors":   metrics.UpstreamErrors.Load(),
		"metadata_requests": metrics.MetadataRequests.Load(),
		"embed_fallbacks":   metrics.EmbedFallbacks.Load(),
		"auth_walls":        metrics.AuthWalls.Load(),
		"caption_downloads": metrics.CaptionDownloads.Load(),
		"transcripts_empty": metrics.TranscriptsEmpty.Load(),
		"comment_pages":     metrics.CommentPages.Load(),
		"comments_accepted": metrics.CommentsAccepted.Load(),
		"analyze_calls":     metrics.AnalyzeCalls.Load(),
		"analyze_errors":    metrics.AnalyzeErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the extract and sources sub-packages.
func IncrExtract()              { metrics.ExtractRequests.Add(1) }
func IncrExtractInvalid()       { metrics.ExtractInvalid.Add(1) }
func IncrMetadata()             { metrics.MetadataRequests.Add(1) }
func IncrEmbedFallback()        { metrics.EmbedFallbacks.Add(1) }
func IncrAuthWall()             { metrics.AuthWalls.Add(1) }
func IncrCaptionDownload()      { metrics.CaptionDownloads.Add(1) }
func IncrTranscriptEmpty()      { metrics.TranscriptsEmpty.Add(1) }
func IncrCommentPage()          { metrics.CommentPages.Add(1) }
func AddCommentsAccepted(n int) { metrics.CommentsAccepted.Add(int64(n)) }
func IncrAnalyze()              { metrics.AnalyzeCalls.Add(1) }
func IncrAnalyzeError()         { metrics.AnalyzeErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
