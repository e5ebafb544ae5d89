// Package extract turns a YouTube URL into title, transcript and top comments.
//
// The pipeline runs its steps one after another: resolve the video ID, fetch
// metadata and captions, collect comments. Only an unresolvable input is an
// error; every other failure becomes placeholder text in the Result.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/anatolykoptev/go_ytextract/internal/engine/sources"
)

// ValidationError is returned by Extract when the input names no video.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid YouTube URL %q: %v", e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Pipeline holds the collaborators and limits of one extraction setup.
// A Pipeline is safe for concurrent use.
type Pipeline struct {
	Metadata engine.MetadataProvider
	Comments engine.CommentSource

	// DownloadCaption fetches one caption track and returns its text.
	// An error means "try the next track".
	DownloadCaption func(ctx context.Context, trackURL string) (string, error)

	Langs           []string
	MaxComments     int
	MinCommentChars int
	MetadataTimeout time.Duration
	CommentsTimeout time.Duration
}

// New builds a Pipeline from engine.Cfg.
func New(meta engine.MetadataProvider, comments engine.CommentSource) *Pipeline {
	return &Pipeline{
		Metadata:        meta,
		Comments:        comments,
		DownloadCaption: sources.DownloadCaption,
		Langs:           engine.Cfg.CaptionLangs,
		MaxComments:     engine.Cfg.MaxComments,
		MinCommentChars: engine.Cfg.MinCommentChars,
		MetadataTimeout: engine.Cfg.MetadataTimeout,
		CommentsTimeout: engine.Cfg.CommentsTimeout,
	}
}

// Result is everything extracted for one video.
type Result struct {
	VideoID        engine.VideoID `json:"video_id"`
	Title          string         `json:"title"`
	TranscriptText string         `json:"transcript"`
	CommentsText   string         `json:"comments"`

	Transcript Transcript `json:"-"`
	Comments   Comments   `json:"-"`
}

// URL returns the watch page of the extracted video.
func (r *Result) URL() string { return r.VideoID.WatchURL() }

// Extract runs the whole pipeline for rawInput, a YouTube URL or bare video ID.
func (p *Pipeline) Extract(ctx context.Context, rawInput string) (*Result, error) {
	engine.IncrExtract()
	id, err := sources.ResolveVideoID(rawInput)
	if err != nil {
		engine.IncrExtractInvalid()
		return nil, &ValidationError{Input: rawInput, Err: err}
	}

	var res *Result
	_ = engine.TrackOperation(ctx, "extract:"+id.String(), func(ctx context.Context) error {
		title, transcript := p.FetchTranscript(ctx, id)
		comments := p.CollectComments(ctx, id)
		res = &Result{
			VideoID:        id,
			Title:          title,
			TranscriptText: transcript.Display(),
			CommentsText:   comments.Display(),
			Transcript:     transcript,
			Comments:       comments,
		}
		return nil
	})
	return res, nil
}
