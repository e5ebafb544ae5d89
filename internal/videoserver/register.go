package videoserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_ytextract/internal/extract"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ExtractInput is the input for video_extract.
type ExtractInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (watch, shorts, embed, youtu.be) or bare 11-character video ID"`
}

// ExtractOutput is the output of video_extract.
type ExtractOutput struct {
	VideoID          string                    `json:"video_id"`
	Title            string                    `json:"title"`
	Transcript       string                    `json:"transcript"`
	Comments         string                    `json:"comments"`
	TranscriptStatus string                    `json:"transcript_status"`
	TranscriptLang   string                    `json:"transcript_lang,omitempty"`
	CommentsStatus   string                    `json:"comments_status"`
	CommentEntries   []extract.RenderedComment `json:"comment_entries,omitempty"`
	Artifact         string                    `json:"artifact"`
}

// AnalyzeInput is the input for video_analyze.
type AnalyzeInput struct {
	URL         string `json:"url" jsonschema:"YouTube video URL or bare video ID"`
	Instruction string `json:"instruction,omitempty" jsonschema:"What to ask about the video. Default: do the comments confirm what the video says"`
}

// AnalyzeOutput is the output of video_analyze.
type AnalyzeOutput struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Analysis string `json:"analysis"`
}

// Server bundles what the MCP tools and the HTTP API share.
type Server struct {
	Pipeline      *extract.Pipeline
	Analyzer      *extract.Analyzer // nil = video_analyze reports disabled
	MaxTranscript int               // artifact transcript cap in runes, 0 = whole
}

// RegisterTools registers video_extract and video_analyze on the given MCP server.
func (s *Server) RegisterTools(server *mcp.Server) {
	s.registerExtract(server)
	s.registerAnalyze(server)
}

func (s *Server) registerExtract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_extract",
		Description: "Extract a YouTube video's title, transcript (captions, preferred languages first, auto-generated as fallback) and top 50 popular comments. Returns structured JSON plus a plain-text artifact ready for LLM analysis. Missing data is reported as placeholder text, never as an error.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
		if input.URL == "" {
			return nil, ExtractOutput{}, fmt.Errorf("url is required")
		}
		res, err := s.Pipeline.Extract(ctx, input.URL)
		if err != nil {
			return nil, ExtractOutput{}, err
		}
		return nil, s.toOutput(res), nil
	})
}

func (s *Server) registerAnalyze(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_analyze",
		Description: "Extract a YouTube video (transcript + top comments) and ask the configured LLM about it. By default checks whether the comments confirm what is said in the video. Requires LLM_API_KEY.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
		if input.URL == "" {
			return nil, AnalyzeOutput{}, fmt.Errorf("url is required")
		}
		out, err := s.analyze(ctx, input)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		return nil, out, nil
	})
}

func (s *Server) analyze(ctx context.Context, input AnalyzeInput) (AnalyzeOutput, error) {
	if s.Analyzer == nil {
		return AnalyzeOutput{}, extract.ErrAnalyzerDisabled
	}
	res, err := s.Pipeline.Extract(ctx, input.URL)
	if err != nil {
		return AnalyzeOutput{}, err
	}
	analysis, err := s.Analyzer.Analyze(ctx, res, input.Instruction)
	if err != nil {
		if errors.Is(err, extract.ErrAnalyzerDisabled) {
			return AnalyzeOutput{}, err
		}
		return AnalyzeOutput{}, fmt.Errorf("analyze %s: %w", res.VideoID, err)
	}
	return AnalyzeOutput{VideoID: res.VideoID.String(), Title: res.Title, Analysis: analysis}, nil
}

func (s *Server) toOutput(res *extract.Result) ExtractOutput {
	return ExtractOutput{
		VideoID:          res.VideoID.String(),
		Title:            res.Title,
		Transcript:       res.TranscriptText,
		Comments:         res.CommentsText,
		TranscriptStatus: res.Transcript.Status.String(),
		TranscriptLang:   res.Transcript.Lang,
		CommentsStatus:   res.Comments.Status.String(),
		CommentEntries:   res.Comments.Entries,
		Artifact:         res.Artifact(s.MaxTranscript),
	}
}
