package videoserver

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/anatolykoptev/go_ytextract/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMetadata struct {
	meta *engine.VideoMetadata
	err  error
}

func (s stubMetadata) FetchMetadata(context.Context, string, []string) (*engine.VideoMetadata, error) {
	return s.meta, s.err
}

type stubComments []engine.Comment

func (s stubComments) Comments(context.Context, string, engine.SortMode) iter.Seq2[engine.Comment, error] {
	return func(yield func(engine.Comment, error) bool) {
		for _, c := range s {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func newTestServer(meta engine.MetadataProvider, comments engine.CommentSource) *Server {
	return &Server{Pipeline: &extract.Pipeline{
		Metadata:        meta,
		Comments:        comments,
		DownloadCaption: func(context.Context, string) (string, error) { return "hello world", nil },
		Langs:           []string{"it", "en"},
		MaxComments:     50,
		MinCommentChars: 10,
	}}
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.NewEcho().ServeHTTP(rec, req)
	return rec
}

func TestHandleExtract(t *testing.T) {
	s := newTestServer(
		stubMetadata{meta: &engine.VideoMetadata{
			Title:     "Video",
			Subtitles: []engine.CaptionTrack{{Lang: "en", URL: "u", Kind: engine.TrackManual}},
		}},
		stubComments{{Author: "a", Text: "a long enough comment", Votes: "2"}},
	)

	rec := doRequest(t, s, http.MethodPost, "/api/extract", `{"url":"https://www.youtube.com/watch?v=ABCDEFGHIJK"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"video_id":   "ABCDEFGHIJK",
		"title":      "Video",
		"transcript": "hello world",
		"comments":   "1. a [2 likes]\na long enough comment\n",
	}, body)
}

func TestHandleExtractInvalidURL(t *testing.T) {
	s := newTestServer(stubMetadata{}, stubComments{})

	rec := doRequest(t, s, http.MethodPost, "/api/extract", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid YouTube URL"}`, rec.Body.String())
}

func TestHandleExtractMalformedBody(t *testing.T) {
	s := newTestServer(stubMetadata{}, stubComments{})

	rec := doRequest(t, s, http.MethodPost, "/api/extract", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestHandleExtractUpstreamDegraded(t *testing.T) {
	s := newTestServer(stubMetadata{err: errors.New("HTTP 503")}, stubComments{})

	rec := doRequest(t, s, http.MethodPost, "/api/extract", `{"url":"ABCDEFGHIJK"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Error"`)
}

type panicMetadata struct{}

func (panicMetadata) FetchMetadata(context.Context, string, []string) (*engine.VideoMetadata, error) {
	panic("boom")
}

func TestHandleExtractPanicIsRecovered(t *testing.T) {
	s := newTestServer(panicMetadata{}, stubComments{})

	rec := doRequest(t, s, http.MethodPost, "/api/extract", `{"url":"ABCDEFGHIJK"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(stubMetadata{}, stubComments{})

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = doRequest(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "extract_requests ")
}
