package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/anatolykoptev/go_ytextract/internal/engine/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExtractInvalidInput(t *testing.T) {
	meta := new(MockMetadata)
	src := &fakeComments{}
	p := newTestPipeline(meta, src, nil)

	res, err := p.Extract(context.Background(), "not a url")
	assert.Nil(t, res)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, sources.ErrVideoIDNotFound)
	assert.Equal(t, "not a url", verr.Input)
	meta.AssertNotCalled(t, "FetchMetadata", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, src.yielded)
}

// Scenario A: one Italian auto track served by a caption endpoint.
func TestExtractScenarioItalianAutoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[{"segs":[{"utf8":"Ciao "}, {"utf8":"mondo"}]}]}`))
	}))
	defer srv.Close()
	useTestEngine(t, srv.Client())

	meta := new(MockMetadata)
	meta.On("FetchMetadata", mock.Anything, "https://www.youtube.com/watch?v=ABCDEFGHIJK", []string{"it", "en"}).Return(&engine.VideoMetadata{
		ID:                "ABCDEFGHIJK",
		Title:             "Video",
		AutomaticCaptions: []engine.CaptionTrack{track("it", engine.TrackAuto, srv.URL+"/api/timedtext?lang=it")},
	}, nil)
	p := newTestPipeline(meta, &fakeComments{}, sources.DownloadCaption)

	res, err := p.Extract(context.Background(), "https://www.youtube.com/watch?v=ABCDEFGHIJK")
	require.NoError(t, err)
	assert.Equal(t, engine.VideoID("ABCDEFGHIJK"), res.VideoID)
	assert.Equal(t, "Video", res.Title)
	assert.Equal(t, "Ciao mondo", res.TranscriptText)
	assert.Equal(t, NoCommentsFound, res.CommentsText)
}

// Scenario B: the watch page is behind sign-in, the embed page is not.
func TestExtractScenarioEmbedFallback(t *testing.T) {
	meta := new(MockMetadata)
	meta.On("FetchMetadata", mock.Anything, "https://www.youtube.com/watch?v=ABCDEFGHIJK", mock.Anything).
		Return(nil, errors.Join(engine.ErrLoginRequired, errors.New("Sign in to confirm you're not a bot"))).Once()
	meta.On("FetchMetadata", mock.Anything, "https://www.youtube.com/embed/ABCDEFGHIJK", mock.Anything).
		Return(&engine.VideoMetadata{Title: "Test"}, nil).Once()
	p := newTestPipeline(meta, &fakeComments{}, nil)

	res, err := p.Extract(context.Background(), "ABCDEFGHIJK")
	require.NoError(t, err)
	assert.Equal(t, "Test", res.Title)
	assert.Equal(t, TranscriptUnavailable, res.TranscriptText)
	assert.Equal(t, StatusEmpty, res.Transcript.Status)
	meta.AssertExpectations(t)
}

// Scenario C: three comments, one too short.
func TestExtractScenarioCommentFilter(t *testing.T) {
	meta := new(MockMetadata)
	meta.On("FetchMetadata", mock.Anything, mock.Anything, mock.Anything).Return(&engine.VideoMetadata{Title: "T"}, nil)
	src := &fakeComments{comments: []engine.Comment{
		{Author: "a", Text: "first long comment", Votes: "3"},
		{Author: "b", Text: "short"},
		{Author: "c", Text: "second long comment"},
	}}
	p := newTestPipeline(meta, src, nil)

	res, err := p.Extract(context.Background(), "https://youtu.be/ABCDEFGHIJK")
	require.NoError(t, err)
	assert.Equal(t, 2, len(res.Comments.Entries))
	assert.True(t, strings.HasPrefix(res.CommentsText, "1. a [3 likes]\n"))
	assert.Contains(t, res.CommentsText, "\n2. c\nsecond long comment\n")
	assert.NotContains(t, res.CommentsText, "3. ")
}

func TestExtractDegradedStepsStillSucceed(t *testing.T) {
	meta := new(MockMetadata)
	meta.On("FetchMetadata", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	p := newTestPipeline(meta, &fakeComments{err: errors.New("HTTP 429")}, nil)

	res, err := p.Extract(context.Background(), "ABCDEFGHIJK")
	require.NoError(t, err)
	assert.Equal(t, TitleError, res.Title)
	assert.Contains(t, res.TranscriptText, "connection reset")
	assert.Contains(t, res.CommentsText, "HTTP 429")
}

func TestResultJSONShape(t *testing.T) {
	res := &Result{VideoID: "ABCDEFGHIJK", Title: "T", TranscriptText: "tr", CommentsText: "cm"}
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"video_id":"ABCDEFGHIJK","title":"T","transcript":"tr","comments":"cm"}`, string(data))
}
