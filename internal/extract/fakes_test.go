package extract

import (
	"context"
	"iter"
	"net/http"
	"testing"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/stretchr/testify/mock"
)

// MockMetadata is a testify mock of engine.MetadataProvider.
type MockMetadata struct {
	mock.Mock
}

func (m *MockMetadata) FetchMetadata(ctx context.Context, pageURL string, langs []string) (*engine.VideoMetadata, error) {
	args := m.Called(ctx, pageURL, langs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.VideoMetadata), args.Error(1)
}

// fakeComments replays a fixed list of comments, optionally followed by an error,
// and records how far the consumer read.
type fakeComments struct {
	comments []engine.Comment
	err      error // yielded after comments, if set
	yielded  int
	stopped  bool
}

func (f *fakeComments) Comments(ctx context.Context, watchURL string, sort engine.SortMode) iter.Seq2[engine.Comment, error] {
	return func(yield func(engine.Comment, error) bool) {
		for i, c := range f.comments {
			c.Rank = i + 1
			f.yielded++
			if !yield(c, nil) {
				f.stopped = true
				return
			}
		}
		if f.err != nil {
			yield(engine.Comment{}, f.err)
		}
	}
}

// newTestPipeline returns a Pipeline with production limits and the given collaborators.
func newTestPipeline(meta engine.MetadataProvider, comments engine.CommentSource, download func(context.Context, string) (string, error)) *Pipeline {
	return &Pipeline{
		Metadata:        meta,
		Comments:        comments,
		DownloadCaption: download,
		Langs:           []string{"it", "en"},
		MaxComments:     50,
		MinCommentChars: 10,
	}
}

// useTestEngine points the engine's HTTP client at a test server and disables rate limiting.
func useTestEngine(t *testing.T, client *http.Client) {
	t.Helper()
	prev := *engine.Cfg
	c := engine.DefaultConfig()
	c.HTTPClient = client
	c.RateLimit = 0
	engine.Init(c)
	t.Cleanup(func() { engine.Init(prev) })
}
