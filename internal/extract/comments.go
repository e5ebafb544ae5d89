package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// NoCommentsFound is shown when no comment passed the filter.
const NoCommentsFound = "No comments found."

// defaultAuthor replaces an empty author name.
const defaultAuthor = "User"

// RenderedComment is one accepted comment.
// Rank numbers accepted comments; Position is the place in the upstream
// popularity order, before filtering.
type RenderedComment struct {
	Rank     int    `json:"rank"`
	Position int    `json:"position"`
	Author   string `json:"author"`
	Text     string `json:"text"`
	Votes    int    `json:"votes"`
}

func (c RenderedComment) String() string {
	if c.Votes > 0 {
		return fmt.Sprintf("%d. %s [%d likes]\n%s\n", c.Rank, c.Author, c.Votes, c.Text)
	}
	return fmt.Sprintf("%d. %s\n%s\n", c.Rank, c.Author, c.Text)
}

// Comments is the outcome of the comment step.
type Comments struct {
	Status  Status
	Entries []RenderedComment
	Err     error
}

// Display renders the accepted comments separated by blank lines, or a placeholder.
func (c Comments) Display() string {
	switch c.Status {
	case StatusOK:
		parts := make([]string, len(c.Entries))
		for i, e := range c.Entries {
			parts[i] = e.String()
		}
		return strings.Join(parts, "\n")
	case StatusFailed:
		if c.Err != nil {
			return "Error extracting comments: " + c.Err.Error()
		}
		return "Error extracting comments."
	}
	return NoCommentsFound
}

// NormalizeVotes parses a like count such as "1,234" or "12.345".
// Unparseable text counts as zero.
func NormalizeVotes(raw string) int {
	s := strings.NewReplacer(",", "", ".", "").Replace(strings.TrimSpace(raw))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// acceptComment reports whether a body is long enough to keep.
func acceptComment(body string, minChars int) bool {
	return utf8.RuneCountInString(body) > minChars
}

// CollectComments consumes the popular-comment stream for id until
// MaxComments entries are accepted. It never fails: errors degrade into
// the returned Comments.
func (p *Pipeline) CollectComments(ctx context.Context, id engine.VideoID) Comments {
	if p.CommentsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.CommentsTimeout)
		defer cancel()
	}

	var entries []RenderedComment
	for c, err := range p.Comments.Comments(ctx, id.WatchURL(), engine.SortPopular) {
		if err != nil {
			if len(entries) == 0 {
				slog.Warn("extract: comment stream failed",
					slog.String("video_id", id.String()), slog.Any("error", err))
				return Comments{Status: StatusFailed, Err: err}
			}
			slog.Warn("extract: comment stream interrupted, keeping partial result",
				slog.String("video_id", id.String()), slog.Int("accepted", len(entries)), slog.Any("error", err))
			break
		}
		if !acceptComment(c.Text, p.MinCommentChars) {
			continue
		}
		author := c.Author
		if author == "" {
			author = defaultAuthor
		}
		entries = append(entries, RenderedComment{
			Rank:     len(entries) + 1,
			Position: c.Rank,
			Author:   author,
			Text:     c.Text,
			Votes:    NormalizeVotes(c.Votes),
		})
		if p.MaxComments > 0 && len(entries) >= p.MaxComments {
			break
		}
	}

	engine.AddCommentsAccepted(len(entries))
	if len(entries) == 0 {
		return Comments{Status: StatusEmpty}
	}
	return Comments{Status: StatusOK, Entries: entries}
}
