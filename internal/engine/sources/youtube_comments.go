package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// YouTube comment stream.
// watch page → ytInitialData → comments continuation → sort menu → /next pages.

// ytInitialDataMarkers prefix the ytInitialData assignment inside a <script>.
var ytInitialDataMarkers = []string{"var ytInitialData = ", `window["ytInitialData"] = `}

// maxCommentPages bounds a stream that never runs dry.
const maxCommentPages = 200

// InnertubeComments implements engine.CommentSource.
type InnertubeComments struct {
	NextURL string // empty = YouTube's /next endpoint
}

// NewInnertubeComments returns a comment source backed by the Innertube /next endpoint.
func NewInnertubeComments() *InnertubeComments { return &InnertubeComments{NextURL: ytNextURL} }

// watchSession is what a comment stream needs from the watch page.
type watchSession struct {
	visitorData   string
	clientVersion string
	initialData   []byte
}

// Comments implements engine.CommentSource. Pages are fetched only while the
// consumer keeps ranging; breaking out stops the stream.
func (s *InnertubeComments) Comments(ctx context.Context, watchURL string, sort engine.SortMode) iter.Seq2[engine.Comment, error] {
	return func(yield func(engine.Comment, error) bool) {
		sess, err := fetchWatchSession(ctx, watchURL)
		if err != nil {
			yield(engine.Comment{}, err)
			return
		}
		token := commentsContinuation(sess.initialData)
		if token == "" {
			// Comments disabled or not rendered for this video.
			return
		}

		page, err := s.next(ctx, sess, token)
		if err != nil {
			yield(engine.Comment{}, err)
			return
		}
		if sorted := sortContinuation(page, sort); sorted != "" {
			if page, err = s.next(ctx, sess, sorted); err != nil {
				yield(engine.Comment{}, err)
				return
			}
		}

		rank := 0
		for pages := 1; ; pages++ {
			comments, nextToken := parseCommentPage(page)
			for _, c := range comments {
				rank++
				c.Rank = rank
				if !yield(c, nil) {
					return
				}
			}
			if nextToken == "" || pages >= maxCommentPages {
				return
			}
			if page, err = s.next(ctx, sess, nextToken); err != nil {
				yield(engine.Comment{}, err)
				return
			}
		}
	}
}

// next requests one continuation page.
func (s *InnertubeComments) next(ctx context.Context, sess *watchSession, token string) ([]byte, error) {
	engine.IncrCommentPage()
	profile := clientWeb
	if sess.clientVersion != "" {
		profile.Version = sess.clientVersion
	}
	endpoint := s.NextURL
	if endpoint == "" {
		endpoint = ytNextURL
	}
	req := innertubeReq{Continuation: token}
	req.Context.Client = clientContext(profile, sess.visitorData)
	return postInnertube(ctx, endpoint, profile, req, sess.visitorData, nil)
}

// fetchWatchSession loads the watch page and pulls ytInitialData and ytcfg values from it.
func fetchWatchSession(ctx context.Context, watchURL string) (*watchSession, error) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Cookie", consentCookie)
	body, err := engine.GetUpstream(ctx, watchURL, header)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	initialData, err := findInitialData(body)
	if err != nil {
		return nil, err
	}
	sess := &watchSession{initialData: initialData}
	if cfg := findYtcfg(body); cfg.Exists() {
		sess.visitorData = cfg.Get("VISITOR_DATA").String()
		sess.clientVersion = cfg.Get("INNERTUBE_CLIENT_VERSION").String()
	}
	if sess.visitorData == "" {
		sess.visitorData = gjson.GetBytes(initialData, "responseContext.webResponseContextExtensionData.ytConfigData.visitorData").String()
	}
	return sess, nil
}

// findInitialData walks the page's <script> elements and returns the ytInitialData object.
func findInitialData(page []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil, errors.New("ytInitialData not found in watch page")
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := z.Text()
			for _, marker := range ytInitialDataMarkers {
				idx := bytes.Index(text, []byte(marker))
				if idx < 0 {
					continue
				}
				if obj := extractJSON(text[idx+len(marker):]); obj != nil {
					return bytes.Clone(obj), nil
				}
			}
		}
	}
}

// findYtcfg returns the merged ytcfg.set({...}) object, or an empty result.
func findYtcfg(page []byte) gjson.Result {
	const marker = "ytcfg.set({"
	rest := page
	for {
		idx := bytes.Index(rest, []byte(marker))
		if idx < 0 {
			return gjson.Result{}
		}
		obj := extractJSON(rest[idx+len(marker)-1:])
		if obj != nil && gjson.GetBytes(obj, "INNERTUBE_CLIENT_VERSION").Exists() {
			return gjson.ParseBytes(obj)
		}
		rest = rest[idx+len(marker):]
	}
}

// commentsContinuation finds the token that loads the comments section.
func commentsContinuation(initialData []byte) string {
	var token string
	walkJSON(gjson.ParseBytes(initialData), func(key string, v gjson.Result) bool {
		if key != "itemSectionRenderer" {
			return true
		}
		id := v.Get("sectionIdentifier").String()
		if id != "comment-item-section" && v.Get("targetId").String() != "comments-section" {
			return true
		}
		token = continuationToken(v)
		return token == ""
	})
	return token
}

// sortContinuation returns the token of the requested sort tab, or "" when
// the page carries no sort menu. Index 0 is "Top comments", 1 is "Newest first".
func sortContinuation(page []byte, sort engine.SortMode) string {
	var token string
	walkJSON(gjson.ParseBytes(page), func(key string, v gjson.Result) bool {
		if key != "sortFilterSubMenuRenderer" {
			return true
		}
		items := v.Get("subMenuItems").Array()
		idx := int(sort)
		if idx < len(items) {
			token = items[idx].Get("serviceEndpoint.continuationCommand.token").String()
		}
		return false
	})
	return token
}

// parseCommentPage extracts top-level comments and the next-page token from a /next response.
func parseCommentPage(page []byte) ([]engine.Comment, string) {
	root := gjson.ParseBytes(page)

	entities := make(map[string]engine.Comment)
	root.Get("frameworkUpdates.entityBatchUpdate.mutations").ForEach(func(_, m gjson.Result) bool {
		p := m.Get("payload.commentEntityPayload")
		if !p.Exists() || p.Get("properties.replyLevel").Int() > 0 {
			return true
		}
		c := engine.Comment{
			ID:     p.Get("properties.commentId").String(),
			Author: p.Get("author.displayName").String(),
			Text:   p.Get("properties.content.content").String(),
			Votes:  p.Get("toolbar.likeCountNotliked").String(),
		}
		entities[c.ID] = c
		return true
	})

	var (
		comments  []engine.Comment
		nextToken string
	)
	root.Get("onResponseReceivedEndpoints").ForEach(func(_, ep gjson.Result) bool {
		items := ep.Get("reloadContinuationItemsCommand.continuationItems")
		if !items.Exists() {
			items = ep.Get("appendContinuationItemsAction.continuationItems")
		}
		items.ForEach(func(_, item gjson.Result) bool {
			if thread := item.Get("commentThreadRenderer"); thread.Exists() {
				if c, ok := threadComment(thread, entities); ok {
					comments = append(comments, c)
				}
				return true
			}
			if cont := item.Get("continuationItemRenderer"); cont.Exists() {
				nextToken = continuationToken(cont)
			}
			return true
		})
		return true
	})
	return comments, nextToken
}

// threadComment resolves a commentThreadRenderer to its top-level comment,
// either through the entity store (current layout) or the inline
// commentRenderer (legacy layout).
func threadComment(thread gjson.Result, entities map[string]engine.Comment) (engine.Comment, bool) {
	if id := thread.Get("commentViewModel.commentViewModel.commentId").String(); id != "" {
		c, ok := entities[id]
		return c, ok
	}
	r := thread.Get("comment.commentRenderer")
	if !r.Exists() {
		return engine.Comment{}, false
	}
	var text strings.Builder
	r.Get("contentText.runs").ForEach(func(_, run gjson.Result) bool {
		text.WriteString(run.Get("text").String())
		return true
	})
	votes := r.Get("voteCount.simpleText").String()
	if votes == "" {
		votes = r.Get("voteCount.runs.0.text").String()
	}
	return engine.Comment{
		ID:     r.Get("commentId").String(),
		Author: r.Get("authorText.simpleText").String(),
		Text:   text.String(),
		Votes:  votes,
	}, true
}

// continuationToken returns the first continuationCommand token below v.
func continuationToken(v gjson.Result) string {
	var token string
	walkJSON(v, func(key string, r gjson.Result) bool {
		if key == "continuationCommand" {
			token = r.Get("token").String()
		}
		return token == ""
	})
	return token
}

// walkJSON visits every object member depth-first. fn returns false to stop.
func walkJSON(v gjson.Result, fn func(key string, value gjson.Result) bool) bool {
	if !v.IsObject() && !v.IsArray() {
		return true
	}
	cont := true
	v.ForEach(func(k, child gjson.Result) bool {
		if v.IsObject() && !fn(k.String(), child) {
			cont = false
			return false
		}
		if !walkJSON(child, fn) {
			cont = false
			return false
		}
		return true
	})
	return cont
}
