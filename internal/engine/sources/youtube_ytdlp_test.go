package sources

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

const ytdlpFixture = `{"id":"ABCDEFGHIJK","title":"Test","channel":"","uploader":"Uploader",` +
	`"subtitles":{"it":[{"ext":"vtt","url":"https://x/it.vtt"},{"ext":"json3","url":"https://x/it.json3","name":"Italiano"}],` +
	`"live_chat":[{"ext":"json","url":"https://x/chat"}]},` +
	`"automatic_captions":{"zz":[{"ext":"srv1","url":"https://x/zz.srv1"}],"en":[{"ext":"json3","url":"https://x/en.json3"}],"fr":[{"ext":"json3","url":""}]}}`

func TestMetadataFromYtdlpJSON(t *testing.T) {
	// Progress noise before the final JSON line is ignored.
	out := "[youtube] ABCDEFGHIJK: Downloading webpage\n" + ytdlpFixture + "\n"
	meta, err := metadataFromYtdlpJSON([]byte(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID != "ABCDEFGHIJK" || meta.Title != "Test" || meta.Channel != "Uploader" {
		t.Errorf("header = %+v", meta)
	}
	if len(meta.Subtitles) != 1 {
		t.Fatalf("subtitles = %+v (live_chat must be skipped)", meta.Subtitles)
	}
	if s := meta.Subtitles[0]; s.URL != "https://x/it.json3" || s.Ext != "json3" || s.Name != "Italiano" || s.Kind != engine.TrackManual {
		t.Errorf("subtitle = %+v, want json3 variant", s)
	}
	// Document order is kept: zz first, fr dropped for its empty URL.
	if len(meta.AutomaticCaptions) != 2 {
		t.Fatalf("automatic captions = %+v", meta.AutomaticCaptions)
	}
	if first, _ := meta.FirstAuto(); first.Lang != "zz" || first.Ext != "srv1" {
		t.Errorf("first auto = %+v", first)
	}
}

func TestMetadataFromYtdlpJSONInvalid(t *testing.T) {
	for _, out := range []string{"", "ERROR: something\n", "{not json"} {
		if _, err := metadataFromYtdlpJSON([]byte(out)); err == nil {
			t.Errorf("output %q: expected error", out)
		}
	}
}

func TestClassifyYtdlpError(t *testing.T) {
	base := errors.New("exit status 1")

	stderr := "WARNING: foo\nERROR: [youtube] ABCDEFGHIJK: Sign in to confirm you're not a bot. Use --cookies-from-browser or --cookies for the authentication.\n"
	err := classifyYtdlpError(base, stderr)
	if !errors.Is(err, engine.ErrLoginRequired) {
		t.Fatalf("sign-in stderr: got %v, want ErrLoginRequired", err)
	}
	if !strings.Contains(err.Error(), "ERROR: [youtube]") {
		t.Errorf("error should carry the ERROR line, got %q", err)
	}

	err = classifyYtdlpError(base, "ERROR: [youtube] ABCDEFGHIJK: Video unavailable\n")
	if errors.Is(err, engine.ErrLoginRequired) {
		t.Errorf("unavailable video classified as sign-in: %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Errorf("got %q", err)
	}

	if err := classifyYtdlpError(base, ""); !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("empty stderr should fall back to the exec error, got %q", err)
	}
}

func TestYtdlpCommandArgs(t *testing.T) {
	p := &YtdlpMetadata{Executable: "yt-dlp", Proxy: "socks5://127.0.0.1:1080", CookiesFile: "/nonexistent/cookies.txt"}
	args := strings.Join(p.command([]string{"it", "en"}).BuildCommand(context.Background(), "https://www.youtube.com/watch?v=ABCDEFGHIJK").Args, " ")

	for _, want := range []string{"--skip-download", "--print-json", "--sub-langs it,en", "--proxy socks5://127.0.0.1:1080"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "--cookies") {
		t.Errorf("missing cookies file should not be passed: %q", args)
	}
	if !strings.HasSuffix(args, "https://www.youtube.com/watch?v=ABCDEFGHIJK") {
		t.Errorf("url should be the last argument: %q", args)
	}

	if args := strings.Join(p.command(nil).BuildCommand(context.Background()).Args, " "); strings.Contains(args, "--sub-langs") {
		t.Errorf("no langs should leave --sub-langs unset: %q", args)
	}
}
