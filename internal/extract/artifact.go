package extract

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
)

// Artifact renders the result as one plain-text document for a downstream
// reader. Placeholders appear verbatim. maxTranscript caps the transcript
// in runes at a word boundary; 0 keeps it whole.
func (r *Result) Artifact(maxTranscript int) string {
	transcript := r.TranscriptText
	if maxTranscript > 0 && r.Transcript.Status == StatusOK {
		if cut := engine.TruncateAtWord(transcript, maxTranscript); cut != transcript {
			transcript = strings.TrimSuffix(cut, "...") + " [...]"
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "VIDEO TITLE: %s\n", r.Title)
	fmt.Fprintf(&sb, "URL: %s\n", r.URL())
	fmt.Fprintf(&sb, "VIDEO ID: %s\n", r.VideoID)
	if r.Transcript.Lang != "" {
		fmt.Fprintf(&sb, "CAPTIONS: %s (%s)\n", r.Transcript.Lang, r.Transcript.Kind)
	}
	sb.WriteString("\nTRANSCRIPT:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\nTOP COMMENTS:\n")
	sb.WriteString(r.CommentsText)
	if !strings.HasSuffix(r.CommentsText, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}
