package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/media"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// width is the width of the section rules.
const width = 70

// TextWriter outputs human-readable plain text for terminals.
// It emits no ANSI colors so output can be piped to files.
type TextWriter struct {
	baseWriter

	// verbose adds captions, thumbnails and raw failure detail.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteProfiles implements Writer.
func (w *TextWriter) WriteProfiles(profiles Profiles) (int, error) {
	var sb strings.Builder

	writeSection(&sb, strings.ToUpper(profiles.Title))

	if len(profiles.Profiles) == 0 {
		sb.WriteString("  No profiles found\n\n")
		return w.output.Write([]byte(sb.String()))
	}

	for _, p := range profiles.Profiles {
		fmt.Fprintf(&sb, "  [+] @%-30s %12s  %8d followers", p.Handle, p.PlatformID, p.FollowerCount)
		if f := flags(p); f != "-" {
			fmt.Fprintf(&sb, "  (%s)", f)
		}
		sb.WriteString("\n")
		if w.verbose {
			if p.DisplayName != "" {
				fmt.Fprintf(&sb, "      Name:   %s\n", p.DisplayName)
			}
			fmt.Fprintf(&sb, "      Source: %s", p.Provenance)
			if p.MatchedKeyword != "" {
				fmt.Fprintf(&sb, " (%s)", p.MatchedKeyword)
			}
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "\n  TOTAL: %d profile(s)\n\n", len(profiles.Profiles))

	return w.output.Write([]byte(sb.String()))
}

// WriteMedia implements Writer.
func (w *TextWriter) WriteMedia(results []media.Result) (int, error) {
	var sb strings.Builder

	writeSection(&sb, "MEDIA RESOLUTION")

	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(&sb, "[!] %s: %s", r.Shortcode, r.Failure.Kind)
			if r.Failure.Stage != "" {
				fmt.Fprintf(&sb, " at %s", r.Failure.Stage)
			}
			sb.WriteString("\n")
			if w.verbose && r.Failure.Detail != "" {
				fmt.Fprintf(&sb, "    Detail: %s\n", r.Failure.Detail)
			}
			continue
		}

		rec := r.Record
		fmt.Fprintf(&sb, "[+] %s: %s via %s\n", r.Shortcode, rec.Type, r.Stage)
		if rec.AuthorHandle != "" {
			fmt.Fprintf(&sb, "    Author:   @%s\n", rec.AuthorHandle)
		}
		if rec.IsVideo {
			if rec.VideoURL == "" {
				sb.WriteString("    Video:    no playable URL found\n")
			} else {
				fmt.Fprintf(&sb, "    Video:    %s\n", rec.VideoURL)
			}
		}
		fmt.Fprintf(&sb, "    Likes:    %d  Comments: %d\n", rec.LikeCount, rec.CommentCount)
		if w.verbose {
			if rec.ThumbnailURL != "" {
				fmt.Fprintf(&sb, "    Thumb:    %s\n", rec.ThumbnailURL)
			}
			if rec.Caption != "" {
				fmt.Fprintf(&sb, "    Caption:  %s\n", truncateString(rec.Caption, 120))
			}
		}
	}

	s := summarizeMedia(results)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  VIDEO: %d  IMAGE: %d  NO URL: %d  FAILED: %d\n\n", s.videos, s.images, s.noURL, s.failures)

	return w.output.Write([]byte(sb.String()))
}

// WriteMessage implements Writer.
func (w *TextWriter) WriteMessage(result model.MessageResult) (int, error) {
	var sb strings.Builder

	if result.Success {
		fmt.Fprintf(&sb, "Message sent (thread %s, item %s)\n", orDash(result.ThreadID), orDash(result.ItemID))
	} else {
		fmt.Fprintf(&sb, "Message not sent: %s\n", result.ErrorKind)
		if result.Detail != "" && (w.verbose || result.ErrorKind == model.ErrorKindUnknown) {
			fmt.Fprintf(&sb, "  Detail: %s\n", result.Detail)
		}
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteAccounts implements Writer.
func (w *TextWriter) WriteAccounts(accounts []Account) (int, error) {
	var sb strings.Builder

	writeSection(&sb, "ACCOUNTS")

	if len(accounts) == 0 {
		sb.WriteString("  No accounts stored\n\n")
		return w.output.Write([]byte(sb.String()))
	}

	for _, a := range accounts {
		fmt.Fprintf(&sb, "  %-20s updated %s\n", a.Identity, a.UpdatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", width))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", width))
	sb.WriteString("\n\n")
}
