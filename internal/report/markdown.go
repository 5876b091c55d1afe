package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/media"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// MarkdownWriter outputs results as GitHub-flavored markdown
// using the nao1215/markdown builder.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteProfiles implements Writer.
func (w *MarkdownWriter) WriteProfiles(profiles Profiles) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(profiles.Title)
	md.PlainText("")

	if len(profiles.Profiles) == 0 {
		md.Note("No profiles found.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(profiles.Profiles))
	for i, p := range profiles.Profiles {
		rows[i] = []string{
			"`" + p.PlatformID + "`",
			"@" + p.Handle,
			orDash(truncateString(p.DisplayName, 40)),
			strconv.FormatInt(p.FollowerCount, 10),
			flags(p),
			string(p.Provenance),
			orDash(p.MatchedKeyword),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Handle", "Name", "Followers", "Flags", "Source", "Keyword"},
		Rows:   rows,
	})
	md.PlainText("")

	counts := profiles.CountByProvenance()
	if len(counts) > 1 {
		w.writeProvenanceChart(md, counts)
	}

	md.PlainTextf("%d profile(s).", len(profiles.Profiles))
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeProvenanceChart writes a mermaid pie chart of discovery sources.
func (w *MarkdownWriter) writeProvenanceChart(md *markdown.Markdown, counts map[model.Provenance]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Profiles by Source"),
		piechart.WithShowData(true),
	)

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		chart.LabelAndIntValue(k, uint64(counts[model.Provenance(k)]))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteMedia implements Writer.
func (w *MarkdownWriter) WriteMedia(results []media.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Media Resolution")
	md.PlainText("")

	summary := summarizeMedia(results)
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Video", strconv.Itoa(summary.videos)},
			{"Image", strconv.Itoa(summary.images)},
			{"Video without URL", strconv.Itoa(summary.noURL)},
			{"Failed", strconv.Itoa(summary.failures)},
		},
	})
	md.PlainText("")

	switch {
	case summary.failures > 0:
		md.Warningf("%d of %d shortcode(s) could not be resolved.", summary.failures, len(results))
	case summary.noURL > 0:
		md.Importantf("%d video post(s) were recognized without a playable URL.", summary.noURL)
	case len(results) > 0:
		md.Tip("Every shortcode resolved.")
	}
	md.PlainText("")

	for _, r := range results {
		md.H2(r.Shortcode)
		md.PlainText("")
		if !r.OK() {
			md.Table(markdown.TableSet{
				Header: []string{"Property", "Value"},
				Rows: [][]string{
					{"Error", string(r.Failure.Kind)},
					{"Stage", orDash(r.Failure.Stage)},
					{"Detail", orDash(truncateString(r.Failure.Detail, 80))},
				},
			})
			md.PlainText("")
			continue
		}

		rec := r.Record
		rows := [][]string{
			{"Type", string(rec.Type)},
			{"Stage", r.Stage},
			{"Author", orDash(rec.AuthorHandle)},
			{"Likes", strconv.FormatInt(rec.LikeCount, 10)},
			{"Comments", strconv.FormatInt(rec.CommentCount, 10)},
		}
		if !rec.TakenAt.IsZero() {
			rows = append(rows, []string{"Taken", rec.TakenAt.UTC().Format("2006-01-02 15:04:05 MST")})
		}
		if rec.IsVideo {
			rows = append(rows, []string{"Video URL", orDash(rec.VideoURL)})
		}
		rows = append(rows, []string{"Thumbnail", orDash(rec.ThumbnailURL)})
		md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
		md.PlainText("")

		if rec.Caption != "" {
			md.Details("Caption", rec.Caption)
			md.PlainText("")
		}
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteMessage implements Writer.
func (w *MarkdownWriter) WriteMessage(result model.MessageResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Direct Message")
	md.PlainText("")

	if result.Success {
		md.Tip("Message sent.")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows: [][]string{
				{"Thread", "`" + orDash(result.ThreadID) + "`"},
				{"Item", "`" + orDash(result.ItemID) + "`"},
			},
		})
	} else {
		md.Cautionf("Message not sent: %s", result.ErrorKind)
		md.PlainText("")
		if result.Detail != "" {
			md.Details("Detail", result.Detail)
		}
	}
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteAccounts implements Writer.
func (w *MarkdownWriter) WriteAccounts(accounts []Account) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accounts")
	md.PlainText("")

	if len(accounts) == 0 {
		md.Note("No accounts stored.")
	} else {
		rows := make([][]string, len(accounts))
		for i, a := range accounts {
			rows[i] = []string{
				"`" + a.Identity + "`",
				a.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
				a.UpdatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Identity", "Added", "Updated"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by leda*")
}

// flags renders the private and verified markers of a profile.
func flags(p model.DiscoveredProfile) string {
	switch {
	case p.IsPrivate && p.IsVerified:
		return "private, verified"
	case p.IsPrivate:
		return "private"
	case p.IsVerified:
		return "verified"
	default:
		return "-"
	}
}
