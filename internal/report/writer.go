package report

import (
	"io"
	"time"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/media"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// Writer defines the interface for result output.
type Writer interface {
	// WriteProfiles outputs a titled list of discovered profiles.
	WriteProfiles(profiles Profiles) (int, error)

	// WriteMedia outputs one entry per resolved shortcode.
	WriteMedia(results []media.Result) (int, error)

	// WriteMessage outputs the outcome of a single send attempt.
	WriteMessage(result model.MessageResult) (int, error)

	// WriteAccounts outputs the stored account identities.
	WriteAccounts(accounts []Account) (int, error)
}

// Profiles is a profile listing with the query that produced it.
type Profiles struct {
	// Title describes the query, for example "followers of 1001".
	Title string `json:"title"`

	// Profiles is the crawl or search output in its original order.
	Profiles []model.DiscoveredProfile `json:"profiles"`
}

// CountByProvenance tallies the profiles per discovery method.
func (p Profiles) CountByProvenance() map[model.Provenance]int {
	counts := make(map[model.Provenance]int)
	for _, profile := range p.Profiles {
		counts[profile.Provenance]++
	}
	return counts
}

// Account is one stored credential, without its blob.
type Account struct {
	Identity  string    `json:"identity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MultiWriter writes to multiple Writers in order.
// It stops on the first error encountered.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteProfiles implements Writer.
func (m *MultiWriter) WriteProfiles(profiles Profiles) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteProfiles(profiles) })
}

// WriteMedia implements Writer.
func (m *MultiWriter) WriteMedia(results []media.Result) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteMedia(results) })
}

// WriteMessage implements Writer.
func (m *MultiWriter) WriteMessage(result model.MessageResult) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteMessage(result) })
}

// WriteAccounts implements Writer.
func (m *MultiWriter) WriteAccounts(accounts []Account) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteAccounts(accounts) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// mediaSummary counts the outcomes of a resolve batch.
type mediaSummary struct {
	videos   int
	images   int
	noURL    int
	failures int
}

func summarizeMedia(results []media.Result) mediaSummary {
	var s mediaSummary
	for _, r := range results {
		switch {
		case !r.OK():
			s.failures++
		case r.Record.IsVideo && r.Record.VideoURL == "":
			s.noURL++
		case r.Record.IsVideo:
			s.videos++
		default:
			s.images++
		}
	}
	return s
}

// orDash returns "-" for empty values so table cells are never blank.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
