package report

import (
	"encoding/json"
	"io"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/media"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// JSONWriter outputs results in JSON format for scripting.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteProfiles implements Writer.
func (w *JSONWriter) WriteProfiles(profiles Profiles) (int, error) {
	if profiles.Profiles == nil {
		profiles.Profiles = []model.DiscoveredProfile{}
	}
	return w.writeJSON(profiles)
}

// WriteMedia implements Writer.
func (w *JSONWriter) WriteMedia(results []media.Result) (int, error) {
	if results == nil {
		results = []media.Result{}
	}
	return w.writeJSON(results)
}

// WriteMessage implements Writer.
func (w *JSONWriter) WriteMessage(result model.MessageResult) (int, error) {
	return w.writeJSON(result)
}

// WriteAccounts implements Writer.
func (w *JSONWriter) WriteAccounts(accounts []Account) (int, error) {
	if accounts == nil {
		accounts = []Account{}
	}
	return w.writeJSON(accounts)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}

// Envelope wraps a payload with the producing tool version and the payload kind.
type Envelope struct {
	// Version is the leda version that generated the output.
	Version string `json:"version"`

	// Kind is one of "profiles", "media", "message" or "accounts".
	Kind string `json:"kind"`

	// Data is the payload itself.
	Data any `json:"data"`
}

// EnvelopeJSONWriter outputs every payload wrapped in an Envelope.
type EnvelopeJSONWriter struct {
	*JSONWriter

	version string
}

// NewEnvelopeJSONWriter creates a writer that adds version metadata.
func NewEnvelopeJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *EnvelopeJSONWriter {
	return &EnvelopeJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// WriteProfiles implements Writer.
func (w *EnvelopeJSONWriter) WriteProfiles(profiles Profiles) (int, error) {
	if profiles.Profiles == nil {
		profiles.Profiles = []model.DiscoveredProfile{}
	}
	return w.wrap("profiles", profiles)
}

// WriteMedia implements Writer.
func (w *EnvelopeJSONWriter) WriteMedia(results []media.Result) (int, error) {
	if results == nil {
		results = []media.Result{}
	}
	return w.wrap("media", results)
}

// WriteMessage implements Writer.
func (w *EnvelopeJSONWriter) WriteMessage(result model.MessageResult) (int, error) {
	return w.wrap("message", result)
}

// WriteAccounts implements Writer.
func (w *EnvelopeJSONWriter) WriteAccounts(accounts []Account) (int, error) {
	if accounts == nil {
		accounts = []Account{}
	}
	return w.wrap("accounts", accounts)
}

func (w *EnvelopeJSONWriter) wrap(kind string, data any) (int, error) {
	return w.writeJSON(Envelope{Version: w.version, Kind: kind, Data: data})
}
