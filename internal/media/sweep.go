package media

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

var (
	// embeddedURLPattern finds absolute URLs inside longer strings.
	embeddedURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

	// contentURLPattern finds a JSON-LD contentUrl value.
	contentURLPattern = regexp.MustCompile(`"contentUrl"\s*:\s*"([^"]+)"`)

	// fieldPatterns find values of the field names the platform stores video
	// URLs under, in preference order.
	fieldPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"video_versions"\s*:\s*\[\s*\{[^\]]*?"url"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"playable_url_quality_hd"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"playable_url"\s*:\s*"([^"]+)"`),
		contentURLPattern,
	}

	// ogVideoKeys are the meta properties that announce a video file.
	ogVideoKeys = []string{"og:video:secure_url", "og:video", "og:video:url"}

	// escapedURLPattern finds URLs whose slashes are JSON-escaped.
	escapedURLPattern = regexp.MustCompile(`https?:(?:\\/|\\u002[Ff]){2}[^\s"'<>]+`)

	// percentURLPattern finds percent-encoded URLs, as in redirect parameters.
	percentURLPattern = regexp.MustCompile(`(?i)https?%3A%2F%2F[^\s"'<>&]+`)
)

// extensionPatternFormat matches URLs, plain or with escaped slashes, whose
// path ends in one of the extensions substituted for %s.
const extensionPatternFormat = `https?:(?:\\?/){2}[^\s"'<>]+?(?:%s)(?:[?#][^\s"'<>]*)?`

// submatches returns capture group 1 of every match of re in s.
func submatches(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// alternation builds a regexp alternation of the quoted values.
func alternation(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			quoted = append(quoted, regexp.QuoteMeta(v))
		}
	}
	if len(quoted) == 0 {
		// Matches nothing.
		return `[^\s\S]`
	}
	return strings.Join(quoted, "|")
}

// ldJSONStrategy reads the contentUrl of a JSON-LD VideoObject.
type ldJSONStrategy struct {
	rules *Rules
}

func (s *ldJSONStrategy) Name() string { return StageLDJSON }

func (s *ldJSONStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	for _, script := range doc.LDJSONScripts() {
		if !strings.Contains(script.Text, "VideoObject") {
			continue
		}
		if u, ok := firstValid(s.rules, submatches(contentURLPattern, script.Text)); ok {
			return urlRecord(doc, u), true
		}
	}
	return model.MediaRecord{}, false
}

// fieldSweepStrategy sweeps the raw markup for known video URL fields and
// the og:video meta properties.
type fieldSweepStrategy struct {
	rules *Rules
}

func (s *fieldSweepStrategy) Name() string { return StageFieldSweep }

func (s *fieldSweepStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	for _, re := range fieldPatterns {
		if u, ok := firstValid(s.rules, submatches(re, doc.Markup)); ok {
			return urlRecord(doc, u), true
		}
	}
	for _, key := range ogVideoKeys {
		if u, ok := s.rules.Validate(doc.Meta[key]); ok {
			return urlRecord(doc, u), true
		}
	}
	return model.MediaRecord{}, false
}

// extensionSweepStrategy looks for any URL ending in a video file extension.
type extensionSweepStrategy struct {
	rules   *Rules
	pattern *regexp.Regexp
}

func newExtensionSweepStrategy(rules *Rules) *extensionSweepStrategy {
	return &extensionSweepStrategy{
		rules:   rules,
		pattern: regexp.MustCompile(strings.Replace(extensionPatternFormat, "%s", alternation(rules.VideoExtensions), 1)),
	}
}

func (s *extensionSweepStrategy) Name() string { return StageExtensionSweep }

func (s *extensionSweepStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	if u, ok := firstValid(s.rules, s.pattern.FindAllString(doc.Markup, -1)); ok {
		return urlRecord(doc, u), true
	}
	return model.MediaRecord{}, false
}

// cdnHostPattern matches plain URLs on any of the allowed video hosts.
func cdnHostPattern(hosts []string) *regexp.Regexp {
	return regexp.MustCompile(`https?://(?:[A-Za-z0-9-]+\.)*(?:` + alternation(hosts) + `)/[^\s"'<>\\]+`)
}

// cdnHostStrategy sweeps the markup for the video CDN host signature and
// keeps the longest allowed match.
type cdnHostStrategy struct {
	rules   *Rules
	pattern *regexp.Regexp
}

func newCDNHostStrategy(rules *Rules) *cdnHostStrategy {
	return &cdnHostStrategy{rules: rules, pattern: cdnHostPattern(rules.VideoHosts)}
}

func (s *cdnHostStrategy) Name() string { return StageCDNHostSweep }

func (s *cdnHostStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	if u, ok := longestValid(s.rules, s.pattern.FindAllString(doc.Markup, -1)); ok {
		return urlRecord(doc, u), true
	}
	return model.MediaRecord{}, false
}

// scriptSweepStrategy applies the CDN host sweep to the text of every
// script, JSON or not, after undoing slash escaping. The first script with
// an allowed match wins.
type scriptSweepStrategy struct {
	rules   *Rules
	pattern *regexp.Regexp
}

func newScriptSweepStrategy(rules *Rules) *scriptSweepStrategy {
	return &scriptSweepStrategy{rules: rules, pattern: cdnHostPattern(rules.VideoHosts)}
}

func (s *scriptSweepStrategy) Name() string { return StageScriptSweep }

func (s *scriptSweepStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	for _, script := range doc.Scripts {
		text := escapeReplacer.Replace(script.Text)
		if u, ok := longestValid(s.rules, s.pattern.FindAllString(text, -1)); ok {
			return urlRecord(doc, u), true
		}
	}
	return model.MediaRecord{}, false
}

// pathSignatureStrategy sweeps the whole markup, entity- and
// escape-decoded, for URLs containing one of the video path signatures.
type pathSignatureStrategy struct {
	rules   *Rules
	pattern *regexp.Regexp
}

func newPathSignatureStrategy(rules *Rules) *pathSignatureStrategy {
	return &pathSignatureStrategy{
		rules:   rules,
		pattern: regexp.MustCompile(`https?://[^\s"'<>\\]*?(?:` + alternation(rules.VideoPathSignatures) + `)[^\s"'<>\\]*`),
	}
}

func (s *pathSignatureStrategy) Name() string { return StagePathSignature }

func (s *pathSignatureStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	text := escapeReplacer.Replace(html.UnescapeString(doc.Markup))
	if u, ok := longestValid(s.rules, s.pattern.FindAllString(text, -1)); ok {
		return urlRecord(doc, u), true
	}
	return model.MediaRecord{}, false
}

// escapedSweepStrategy decodes JSON-escaped and percent-encoded URL
// variants before validating them.
type escapedSweepStrategy struct {
	rules *Rules
}

func (s *escapedSweepStrategy) Name() string { return StageEscapedSweep }

func (s *escapedSweepStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	candidates := escapedURLPattern.FindAllString(doc.Markup, -1)
	for _, raw := range percentURLPattern.FindAllString(doc.Markup, -1) {
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			continue
		}
		candidates = append(candidates, decoded)
	}
	if u, ok := longestValid(s.rules, candidates); ok {
		return urlRecord(doc, u), true
	}
	return model.MediaRecord{}, false
}
