package media

import (
	"net/url"
	"path"
	"strings"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
)

// Default URL rules, observed on the platform's video CDN.
var (
	defaultVideoHosts = []string{
		"cdninstagram.com",
		"fbcdn.net",
	}
	defaultVideoPathSignatures = []string{
		"/o1/v/t16/",
		"/o1/v/t2/",
		"/v/t50.2886-16/",
		"/v/t16/",
		"t50.2886-16",
	}
	defaultVideoExtensions = []string{".mp4", ".m4v", ".mov"}
	defaultBlockMarkers    = []string{
		"rsrc.php",
		"static.",
		"thumbnail",
		"preview",
		"/profile_pic",
		"s150x150",
		"s320x320",
		"t51.2885-15",
		"t51.2885-19",
		"t51.29350-15",
	}
	defaultBlockedExtensions = []string{
		".js", ".css", ".jpg", ".jpeg", ".png", ".webp", ".heic", ".gif", ".svg", ".ico", ".woff", ".woff2",
	}
	defaultLoginMarkers = []string{
		"LoginAndSignupPage",
		`id="loginForm"`,
		"<title>Login • Instagram</title>",
	}
)

// Rules decides which candidate URLs are plausible post videos.
type Rules struct {
	// VideoHosts are host suffixes a video URL must belong to.
	VideoHosts []string

	// VideoPathSignatures are path fragments that identify video assets.
	VideoPathSignatures []string

	// VideoExtensions are path extensions that identify video files.
	VideoExtensions []string

	// BlockMarkers disqualify a URL when found in its host or path.
	BlockMarkers []string

	// BlockedExtensions disqualify a URL by path extension.
	BlockedExtensions []string

	// LoginMarkers identify an anonymous login page.
	LoginMarkers []string
}

// DefaultRules returns the built-in rules.
func DefaultRules() *Rules {
	return &Rules{
		VideoHosts:          clone(defaultVideoHosts),
		VideoPathSignatures: clone(defaultVideoPathSignatures),
		VideoExtensions:     clone(defaultVideoExtensions),
		BlockMarkers:        clone(defaultBlockMarkers),
		BlockedExtensions:   clone(defaultBlockedExtensions),
		LoginMarkers:        clone(defaultLoginMarkers),
	}
}

// RulesFromConfig returns the default rules with every non-empty list in cfg
// replacing its default.
func RulesFromConfig(cfg config.ResolverConfig) *Rules {
	r := DefaultRules()
	if len(cfg.VideoHosts) > 0 {
		r.VideoHosts = lower(cfg.VideoHosts)
	}
	if len(cfg.VideoPathSignatures) > 0 {
		r.VideoPathSignatures = clone(cfg.VideoPathSignatures)
	}
	if len(cfg.VideoExtensions) > 0 {
		r.VideoExtensions = lower(cfg.VideoExtensions)
	}
	if len(cfg.BlockMarkers) > 0 {
		r.BlockMarkers = lower(cfg.BlockMarkers)
	}
	if len(cfg.BlockedExtensions) > 0 {
		r.BlockedExtensions = lower(cfg.BlockedExtensions)
	}
	if len(cfg.LoginMarkers) > 0 {
		r.LoginMarkers = clone(cfg.LoginMarkers)
	}
	return r
}

// Validate cleans candidate and reports whether it is an allowed video URL.
// The cleaned URL is returned on success.
func (r *Rules) Validate(candidate string) (string, bool) {
	cleaned := Unescape(candidate)
	u, err := url.Parse(cleaned)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	p := strings.ToLower(u.EscapedPath())
	if !r.allowedHost(host) {
		return "", false
	}

	ext := path.Ext(p)
	for _, blocked := range r.BlockedExtensions {
		if ext == blocked {
			return "", false
		}
	}
	for _, marker := range r.BlockMarkers {
		if strings.Contains(host, marker) || strings.Contains(p, marker) {
			return "", false
		}
	}

	for _, allowed := range r.VideoExtensions {
		if ext == allowed {
			return cleaned, true
		}
	}
	for _, sig := range r.VideoPathSignatures {
		if strings.Contains(p, strings.ToLower(sig)) {
			return cleaned, true
		}
	}
	return "", false
}

func (r *Rules) allowedHost(host string) bool {
	for _, suffix := range r.VideoHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// IsLoginPage reports whether markup looks like an anonymous login page.
func (r *Rules) IsLoginPage(markup string) bool {
	for _, marker := range r.LoginMarkers {
		if strings.Contains(markup, marker) {
			return true
		}
	}
	return false
}

// escapeReplacer undoes the escaping JSON and HTML apply to URLs embedded in
// script text and attribute values.
var escapeReplacer = strings.NewReplacer(
	`\/`, `/`,
	`\u002F`, `/`,
	`\u002f`, `/`,
	`\u0026`, `&`,
	`\u003D`, `=`,
	`\u003d`, `=`,
	`\u0025`, `%`,
	`&amp;`, `&`,
)

// Unescape removes JSON and HTML escaping from a candidate URL and trims
// surrounding quotes and backslashes.
func Unescape(s string) string {
	s = escapeReplacer.Replace(strings.TrimSpace(s))
	return strings.Trim(s, `"'\`)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

func lower(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
