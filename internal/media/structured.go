package media

import (
	"strings"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// searchDepth bounds the structural search in json-scripts. The platform
// wraps its payloads in several layers of module-loader arrays.
const searchDepth = 32

// Known locations of the post object inside embedded JSON state.
var (
	sharedDataPaths = []string{
		"entry_data.PostPage.0.graphql.shortcode_media",
		"entry_data.PostPage.0.media",
	}
	additionalDataPaths = []string{
		"graphql.shortcode_media",
		"items.0",
		"xdt_api__v1__media__shortcode__web_info.items.0",
	}
	scriptPaths = []string{
		"xdt_api__v1__media__shortcode__web_info.items.0",
		"data.xdt_api__v1__media__shortcode__web_info.items.0",
		"data.xdt_shortcode_media",
		"data.shortcode_media",
		"graphql.shortcode_media",
		"items.0",
	}
)

// classicScripts returns inline scripts without a JSON type.
func classicScripts(doc *Document) []Script {
	return doc.filter(func(s Script) bool {
		return s.Src == "" && (s.Type == "" || s.Type == "text/javascript")
	})
}

// pick collects the records one stage finds. An image post or a video with a
// validated URL settles the stage. A video without one is held while the
// stage keeps looking, and a URL found later for the same post is folded
// into the held record so its metadata survives.
type pick struct {
	win  *model.MediaRecord
	held *model.MediaRecord
}

// offer records rec and reports whether the stage is settled.
func (p *pick) offer(rec model.MediaRecord) bool {
	if rec.IsVideo && rec.VideoURL == "" {
		if p.held == nil {
			p.held = &rec
		}
		return false
	}
	if p.held != nil && rec.VideoURL != "" && samePost(*p.held, rec) {
		merged := *p.held
		merged.VideoURL = rec.VideoURL
		if merged.ThumbnailURL == "" {
			merged.ThumbnailURL = rec.ThumbnailURL
		}
		rec = merged
	}
	p.win = &rec
	return true
}

// result returns the settled record, else the held one.
func (p *pick) result() (model.MediaRecord, bool) {
	switch {
	case p.win != nil:
		return *p.win, true
	case p.held != nil:
		return *p.held, true
	}
	return model.MediaRecord{}, false
}

func samePost(a, b model.MediaRecord) bool {
	return a.Shortcode == "" || b.Shortcode == "" || a.Shortcode == b.Shortcode
}

// fromPaths offers the record of every path that holds a post object and
// reports whether the stage is settled.
func fromPaths(v any, paths []string, rules *Rules, p *pick) bool {
	for _, path := range paths {
		if obj := lookupObject(v, path); obj != nil {
			if rec, ok := recordFromObject(obj, rules); ok && p.offer(rec) {
				return true
			}
		}
	}
	return false
}

// sharedDataStrategy reads the legacy window._sharedData global.
type sharedDataStrategy struct {
	rules *Rules
}

func (s *sharedDataStrategy) Name() string { return StageSharedData }

func (s *sharedDataStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	var p pick
	for _, script := range classicScripts(doc) {
		if !strings.Contains(script.Text, "window._sharedData") {
			continue
		}
		state, ok := decodeObjectAfter(script.Text, "window._sharedData")
		if !ok {
			continue
		}
		if fromPaths(state, sharedDataPaths, s.rules, &p) {
			break
		}
	}
	return p.result()
}

// additionalDataStrategy reads the window.__additionalDataLoaded(path, state)
// call that replaced _sharedData on post pages.
type additionalDataStrategy struct {
	rules *Rules
}

func (s *additionalDataStrategy) Name() string { return StageAdditionalData }

func (s *additionalDataStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	var p pick
	for _, script := range classicScripts(doc) {
		i := strings.Index(script.Text, "__additionalDataLoaded(")
		if i < 0 {
			continue
		}
		// Skip the path argument; the state object follows the first comma.
		args := script.Text[i:]
		comma := strings.IndexByte(args, ',')
		if comma < 0 {
			continue
		}
		state, ok := decodeObjectAfter(args[comma:], ",")
		if !ok {
			continue
		}
		if fromPaths(state, additionalDataPaths, s.rules, &p) {
			break
		}
	}
	return p.result()
}

// jsonScriptStrategy scans application/json blocks in document order. For
// each block it tries the known paths, then a bounded search for an object
// carrying video_versions or describing this post, then a bounded search for
// any string that is an allowed video URL. A video post without a URL does
// not end the scan; later searches and blocks may still supply the URL.
type jsonScriptStrategy struct {
	rules *Rules
}

func (s *jsonScriptStrategy) Name() string { return StageJSONScripts }

func (s *jsonScriptStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	isThisPost := func(obj map[string]any) bool {
		return isMediaObject(obj) && doc.Shortcode != "" &&
			firstString(obj, "shortcode", "code") == doc.Shortcode
	}

	var p pick
	for _, script := range doc.JSONScripts() {
		v, ok := decodeJSON(script.Text)
		if !ok {
			continue
		}

		if fromPaths(v, scriptPaths, s.rules, &p) {
			break
		}

		if obj := findObject(v, 0, searchDepth, hasVideoVersions); obj != nil {
			if rec, ok := recordFromObject(obj, s.rules); ok && p.offer(rec) {
				break
			}
		}

		if obj := findObject(v, 0, searchDepth, isThisPost); obj != nil {
			if rec, ok := recordFromObject(obj, s.rules); ok && p.offer(rec) {
				break
			}
		}

		var found string
		walkStrings(v, 0, searchDepth, false, func(value string) bool {
			if u, ok := s.rules.Validate(value); ok {
				found = u
				return true
			}
			return false
		})
		if found != "" && p.offer(urlRecord(doc, found)) {
			break
		}
	}
	return p.result()
}

// jsonDeepScanStrategy repeats the string search across every JSON block
// without a depth bound, decoding JSON nested inside string values and
// looking for URLs embedded in longer strings.
type jsonDeepScanStrategy struct {
	rules *Rules
}

func (s *jsonDeepScanStrategy) Name() string { return StageJSONDeepScan }

func (s *jsonDeepScanStrategy) Attempt(doc *Document) (model.MediaRecord, bool) {
	for _, script := range doc.Scripts {
		if !script.IsJSON() && !script.IsLDJSON() {
			continue
		}
		v, ok := decodeJSON(script.Text)
		if !ok {
			continue
		}

		var found string
		walkStrings(v, 0, -1, true, func(value string) bool {
			if u, ok := s.rules.Validate(value); ok {
				found = u
				return true
			}
			if !strings.Contains(value, "http") {
				return false
			}
			if u, ok := firstValid(s.rules, embeddedURLPattern.FindAllString(value, -1)); ok {
				found = u
				return true
			}
			return false
		})
		if found != "" {
			return urlRecord(doc, found), true
		}
	}
	return model.MediaRecord{}, false
}
