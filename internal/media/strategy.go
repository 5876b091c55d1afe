package media

import "github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"

// Strategy names, in chain order.
const (
	StageSharedData     = "shared-data"
	StageAdditionalData = "additional-data"
	StageJSONScripts    = "json-scripts"
	StageJSONDeepScan   = "json-deep-scan"
	StageLDJSON         = "ld-json"
	StageFieldSweep     = "field-sweep"
	StageExtensionSweep = "extension-sweep"
	StageCDNHostSweep   = "cdn-host-sweep"
	StageScriptSweep    = "script-sweep"
	StagePathSignature  = "path-signature-sweep"
	StageEscapedSweep   = "escaped-sweep"
)

// Strategy is one extraction stage. Attempt returns a record and true when
// the stage found something; it must not modify doc.
type Strategy interface {
	Name() string
	Attempt(doc *Document) (model.MediaRecord, bool)
}

// DefaultStrategies returns the eleven built-in stages in priority order.
func DefaultStrategies(rules *Rules) []Strategy {
	return []Strategy{
		&sharedDataStrategy{rules: rules},
		&additionalDataStrategy{rules: rules},
		&jsonScriptStrategy{rules: rules},
		&jsonDeepScanStrategy{rules: rules},
		&ldJSONStrategy{rules: rules},
		&fieldSweepStrategy{rules: rules},
		newExtensionSweepStrategy(rules),
		newCDNHostStrategy(rules),
		newScriptSweepStrategy(rules),
		newPathSignatureStrategy(rules),
		&escapedSweepStrategy{rules: rules},
	}
}

// urlRecord is the record a sweep stage produces: only the post identity,
// the validated URL, and the page's preview image.
func urlRecord(doc *Document, videoURL string) model.MediaRecord {
	return model.MediaRecord{
		Shortcode:    doc.Shortcode,
		Type:         model.MediaTypeVideo,
		IsVideo:      true,
		VideoURL:     videoURL,
		ThumbnailURL: doc.Meta["og:image"],
	}
}

// firstValid returns the first candidate that passes rules.
func firstValid(rules *Rules, candidates []string) (string, bool) {
	for _, c := range candidates {
		if u, ok := rules.Validate(c); ok {
			return u, true
		}
	}
	return "", false
}

// longestValid returns the longest distinct candidate that passes rules.
// Longer CDN URLs carry more signature parameters and play more reliably.
func longestValid(rules *Rules, candidates []string) (string, bool) {
	best := ""
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		u, ok := rules.Validate(c)
		if !ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if len(u) > len(best) {
			best = u
		}
	}
	return best, best != ""
}
