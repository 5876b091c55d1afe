package media

import (
	"strings"
	"time"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// v1 media_type values.
const (
	mediaTypeImage    = 1
	mediaTypeVideo    = 2
	mediaTypeCarousel = 8
)

// isMediaObject reports whether obj looks like a post, in either the legacy
// GraphQL shape (shortcode, __typename, is_video) or the v1 item shape
// (code, media_type).
func isMediaObject(obj map[string]any) bool {
	_, hasShortcode := obj["shortcode"]
	_, hasCode := obj["code"]
	_, hasTypename := obj["__typename"]
	_, hasIsVideo := obj["is_video"]
	_, hasMediaType := obj["media_type"]
	_, hasVersions := obj["video_versions"]
	_, hasImages := obj["image_versions2"]
	_, hasDisplay := obj["display_url"]

	switch {
	case hasShortcode && (hasTypename || hasIsVideo || hasDisplay):
		return true
	case hasCode && (hasMediaType || hasVersions || hasImages):
		return true
	default:
		return false
	}
}

// hasVideoVersions reports whether obj exposes a non-empty video_versions array.
func hasVideoVersions(obj map[string]any) bool {
	versions, ok := obj["video_versions"].([]any)
	return ok && len(versions) > 0
}

// recordFromObject converts a recognized post object into a MediaRecord.
// VideoURL is set only when a candidate passes rules.
func recordFromObject(obj map[string]any, rules *Rules) (model.MediaRecord, bool) {
	if !isMediaObject(obj) && !hasVideoVersions(obj) {
		return model.MediaRecord{}, false
	}

	caption := firstString(obj,
		"edge_media_to_caption.edges.0.node.text",
		"caption.text",
		"caption",
		"accessibility_caption",
	)
	thumbnail := firstString(obj, "display_url", "thumbnail_src", "image_versions2.candidates.0.url")

	rec := model.MediaRecord{
		MediaID:      firstString(obj, "pk", "id"),
		Shortcode:    firstString(obj, "shortcode", "code"),
		Caption:      caption,
		AuthorHandle: firstString(obj, "owner.username", "user.username"),
		LikeCount:    firstInt(obj, "edge_media_preview_like.count", "edge_liked_by.count", "like_count"),
		CommentCount: firstInt(obj, "edge_media_to_comment.count", "edge_media_preview_comment.count", "comment_count"),
		ThumbnailURL: Unescape(thumbnail),
	}
	if ts := firstInt(obj, "taken_at_timestamp", "taken_at"); ts > 0 {
		rec.TakenAt = time.Unix(ts, 0).UTC()
	}

	rec.IsVideo = objectIsVideo(obj)
	for _, candidate := range videoCandidates(obj) {
		if u, ok := rules.Validate(candidate); ok {
			rec.VideoURL = u
			rec.IsVideo = true
			break
		}
	}
	return rec, true
}

func objectIsVideo(obj map[string]any) bool {
	if v, ok := obj["is_video"].(bool); ok && v {
		return true
	}
	if n, ok := num(obj["media_type"]); ok {
		switch n {
		case mediaTypeVideo:
			return true
		case mediaTypeImage, mediaTypeCarousel:
			return hasVideoVersions(obj)
		}
	}
	if t := str(obj["__typename"]); strings.Contains(strings.ToLower(t), "video") {
		return true
	}
	return hasVideoVersions(obj) || str(obj["video_url"]) != ""
}

// videoCandidates lists the object's video URL fields in preference order.
func videoCandidates(obj map[string]any) []string {
	candidates := make([]string, 0, 4)
	if u := str(obj["video_url"]); u != "" {
		candidates = append(candidates, u)
	}
	if versions, ok := obj["video_versions"].([]any); ok {
		for _, v := range versions {
			if u := str(lookup(v, "url")); u != "" {
				candidates = append(candidates, u)
			}
		}
	}
	return candidates
}
