package model

import "time"

// MediaType is the kind of post a MediaRecord describes.
type MediaType string

const (
	// MediaTypeImage is a still image post.
	MediaTypeImage MediaType = "image"

	// MediaTypeVideo is a video or reel post.
	MediaTypeVideo MediaType = "video"
)

// MediaRecord is the canonical metadata for one post, regardless of which
// extraction stage produced it. A video post without VideoURL is a valid
// result: the post was recognized but no playable URL could be validated.
type MediaRecord struct {
	MediaID      string    `json:"mediaId,omitempty"`
	Shortcode    string    `json:"shortcode"`
	Type         MediaType `json:"type"`
	Caption      string    `json:"caption,omitempty"`
	AuthorHandle string    `json:"authorHandle,omitempty"`
	TakenAt      time.Time `json:"takenAt,omitzero"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	IsVideo      bool      `json:"isVideo"`
}

// Normalize fills the derived fields so that Type and IsVideo always agree.
func (m *MediaRecord) Normalize() {
	if m.VideoURL != "" {
		m.IsVideo = true
	}
	if m.IsVideo {
		m.Type = MediaTypeVideo
	} else {
		m.Type = MediaTypeImage
	}
}
