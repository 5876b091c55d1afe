package model

// Provenance records which discovery method produced a profile.
type Provenance string

const (
	// ProvenanceHashtagPost marks a profile found as the author of a post under a hashtag.
	ProvenanceHashtagPost Provenance = "hashtag_post"

	// ProvenanceBioMatch marks a profile whose biography contains the keyword.
	ProvenanceBioMatch Provenance = "bio_match"

	// ProvenanceFollower marks a profile found in a followers feed.
	ProvenanceFollower Provenance = "follower"

	// ProvenanceFollowing marks a profile found in a following feed.
	ProvenanceFollowing Provenance = "following"
)

// DiscoveredProfile is a normalized profile produced by the crawler or the
// keyword search engine. Profiles are deduplicated by PlatformID within a
// single crawl or merge and are not modified after they are produced.
type DiscoveredProfile struct {
	PlatformID     string     `json:"platformId"`
	Handle         string     `json:"handle"`
	DisplayName    string     `json:"displayName"`
	AvatarURL      string     `json:"avatarUrl,omitempty"`
	IsPrivate      bool       `json:"isPrivate"`
	IsVerified     bool       `json:"isVerified"`
	FollowerCount  int64      `json:"followerCount"`
	Provenance     Provenance `json:"provenance"`
	MatchedKeyword string     `json:"matchedKeyword,omitempty"`
}
