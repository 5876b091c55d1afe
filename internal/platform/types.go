package platform

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// ID is a platform identifier. The API returns ids both as JSON numbers and
// as strings depending on endpoint; ID accepts either and keeps the decimal
// string form.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the id in decimal form.
func (id ID) String() string { return string(id) }

// User is the subset of a platform user object the engine consumes.
type User struct {
	PK            ID     `json:"pk"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
	IsPrivate     bool   `json:"is_private"`
	IsVerified    bool   `json:"is_verified"`
	FollowerCount int64  `json:"follower_count"`
	Biography     string `json:"biography"`
}

// UserPage is one page of a followers or following feed.
type UserPage struct {
	Users     []User `json:"users"`
	NextMaxID string `json:"next_max_id"`
}

// HasMore reports whether another page can be requested.
func (p *UserPage) HasMore() bool {
	return p.NextMaxID != ""
}

// FeedItem is one post in a hashtag feed.
type FeedItem struct {
	PK   ID     `json:"pk"`
	Code string `json:"code"`
	User User   `json:"user"`
}

// FeedPage is one page of a hashtag feed.
type FeedPage struct {
	Items         []FeedItem `json:"items"`
	MoreAvailable bool       `json:"more_available"`
	NextMaxID     string     `json:"next_max_id"`
}

// HasMore reports whether another page can be requested.
func (p *FeedPage) HasMore() bool {
	return p.MoreAvailable && p.NextMaxID != ""
}

// BroadcastResult identifies the thread and item created by a text send.
type BroadcastResult struct {
	ThreadID string
	ItemID   string
}

// Profile normalizes the user into a discovered profile with the given
// provenance. matchedKeyword may be empty.
func (u User) Profile(provenance model.Provenance, matchedKeyword string) model.DiscoveredProfile {
	return model.DiscoveredProfile{
		PlatformID:     u.PK.String(),
		Handle:         u.Username,
		DisplayName:    u.FullName,
		AvatarURL:      u.ProfilePicURL,
		IsPrivate:      u.IsPrivate,
		IsVerified:     u.IsVerified,
		FollowerCount:  u.FollowerCount,
		Provenance:     provenance,
		MatchedKeyword: matchedKeyword,
	}
}
