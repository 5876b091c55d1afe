package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// searchCount is how many candidates a user search requests.
const searchCount = 50

type userEnvelope struct {
	User User `json:"user"`
}

// CurrentUser fetches the account that owns the installed session.
// It is the identity probe: success proves the cookies are live.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var env userEnvelope
	query := url.Values{"edit": {"true"}}
	if err := c.doJSON(ctx, http.MethodGet, "/accounts/current_user/", query, nil, &env); err != nil {
		return nil, err
	}
	if env.User.PK == "" {
		return nil, fmt.Errorf("%w: current user has no id", ErrUnexpectedResponse)
	}
	return &env.User, nil
}

// UserInfo fetches the full profile of a user, including biography and
// follower count.
func (c *Client) UserInfo(ctx context.Context, userID string) (*User, error) {
	var env userEnvelope
	path := "/users/" + url.PathEscape(userID) + "/info/"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.User.PK == "" {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: msgUserNotFound}
	}
	return &env.User, nil
}

// UserByUsername resolves a handle to a user.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	var env userEnvelope
	path := "/users/" + url.PathEscape(username) + "/usernameinfo/"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.User.PK == "" {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: msgUserNotFound}
	}
	return &env.User, nil
}

// SearchUsers runs the platform's user search for query.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var env struct {
		Users []User `json:"users"`
	}
	q := url.Values{"q": {query}, "count": {strconv.Itoa(searchCount)}}
	if err := c.doJSON(ctx, http.MethodGet, "/users/search/", q, nil, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

// Followers fetches one page of a user's followers. An empty maxID requests
// the first page.
func (c *Client) Followers(ctx context.Context, userID, maxID string) (*UserPage, error) {
	return c.friendships(ctx, userID, "followers", maxID)
}

// Following fetches one page of the accounts a user follows.
func (c *Client) Following(ctx context.Context, userID, maxID string) (*UserPage, error) {
	return c.friendships(ctx, userID, "following", maxID)
}

func (c *Client) friendships(ctx context.Context, userID, edge, maxID string) (*UserPage, error) {
	var page UserPage
	path := "/friendships/" + url.PathEscape(userID) + "/" + edge + "/"
	q := url.Values{"count": {"50"}}
	if maxID != "" {
		q.Set("max_id", maxID)
	}
	if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HashtagFeed fetches one page of recent posts under a hashtag.
func (c *Client) HashtagFeed(ctx context.Context, tag, maxID string) (*FeedPage, error) {
	var page FeedPage
	path := "/feed/tag/" + url.PathEscape(tag) + "/"
	var q url.Values
	if maxID != "" {
		q = url.Values{"max_id": {maxID}}
	}
	if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// BroadcastText opens (or reuses) the thread with the given recipients and
// sends text to it.
func (c *Client) BroadcastText(ctx context.Context, recipientIDs []string, text string) (*BroadcastResult, error) {
	recipients, err := json.Marshal([][]string{recipientIDs})
	if err != nil {
		return nil, err
	}
	clientContext := uuid.NewString()
	form := url.Values{
		"recipient_users":      {string(recipients)},
		"text":                 {text},
		"action":               {"send_item"},
		"client_context":       {clientContext},
		"offline_threading_id": {clientContext},
		"_uuid":                {c.deviceID},
	}

	var env struct {
		ThreadID string `json:"thread_id"`
		Payload  struct {
			ThreadID string `json:"thread_id"`
			ItemID   string `json:"item_id"`
		} `json:"payload"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/direct_v2/threads/broadcast/text/", nil, form, &env); err != nil {
		return nil, err
	}

	threadID := env.Payload.ThreadID
	if threadID == "" {
		threadID = env.ThreadID
	}
	if strings.TrimSpace(threadID) == "" && env.Payload.ItemID == "" {
		return nil, fmt.Errorf("%w: broadcast returned no thread", ErrUnexpectedResponse)
	}
	return &BroadcastResult{ThreadID: threadID, ItemID: env.Payload.ItemID}, nil
}
