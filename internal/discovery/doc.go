// Package discovery crawls the platform's paginated feeds into
// DiscoveredProfile lists.
//
// Three feeds are supported: an account's followers, the accounts it follows,
// and the authors of recent posts under a hashtag. Pages are fetched one at a
// time with a fixed pause between fetches (500ms by default) so the traffic
// looks like someone scrolling. A crawl stops at the requested limit, at the
// end of the feed, or at the first page that fails to load; in the last case
// the profiles collected so far are returned. Entries are deduplicated by
// platform id across pages and keep feed order.
package discovery
