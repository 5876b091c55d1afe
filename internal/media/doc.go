// Package media resolves a post shortcode into a normalized MediaRecord.
//
// The post page is fetched with the session's cookies, checked against a
// degenerate-response guard, parsed once into a Document, and handed to an
// ordered list of Strategy values. Each strategy either produces a record or
// declines. The first record carrying a validated video URL, or describing an
// image post, wins; records from different strategies are never merged.
//
// The first three strategies read the page's embedded JSON state and can
// recognize a post's full metadata. When one of them recognizes a video post
// but finds no URL that passes the Rules, the record is held back while the
// remaining strategies sweep the markup for a URL. If none finds one, the held
// record is returned with an empty VideoURL.
//
// Every candidate URL is checked against Rules: an allow-list of CDN host
// suffixes, path signatures, and extensions, and a block-list of script,
// style, thumbnail, and image markers. The rules drift with the platform's
// CDN layout and can be replaced from the configuration file.
package media
