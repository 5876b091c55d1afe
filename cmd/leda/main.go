// Package main provides the entry point for the leda CLI.
//
// leda drives an authenticated browser session on the platform: it stores
// encrypted session cookies, crawls followers, following and hashtag feeds,
// searches profiles by keyword, sends direct messages and resolves post
// media from shortcodes.
//
// Usage:
//
//	leda account add main --session-id ... --csrf-token ... --user-id ...
//	leda hashtag main coffee --limit 50
//	leda resolve main CvIdeo12345
//
// See --help for all available options.
package main

func main() {
	Execute()
}
