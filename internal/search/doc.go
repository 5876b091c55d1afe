// Package search finds profiles by keyword, either as authors of posts under
// the keyword's hashtag, as accounts whose biography contains the keyword, or
// both merged into one deduplicated list.
package search
