// Package report renders engine results for the command line.
//
// Three formats share the Writer interface:
//   - TextWriter: plain text for terminal display
//   - JSONWriter: structured JSON for scripting
//   - MarkdownWriter: GitHub-flavored markdown for sharing
//
// Writers only format values produced by the discovery, search, media and
// messaging packages; they never call the platform themselves.
package report
