package media

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// decodeJSON decodes the first JSON value in s, ignoring trailing text.
// Numbers are kept as json.Number so large ids survive.
func decodeJSON(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// decodeObjectAfter decodes the first JSON object that starts after marker
// in s.
func decodeObjectAfter(s, marker string) (any, bool) {
	i := strings.Index(s, marker)
	if i < 0 {
		return nil, false
	}
	rest := s[i+len(marker):]
	j := strings.IndexByte(rest, '{')
	if j < 0 {
		return nil, false
	}
	return decodeJSON(rest[j:])
}

// lookup follows a dotted path through maps and arrays. Numeric segments
// index arrays.
func lookup(v any, path string) any {
	for _, seg := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			v = node[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			v = node[i]
		default:
			return nil
		}
		if v == nil {
			return nil
		}
	}
	return v
}

func lookupObject(v any, path string) map[string]any {
	obj, _ := lookup(v, path).(map[string]any)
	return obj
}

// firstString returns the first non-empty string found at any of paths.
func firstString(v any, paths ...string) string {
	for _, p := range paths {
		if s := str(lookup(v, p)); s != "" {
			return s
		}
	}
	return ""
}

// firstInt returns the first number found at any of paths.
func firstInt(v any, paths ...string) int64 {
	for _, p := range paths {
		if n, ok := num(lookup(v, p)); ok {
			return n
		}
	}
	return 0
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatInt(int64(x), 10)
	default:
		return ""
	}
}

func num(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

// sortedKeys returns the keys of m in lexical order so searches are
// deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findObject returns the first object, depth first, for which match is true.
// maxDepth < 0 means unbounded.
func findObject(v any, depth, maxDepth int, match func(map[string]any) bool) map[string]any {
	if maxDepth >= 0 && depth > maxDepth {
		return nil
	}
	switch node := v.(type) {
	case map[string]any:
		if match(node) {
			return node
		}
		for _, k := range sortedKeys(node) {
			if found := findObject(node[k], depth+1, maxDepth, match); found != nil {
				return found
			}
		}
	case []any:
		for _, item := range node {
			if found := findObject(item, depth+1, maxDepth, match); found != nil {
				return found
			}
		}
	}
	return nil
}

// walkStrings calls visit for every string value under v, depth first, until
// visit returns true. When nested is set, string values that themselves hold
// JSON are decoded and walked too. maxDepth < 0 means unbounded.
func walkStrings(v any, depth, maxDepth int, nested bool, visit func(string) bool) bool {
	if maxDepth >= 0 && depth > maxDepth {
		return false
	}
	switch node := v.(type) {
	case string:
		if visit(node) {
			return true
		}
		if nested {
			t := strings.TrimSpace(node)
			if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
				if inner, ok := decodeJSON(t); ok {
					return walkStrings(inner, depth+1, maxDepth, nested, visit)
				}
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(node) {
			if walkStrings(node[k], depth+1, maxDepth, nested, visit) {
				return true
			}
		}
	case []any:
		for _, item := range node {
			if walkStrings(item, depth+1, maxDepth, nested, visit) {
				return true
			}
		}
	}
	return false
}
