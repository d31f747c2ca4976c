package shared

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// ExpandHome resolves a leading "~/" against the user's home directory.
// It reports false when the path needs a home directory that is unknown.
func ExpandHome(path string) (string, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, true
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	if path == "~" {
		return home, true
	}
	return filepath.Join(home, filepath.FromSlash(path[2:])), true
}

// Discover expands glob patterns ("**" matches any depth) into regular
// files, deduplicated in first-seen order. Matches of one pattern come back
// sorted. Bad patterns are logged and skipped.
func Discover(patterns []string) []string {
	var files []string
	for _, pattern := range patterns {
		expanded, ok := ExpandHome(pattern)
		if !ok {
			log.Printf("discover: no home directory for %q", pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(expanded, doublestar.WithFilesOnly())
		if err != nil {
			log.Printf("discover: invalid pattern %q: %v", pattern, err)
			continue
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return lo.Uniq(files)
}

// WatchRoot returns the deepest directory of pattern that contains no glob
// metacharacters. Watchers subscribe there.
func WatchRoot(pattern string) (string, bool) {
	expanded, ok := ExpandHome(pattern)
	if !ok {
		return "", false
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(expanded))
	if base == "" {
		base = "."
	}
	return filepath.FromSlash(base), true
}
