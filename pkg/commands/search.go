package commands

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Search limits.
const (
	MaxMatches       = 500
	maxSearchFileLen = 2 << 20
	sniffLen         = 8000
)

// fileTypes maps a Search file_type to the extensions it covers.
var fileTypes = map[string][]string{
	"go":         {".go"},
	"rust":       {".rs"},
	"rs":         {".rs"},
	"python":     {".py", ".pyi"},
	"py":         {".py", ".pyi"},
	"js":         {".js", ".mjs", ".cjs", ".jsx"},
	"javascript": {".js", ".mjs", ".cjs", ".jsx"},
	"ts":         {".ts", ".tsx"},
	"typescript": {".ts", ".tsx"},
	"java":       {".java"},
	"c":          {".c", ".h"},
	"cpp":        {".cc", ".cpp", ".cxx", ".hpp", ".hh", ".h"},
	"md":         {".md", ".markdown"},
	"markdown":   {".md", ".markdown"},
	"json":       {".json"},
	"yaml":       {".yaml", ".yml"},
	"toml":       {".toml"},
	"sh":         {".sh", ".bash"},
	"txt":        {".txt"},
}

var skipDirs = map[string]bool{".git": true, "node_modules": true, "target": true, "vendor": true}

// matchesType reports whether path has an extension covered by fileType.
// Unknown types are treated as a bare extension ("rb" matches ".rb").
func matchesType(path, fileType string) bool {
	if fileType == "" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	exts, ok := fileTypes[strings.ToLower(fileType)]
	if !ok {
		return ext == "."+strings.TrimPrefix(strings.ToLower(fileType), ".")
	}
	for _, x := range exts {
		if ext == x {
			return true
		}
	}
	return false
}

func (e *Engine) search(ctx context.Context, c Search) Result {
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return failure(KindSearch, "Invalid search pattern %q: %v", c.Pattern, err)
	}
	rel := c.Path
	if rel == "" {
		rel = "."
	}
	root := e.resolve(rel)
	if _, err := os.Stat(root); err != nil {
		return failure(KindSearch, "Search failed: %v", err)
	}

	var matches []Match
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !matchesType(path, c.FileType) {
			return nil
		}
		display := path
		if r, err := filepath.Rel(root, path); err == nil {
			display = filepath.Join(rel, r)
		}
		matches = grepFile(path, display, re, matches)
		if len(matches) >= MaxMatches {
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return failure(KindSearch, "Search failed: %v", walkErr)
	}
	return Result{Kind: ResultSearch, Command: KindSearch, Matches: matches}
}

// grepFile appends matches of re in path. Binary and oversized files are
// skipped.
func grepFile(path, display string, re *regexp.Regexp, matches []Match) []Match {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxSearchFileLen {
		return matches
	}
	data, err := os.ReadFile(path)
	if err != nil || bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0 {
		return matches
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxSearchFileLen)
	for n := 1; sc.Scan(); n++ {
		if re.MatchString(sc.Text()) {
			matches = append(matches, Match{File: display, Line: n, Content: strings.TrimSpace(sc.Text())})
			if len(matches) >= MaxMatches {
				break
			}
		}
	}
	return matches
}
