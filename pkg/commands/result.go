package commands

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DisplayLimit caps how many listing entries or search matches a
// rendered result shows.
const DisplayLimit = 10

// ResultKind tags a Result.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultSuccess
	ResultError
	ResultFileList
	ResultSearch
	ResultValue
)

// FileInfo is one List entry.
type FileInfo struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// Match is one Search hit.
type Match struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// Result is the outcome of one command.
type Result struct {
	Kind    ResultKind
	Command Kind
	Text    string     // ResultSuccess, ResultError
	Files   []FileInfo // ResultFileList
	Matches []Match    // ResultSearch
	Value   any        // ResultValue
}

func success(k Kind, format string, args ...any) Result {
	return Result{Kind: ResultSuccess, Command: k, Text: fmt.Sprintf(format, args...)}
}

func failure(k Kind, format string, args ...any) Result {
	return Result{Kind: ResultError, Command: k, Text: fmt.Sprintf(format, args...)}
}

func none(k Kind) Result {
	return Result{Kind: ResultNone, Command: k}
}

// OK reports whether the command succeeded.
func (r Result) OK() bool {
	return r.Kind != ResultError
}

// Render formats the result as "✓ ..." or "✗ ...". Listings and search
// results show at most DisplayLimit entries.
func (r Result) Render() string {
	switch r.Kind {
	case ResultSuccess:
		return "✓ " + r.Text
	case ResultError:
		return "✗ " + r.Text
	case ResultFileList:
		lines := make([]string, 0, len(r.Files))
		for _, f := range r.Files {
			if f.IsDir {
				lines = append(lines, f.Path+"/")
			} else {
				lines = append(lines, fmt.Sprintf("%s (%d bytes)", f.Path, f.Size))
			}
		}
		return capped(fmt.Sprintf("✓ %d %s", len(r.Files), plural(len(r.Files), "entry", "entries")), lines)
	case ResultSearch:
		lines := make([]string, 0, len(r.Matches))
		for _, m := range r.Matches {
			lines = append(lines, fmt.Sprintf("%s:%d: %s", m.File, m.Line, m.Content))
		}
		return capped(fmt.Sprintf("✓ %d %s", len(r.Matches), plural(len(r.Matches), "match", "matches")), lines)
	case ResultValue:
		out, err := json.MarshalIndent(r.Value, "", "  ")
		if err != nil {
			return "✗ unrenderable value: " + err.Error()
		}
		return "✓ " + string(out)
	default:
		return "✓ " + string(r.Command)
	}
}

func capped(header string, lines []string) string {
	var b strings.Builder
	b.WriteString(header)
	for i, line := range lines {
		if i == DisplayLimit {
			fmt.Fprintf(&b, "\n  …and %d more", len(lines)-DisplayLimit)
			break
		}
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// RenderAll joins the rendered results with newlines.
func RenderAll(results []Result) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Render()
	}
	return strings.Join(parts, "\n")
}
