package commands_test

import (
	"fmt"
	"strings"
	"testing"

	"sorcerer/pkg/commands"
)

func TestResult_RenderFileListCapped(t *testing.T) {
	var files []commands.FileInfo
	for i := 0; i < 13; i++ {
		files = append(files, commands.FileInfo{Path: fmt.Sprintf("f%02d", i), Size: int64(i)})
	}
	files = append(files, commands.FileInfo{Path: "sub", IsDir: true})
	r := commands.Result{Kind: commands.ResultFileList, Command: commands.KindList, Files: files}

	out := r.Render()
	lines := strings.Split(out, "\n")
	if lines[0] != "✓ 14 entries" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 1+commands.DisplayLimit+1 {
		t.Errorf("got %d lines, want %d:\n%s", len(lines), commands.DisplayLimit+2, out)
	}
	if lines[1] != "  f00 (0 bytes)" {
		t.Errorf("first entry = %q", lines[1])
	}
	if last := lines[len(lines)-1]; last != "  …and 4 more" {
		t.Errorf("suffix = %q", last)
	}
}

func TestResult_RenderSearch(t *testing.T) {
	r := commands.Result{Kind: commands.ResultSearch, Matches: []commands.Match{{File: "a.go", Line: 3, Content: "x := 1"}}}
	want := "✓ 1 match\n  a.go:3: x := 1"
	if got := r.Render(); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestResult_RenderKinds(t *testing.T) {
	tests := []struct {
		r    commands.Result
		want string
	}{
		{commands.Result{Kind: commands.ResultSuccess, Text: "done"}, "✓ done"},
		{commands.Result{Kind: commands.ResultError, Text: "nope"}, "✗ nope"},
		{commands.Result{Kind: commands.ResultNone, Command: commands.KindThink}, "✓ Think"},
		{commands.Result{Kind: commands.ResultValue, Value: map[string]any{"a": 1.0}}, "✓ {\n  \"a\": 1\n}"},
		{commands.Result{Kind: commands.ResultFileList, Files: nil}, "✓ 0 entries"},
	}
	for _, tt := range tests {
		if got := tt.r.Render(); got != tt.want {
			t.Errorf("Render(%+v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestRenderAll_JoinsWithNewlines(t *testing.T) {
	got := commands.RenderAll([]commands.Result{
		{Kind: commands.ResultSuccess, Text: "a"},
		{Kind: commands.ResultError, Text: "b"},
	})
	if got != "✓ a\n✗ b" {
		t.Errorf("RenderAll = %q", got)
	}
}
