package commands_test

import (
	"reflect"
	"testing"

	"sorcerer/pkg/commands"
)

func TestParseBatch_WholeResponse(t *testing.T) {
	resp := `{"commands": [
		{"cmd": "Write", "path": "a.txt", "content": "hi"},
		{"cmd": "Read", "path": "a.txt"}
	]}`
	cmds, ok := commands.ParseBatch(resp)
	if !ok {
		t.Fatal("ParseBatch: not a batch")
	}
	want := []commands.Command{
		commands.Write{Path: "a.txt", Content: "hi"},
		commands.Read{Path: "a.txt"},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("cmds = %#v, want %#v", cmds, want)
	}
}

func TestParseBatch_FencedBlock(t *testing.T) {
	resp := "Sure, doing that now.\n\n```json\n" +
		`{"commands": [{"cmd": "think", "reasoning": "first things first"}]}` +
		"\n```\n\nDone."
	cmds, ok := commands.ParseBatch(resp)
	if !ok {
		t.Fatal("ParseBatch: not a batch")
	}
	if len(cmds) != 1 || cmds[0] != (commands.Think{Reasoning: "first things first"}) {
		t.Errorf("cmds = %#v", cmds)
	}
}

func TestParseBatch_UnlabeledFenceAfterOtherLanguage(t *testing.T) {
	resp := "```go\nfunc main() {}\n```\n\n```\n" +
		`{"commands": [{"cmd": "recall", "key": "k"}]}` +
		"\n```\n"
	cmds, ok := commands.ParseBatch(resp)
	if !ok {
		t.Fatal("ParseBatch: not a batch")
	}
	if cmds[0] != (commands.Recall{Key: "k"}) {
		t.Errorf("cmds = %#v", cmds)
	}
}

func TestParseBatch_JSONC(t *testing.T) {
	resp := `{
		// scratch the value first
		"commands": [
			{"cmd": "remember", "key": "a", "value": "b",},
		],
	}`
	cmds, ok := commands.ParseBatch(resp)
	if !ok {
		t.Fatal("ParseBatch: not a batch")
	}
	if cmds[0] != (commands.Remember{Key: "a", Value: "b"}) {
		t.Errorf("cmds = %#v", cmds)
	}
}

func TestParseBatch_TagNormalization(t *testing.T) {
	for _, tag := range []string{"WebFetch", "web_fetch", "web-fetch", "WEBFETCH"} {
		resp := `{"commands": [{"cmd": "` + tag + `", "url": "http://example.com"}]}`
		cmds, ok := commands.ParseBatch(resp)
		if !ok {
			t.Errorf("tag %q: not a batch", tag)
			continue
		}
		if cmds[0].Kind() != commands.KindWebFetch {
			t.Errorf("tag %q: kind = %s", tag, cmds[0].Kind())
		}
	}
}

func TestParseBatch_NotABatch(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"prose", "The answer is 42."},
		{"other object", `{"answer": 42}`},
		{"null commands", `{"commands": null}`},
		{"unknown command", `{"commands": [{"cmd": "Teleport", "to": "mars"}]}`},
		{"missing field", `{"commands": [{"cmd": "Write", "path": "a.txt"}]}`},
		{"null field", `{"commands": [{"cmd": "Read", "path": null}]}`},
		{"missing tag", `{"commands": [{"path": "a.txt"}]}`},
		{"bad enum", `{"commands": [{"cmd": "Status", "message": "m", "level": "loud"}]}`},
		{"one bad poisons batch", `{"commands": [{"cmd": "Read", "path": "a"}, {"cmd": "Nope"}]}`},
		{"wrong field type", `{"commands": [{"cmd": "Exec", "command": "ls", "args": "-l"}]}`},
		{"yaml fence", "```yaml\ncommands: []\n```"},
		{"broken json", `{"commands": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cmds, ok := commands.ParseBatch(tt.resp); ok {
				t.Errorf("ParseBatch(%q) = %#v, want not a batch", tt.resp, cmds)
			}
		})
	}
}

func TestParseBatch_OptionalFieldsMayBeOmitted(t *testing.T) {
	cmds, ok := commands.ParseBatch(`{"commands": [{"cmd": "Search", "pattern": "TODO"}, {"cmd": "List", "path": "."}]}`)
	if !ok {
		t.Fatal("ParseBatch: not a batch")
	}
	if cmds[0] != (commands.Search{Pattern: "TODO"}) || cmds[1] != (commands.List{Path: "."}) {
		t.Errorf("cmds = %#v", cmds)
	}
}

func TestParseBatch_EmptyBatch(t *testing.T) {
	cmds, ok := commands.ParseBatch(`{"commands": []}`)
	if !ok {
		t.Fatal("an empty commands array is still a batch")
	}
	if len(cmds) != 0 {
		t.Errorf("cmds = %#v, want none", cmds)
	}
}
