package commands

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// variant describes how to decode one command kind.
type variant struct {
	required []string
	decode   func(raw []byte) (Command, error)
}

func decodeAs[T Command](raw []byte) (Command, error) {
	var c T
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// variants is keyed by normalized tag (see normalizeTag).
var variants = map[string]variant{
	"read":       {[]string{"path"}, decodeAs[Read]},
	"write":      {[]string{"path", "content"}, decodeAs[Write]},
	"edit":       {[]string{"path", "pattern", "replacement"}, decodeAs[Edit]},
	"delete":     {[]string{"path"}, decodeAs[Delete]},
	"exec":       {[]string{"command", "args"}, decodeAs[Exec]},
	"list":       {[]string{"path"}, decodeAs[List]},
	"search":     {[]string{"pattern"}, decodeAs[Search]},
	"think":      {[]string{"reasoning"}, decodeAs[Think]},
	"plan":       {[]string{"tasks"}, decodeAs[Plan]},
	"updateplan": {[]string{"plan_id", "task_id", "status"}, decodeAs[UpdatePlan]},
	"remember":   {[]string{"key", "value"}, decodeAs[Remember]},
	"recall":     {[]string{"key"}, decodeAs[Recall]},
	"webfetch":   {[]string{"url"}, decodeAs[WebFetch]},
	"parse":      {[]string{"content", "format"}, decodeAs[Parse]},
	"status":     {[]string{"message", "level"}, decodeAs[Status]},
	"report":     {[]string{"title", "sections"}, decodeAs[Report]},
}

// normalizeTag folds case and drops '_' and '-', so "web_fetch",
// "WebFetch" and "web-fetch" are the same tag.
func normalizeTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if r != '_' && r != '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseBatch extracts a command batch from a model response. The whole
// response may be a JSON (or JSONC) object {"commands": [...]}, or such an
// object may sit in a fenced code block labeled json, jsonc or nothing.
// ok is false when no batch is found; that is the plain-text case, not an
// error. An empty commands array is a batch that does nothing. A batch
// with an unknown command, a missing required field or an
// invalid enum value is rejected as a whole.
func ParseBatch(response string) (cmds []Command, ok bool) {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") {
		if cmds, ok := decodeBatch([]byte(trimmed)); ok {
			return cmds, true
		}
	}
	for _, block := range fencedBlocks([]byte(response)) {
		if cmds, ok := decodeBatch(block); ok {
			return cmds, true
		}
	}
	return nil, false
}

func decodeBatch(data []byte) ([]Command, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &envelope); err != nil {
		return nil, false
	}
	rawCmds, ok := envelope["commands"]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawCmds, &items); err != nil || items == nil {
		return nil, false
	}

	cmds := make([]Command, 0, len(items))
	for _, item := range items {
		cmd, ok := decodeCommand(item)
		if !ok {
			return nil, false
		}
		cmds = append(cmds, cmd)
	}
	return cmds, true
}

func decodeCommand(raw json.RawMessage) (Command, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	var tag string
	if err := json.Unmarshal(fields["cmd"], &tag); err != nil {
		return nil, false
	}
	v, ok := variants[normalizeTag(tag)]
	if !ok {
		return nil, false
	}
	for _, name := range v.required {
		val, present := fields[name]
		if !present || bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			return nil, false
		}
	}
	cmd, err := v.decode(raw)
	if err != nil {
		return nil, false
	}
	if !valid(cmd) {
		return nil, false
	}
	return cmd, true
}

// valid checks enum-typed fields.
func valid(cmd Command) bool {
	switch c := cmd.(type) {
	case UpdatePlan:
		return c.Status.Valid()
	case Parse:
		return c.Format.Valid()
	case Status:
		return c.Level.Valid()
	}
	return true
}

// fencedBlocks returns the bodies of fenced code blocks whose info string
// is empty, json or jsonc, in document order.
func fencedBlocks(source []byte) [][]byte {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks [][]byte
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch strings.ToLower(string(fenced.Language(source))) {
		case "", "json", "jsonc":
		default:
			return ast.WalkSkipChildren, nil
		}
		var body bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			body.Write(segment.Value(source))
		}
		blocks = append(blocks, body.Bytes())
		return ast.WalkSkipChildren, nil
	})
	return blocks
}
