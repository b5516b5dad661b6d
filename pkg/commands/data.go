package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func (e *Engine) remember(ctx context.Context, c Remember) Result {
	if err := e.memory.Put(ctx, c.Key, c.Value); err != nil {
		return failure(KindRemember, "Failed to remember %s: %v", c.Key, err)
	}
	return success(KindRemember, "Remembered: %s", c.Key)
}

func (e *Engine) recall(ctx context.Context, c Recall) Result {
	v, ok, err := e.memory.Get(ctx, c.Key)
	switch {
	case err != nil:
		return failure(KindRecall, "Failed to recall %s: %v", c.Key, err)
	case !ok:
		return failure(KindRecall, "No memory found for key: %s", c.Key)
	}
	return success(KindRecall, "%s", v)
}

func (e *Engine) webFetch(ctx context.Context, c WebFetch) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return failure(KindWebFetch, "Failed to fetch %s: %v", c.URL, err)
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return failure(KindWebFetch, "Failed to fetch %s: %v", c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return failure(KindWebFetch, "Failed to fetch %s: %s", c.URL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, e.fetchLimit+1))
	if err != nil {
		return failure(KindWebFetch, "Failed to read %s: %v", c.URL, err)
	}
	var note string
	if int64(len(body)) > e.fetchLimit {
		body = body[:e.fetchLimit]
		note = fmt.Sprintf("\n(truncated at %d bytes)", e.fetchLimit)
	}
	if c.Extract == "" {
		return success(KindWebFetch, "%s%s", body, note)
	}

	needle := strings.ToLower(c.Extract)
	var kept []string
	sc := bufio.NewScanner(strings.NewReader(string(body)))
	sc.Buffer(make([]byte, 0, 64*1024), int(e.fetchLimit))
	for sc.Scan() {
		if strings.Contains(strings.ToLower(sc.Text()), needle) {
			kept = append(kept, sc.Text())
		}
	}
	return success(KindWebFetch, "%s%s", strings.Join(kept, "\n"), note)
}

// parseData decodes c.Content into a generic value.
func parseData(c Parse) Result {
	var v any
	var err error
	switch c.Format {
	case FormatJSON:
		err = json.Unmarshal([]byte(c.Content), &v)
	case FormatYAML:
		err = yaml.Unmarshal([]byte(c.Content), &v)
		v = stringKeys(v)
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal([]byte(c.Content), &m)
		v = m
	case FormatXML:
		return failure(KindParse, "XML parsing not implemented")
	default:
		return failure(KindParse, "Unknown format: %s", c.Format)
	}
	if err != nil {
		return failure(KindParse, "Failed to parse %s: %v", strings.ToUpper(string(c.Format)), err)
	}
	if _, err := json.Marshal(v); err != nil {
		return failure(KindParse, "Failed to parse %s: %v", strings.ToUpper(string(c.Format)), err)
	}
	return Result{Kind: ResultValue, Command: KindParse, Value: v}
}

// stringKeys rewrites YAML mappings with non-string keys (200: ok) into
// map[string]any so the value renders as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

func report(c Report) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s", c.Title)
	for _, s := range c.Sections {
		fmt.Fprintf(&b, "\n\n## %s\n\n%s", s.Title, s.Content)
	}
	return success(KindReport, "%s", b.String())
}
