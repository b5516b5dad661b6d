package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSystemPrompt describes the command batch format to the model.
const DefaultSystemPrompt = `You are an autonomous agent that acts by emitting commands.

When you need to act, reply with a single JSON object and nothing else:

{"commands": [
  {"cmd": "Read", "path": "notes.txt"},
  {"cmd": "Write", "path": "out.txt", "content": "hello"}
]}

Available commands (field "cmd" selects the command):
- Read {path}; Write {path, content}; Edit {path, pattern, replacement}; Delete {path}
- Exec {command, args}; List {path, pattern?}; Search {pattern, path?, file_type?}
- Think {reasoning}; Plan {tasks}; UpdatePlan {plan_id, task_id, status: pending|in_progress|completed|failed}
- Remember {key, value}; Recall {key}
- WebFetch {url, extract?}; Parse {content, format: json|yaml|toml|xml}
- Status {message, level: info|warning|error|success}; Report {title, sections: [{title, content}]}

Commands run in order; a failing command does not stop the rest.
When no action is needed, answer in plain prose instead.`

// PromptFile serves a system prompt loaded from a file and reloads it
// whenever the file is written or replaced.
type PromptFile struct {
	path string
	log  *zap.SugaredLogger

	mu      sync.RWMutex
	current string
}

var _ Prompt = (*PromptFile)(nil)

// LoadPromptFile reads path once. Call Watch to keep it current.
func LoadPromptFile(path string, log *zap.SugaredLogger) (*PromptFile, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &PromptFile{path: filepath.Clean(path), log: log.Named("prompt")}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Current implements Prompt.
func (p *PromptFile) Current() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *PromptFile) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read system prompt %s: %w", p.path, err)
	}
	p.mu.Lock()
	p.current = strings.TrimSpace(string(data))
	p.mu.Unlock()
	return nil
}

// Watch reloads the prompt on changes until ctx is cancelled. The parent
// directory is watched so editors that replace the file are handled. A
// failed reload keeps the previous prompt.
func (p *PromptFile) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := p.reload(); err != nil {
				p.log.Warnw("system prompt reload failed", "error", err)
				continue
			}
			p.log.Infow("system prompt reloaded", "path", p.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warnw("watcher error", "error", err)
		}
	}
}
