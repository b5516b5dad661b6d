package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

func (e *Engine) read(c Read) Result {
	data, err := os.ReadFile(e.resolve(c.Path))
	if err != nil {
		return failure(KindRead, "Failed to read %s: %v", c.Path, err)
	}
	return success(KindRead, "%s", data)
}

func (e *Engine) write(c Write) Result {
	path := e.resolve(c.Path)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failure(KindWrite, "Failed to write %s: %v", c.Path, err)
		}
	}
	if err := os.WriteFile(path, []byte(c.Content), 0o644); err != nil { //nolint:gosec // agent-owned workspace
		return failure(KindWrite, "Failed to write %s: %v", c.Path, err)
	}
	return success(KindWrite, "Successfully wrote to %s", c.Path)
}

func (e *Engine) edit(c Edit) Result {
	if c.Pattern == "" {
		return failure(KindEdit, "Failed to edit %s: empty pattern", c.Path)
	}
	path := e.resolve(c.Path)
	info, err := os.Stat(path)
	if err != nil {
		return failure(KindEdit, "Failed to edit %s: %v", c.Path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return failure(KindEdit, "Failed to edit %s: %v", c.Path, err)
	}
	out := bytes.ReplaceAll(data, []byte(c.Pattern), []byte(c.Replacement))
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return failure(KindEdit, "Failed to edit %s: %v", c.Path, err)
	}
	return success(KindEdit, "Successfully edited %s", c.Path)
}

func (e *Engine) delete(c Delete) Result {
	path := e.resolve(c.Path)
	info, err := os.Stat(path)
	if err != nil {
		return failure(KindDelete, "Failed to delete %s: %v", c.Path, err)
	}
	if info.IsDir() {
		return failure(KindDelete, "Failed to delete %s: is a directory", c.Path)
	}
	if err := os.Remove(path); err != nil {
		return failure(KindDelete, "Failed to delete %s: %v", c.Path, err)
	}
	return success(KindDelete, "Successfully deleted %s", c.Path)
}

func (e *Engine) exec(ctx context.Context, c Exec) Result {
	ctx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command, c.Args...) //nolint:gosec // running model-chosen commands is the point
	cmd.Dir = e.workdir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return success(KindExec, "%s", stdout.String())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return failure(KindExec, "Command failed: %s", strings.TrimRight(stderr.String(), "\n"))
	}
	if ctx.Err() != nil {
		err = fmt.Errorf("timed out after %s", e.execTimeout)
	}
	return failure(KindExec, "Failed to execute command: %v", err)
}

func (e *Engine) list(c List) Result {
	dir := e.resolve(c.Path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return failure(KindList, "Failed to list %s: %v", c.Path, err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, ent := range entries {
		path := filepath.Join(c.Path, ent.Name())
		if c.Pattern != "" && !strings.Contains(path, c.Pattern) && !strings.Contains(ent.Name(), c.Pattern) {
			continue
		}
		fi := FileInfo{Path: path, IsDir: ent.IsDir()}
		if !fi.IsDir {
			if info, err := ent.Info(); err == nil {
				fi.Size = info.Size()
			}
		}
		files = append(files, fi)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return Result{Kind: ResultFileList, Command: KindList, Files: files}
}
