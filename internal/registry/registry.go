// Package registry tracks the SAM/CloudFormation templates of one workspace
// session. It maps workspace-relative paths to indexed absolute paths, caches
// parsed template models, and invalidates cache entries when the files change
// on disk.
//
// A Registry is constructed once per workspace session, queried synchronously
// by the resolver, and torn down with Close when the workspace closes.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lex00/samlaunch-go/internal/cfn"
)

// TemplateNotInWorkspaceError is a template path that does not resolve to an
// indexed template under the workspace folder.
type TemplateNotInWorkspaceError struct {
	Path      string
	Workspace string
}

func (e *TemplateNotInWorkspaceError) Error() string {
	return fmt.Sprintf("template %q is not in workspace %s", e.Path, e.Workspace)
}

const cacheSize = 128

// Registry serves parsed templates for one workspace.
type Registry struct {
	workspace string
	cache     *lru.Cache[string, *cfn.Template]
	watcher   *fsnotify.Watcher
	done      chan struct{}
}

// New creates a registry rooted at the workspace folder.
func New(workspace string) (*Registry, error) {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %s: %w", workspace, err)
	}
	cache, err := lru.New[string, *cfn.Template](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{workspace: abs, cache: cache}, nil
}

// Workspace returns the absolute workspace root.
func (r *Registry) Workspace() string {
	return r.workspace
}

// Resolve maps a possibly workspace-relative template path ("./foo.yaml") to
// its indexed absolute path. Paths outside the workspace, or paths that do
// not exist, fail with *TemplateNotInWorkspaceError.
func (r *Registry) Resolve(path string) (string, error) {
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.workspace, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(r.workspace, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &TemplateNotInWorkspaceError{Path: path, Workspace: r.workspace}
	}
	if _, err := os.Stat(p); err != nil {
		return "", &TemplateNotInWorkspaceError{Path: path, Workspace: r.workspace}
	}
	return p, nil
}

// Load returns the parsed template for path, consulting the cache first.
func (r *Registry) Load(path string) (*cfn.Template, error) {
	abs, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}
	if tmpl, ok := r.cache.Get(abs); ok {
		return tmpl, nil
	}
	tmpl, err := cfn.Load(abs)
	if err != nil {
		return nil, err
	}
	r.cache.Add(abs, tmpl)
	return tmpl, nil
}

// Invalidate drops the cached model for path, if any.
func (r *Registry) Invalidate(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		r.cache.Remove(abs)
	}
}

// Watch starts invalidating cached templates when template files under the
// workspace change. Safe to skip for one-shot resolutions.
func (r *Registry) Watch() error {
	if r.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addDirRecursive(watcher, r.workspace); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", r.workspace, err)
	}

	r.watcher = watcher
	r.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isTemplateFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				slog.Debug("template changed, invalidating", "path", event.Name)
				r.Invalidate(event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("template watch error", "error", err)
			case <-r.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the watcher and drops the cache.
func (r *Registry) Close() error {
	r.cache.Purge()
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.watcher = nil
	return err
}

// isTemplateFile reports whether a path looks like a CloudFormation/SAM
// template.
func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// addDirRecursive adds a directory and all subdirectories to the watcher,
// skipping hidden and vendor directories.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != dir {
			return filepath.SkipDir
		}
		if base == "vendor" || base == "node_modules" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
