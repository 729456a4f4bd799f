package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	maxWatchedDirectories = 8192
	maxWatchDepth         = 32
)

// watchLoop accumulates fsnotify events and coalesces them into a
// single rebuild per debounceWindow, dropping events whose path is
// fully ignored by the path filter.
func (c *Coordinator) watchLoop(ctx context.Context) {
	var mu sync.Mutex
	accumulated := map[string]bool{}
	var timer *time.Timer
	rebuildCh := make(chan struct{}, 1)

	resetTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildCh <- struct{}{}:
			default:
			}
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-c.watcher.Events:
				if !ok {
					return
				}
				rel, err := filepath.Rel(c.root, event.Name)
				if err != nil {
					rel = event.Name
				}
				info, statErr := os.Stat(event.Name)
				isDir := statErr == nil && info.IsDir()
				if c.filter != nil && c.filter.IsIgnoredRel(filepath.ToSlash(rel), isDir) {
					continue
				}
				if isDir && event.Op&fsnotify.Create != 0 {
					_ = addRecursive(c.watcher, event.Name, c.filter)
				}

				mu.Lock()
				accumulated[event.Name] = true
				resetTimer()
				mu.Unlock()
			case err, ok := <-c.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watch: fsnotify error: %v", err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildCh:
			mu.Lock()
			accumulated = map[string]bool{}
			mu.Unlock()
			if err := c.Rebuild(ctx); err != nil {
				log.Printf("watch: background rebuild failed: %v", err)
			}
		}
	}
}

// addRecursive walks root and watches every non-ignored directory, up
// to maxWatchedDirectories total and maxWatchDepth levels deep.
func addRecursive(watcher *fsnotify.Watcher, root string, filter interface {
	IsIgnoredRel(string, bool) bool
}) error {
	count := 0
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && rel != "." {
			depth := len(strings.Split(filepath.ToSlash(rel), "/"))
			if depth > maxWatchDepth {
				return filepath.SkipDir
			}
			if filter != nil && filter.IsIgnoredRel(filepath.ToSlash(rel), true) {
				return filepath.SkipDir
			}
		}
		if count >= maxWatchedDirectories {
			return filepath.SkipDir
		}
		count++
		return watcher.Add(path)
	})
}
