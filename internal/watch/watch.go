// Package watch implements the Watcher + Coordinator: it owns the
// index snapshot behind a read/write lock, schedules debounced
// rebuilds on filesystem events, persists snapshots atomically, and
// exposes query/rebuild operations to the daemon transport.
package watch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/indexbuild"
	"github.com/codenav/navcore/internal/pathfilter"
	"github.com/fsnotify/fsnotify"
)

// State is the coordinator's user-visible build state.
type State string

const (
	StateBuilding State = "building"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

const debounceWindow = 500 * time.Millisecond

// Coordinator owns a single workspace's index lifecycle.
type Coordinator struct {
	root       string
	indexPath  string
	filter     *pathfilter.Filter
	extract    indexbuild.SymbolExtractor
	recentFunc func() map[string]bool
	onRebuilt  func(context.Context, *index.Snapshot) error

	mu       sync.RWMutex
	snapshot *index.Snapshot
	state    State
	notice   string

	buildMu sync.Mutex // serializes rebuilds (single-writer build lock)

	watcher *fsnotify.Watcher
}

// Options configures a new Coordinator.
type Options struct {
	Root       string
	IndexPath  string
	Filter     *pathfilter.Filter
	Extract    indexbuild.SymbolExtractor
	RecentFunc func() map[string]bool
	// OnRebuilt, if set, runs after every successful symbol-index
	// rebuild (with the fresh snapshot), driving any downstream index
	// that needs to stay in lockstep, such as the Hybrid Retrieval
	// Pipeline's chunk/embedding store. A failure here does not fail
	// the symbol-index rebuild; it is logged and surfaced as a notice.
	OnRebuilt func(context.Context, *index.Snapshot) error
}

// New loads any existing snapshot from disk and returns a Coordinator
// in Building or Ready state accordingly. Callers must call Start to
// launch the initial rebuild and the filesystem watcher.
func New(opts Options) (*Coordinator, error) {
	c := &Coordinator{
		root:       opts.Root,
		indexPath:  opts.IndexPath,
		filter:     opts.Filter,
		extract:    opts.Extract,
		recentFunc: opts.RecentFunc,
		onRebuilt:  opts.OnRebuilt,
		state:      StateBuilding,
		snapshot:   index.NewSnapshot(),
	}

	result, err := index.Load(opts.IndexPath)
	if err != nil {
		return nil, err
	}
	switch result.Status {
	case index.Loaded:
		c.snapshot = result.Snapshot
		c.state = StateReady
	case index.ResetAfterCorruption:
		c.notice = "index.bin was corrupt and has been reset: " + result.Cause.Error()
		log.Printf("watch: %s", c.notice)
	}
	return c, nil
}

// Start spawns the initial rebuild and the recursive filesystem
// watcher. It returns once both goroutines have been launched; it does
// not block for the rebuild to finish.
func (c *Coordinator) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = watcher
	if err := addRecursive(watcher, c.root, c.filter); err != nil {
		return err
	}

	go c.Rebuild(ctx)
	go c.watchLoop(ctx)
	return nil
}

// Close stops the filesystem watcher.
func (c *Coordinator) Close() error {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}

// Snapshot returns the current snapshot and state under the read lock.
func (c *Coordinator) Snapshot() (*index.Snapshot, State) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.state
}

// Notice returns the most recent user-visible notice (e.g. a
// corruption reset), or "".
func (c *Coordinator) Notice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notice
}

// Rebuild runs the full build-then-swap protocol: acquire the build
// lock, set Building, run the index builder off to the side, then swap
// the snapshot pointer under the write lock in a single uninterruptible
// step and persist it atomically.
func (c *Coordinator) Rebuild(ctx context.Context) error {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	c.setState(StateBuilding)

	var recent map[string]bool
	if c.recentFunc != nil {
		recent = c.recentFunc()
	}

	result, err := indexbuild.Build(ctx, indexbuild.Options{
		Root:        c.root,
		Filter:      c.filter,
		Extract:     c.extract,
		RecentPaths: recent,
	})
	if err != nil {
		c.mu.Lock()
		c.state = StateFailed
		c.mu.Unlock()
		log.Printf("watch: rebuild failed: %v", err)
		return err
	}

	if err := index.Save(c.indexPath, result.Snapshot); err != nil {
		c.mu.Lock()
		c.state = StateFailed
		c.mu.Unlock()
		log.Printf("watch: persisting snapshot failed: %v", err)
		return err
	}

	c.mu.Lock()
	c.snapshot = result.Snapshot
	c.state = StateReady
	c.mu.Unlock()

	if c.onRebuilt != nil {
		if err := c.onRebuilt(ctx, result.Snapshot); err != nil {
			c.mu.Lock()
			c.notice = "hybrid index rebuild failed: " + err.Error()
			c.mu.Unlock()
			log.Printf("watch: %s", c.notice)
		}
	}
	return nil
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
