package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codenav/navcore/internal/config"
	"github.com/codenav/navcore/internal/daemon/client"
)

// resolvedProject bundles everything a command needs to dial the
// right daemon for the directory navctl was invoked from.
type resolvedProject struct {
	root string
	hash string
	cfg  *config.Config
}

func resolveProject() (resolvedProject, error) {
	start := rootFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return resolvedProject{}, err
		}
		start = cwd
	}
	root, err := client.ProjectRoot(start)
	if err != nil {
		return resolvedProject{}, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return resolvedProject{}, fmt.Errorf("loading configuration: %w", err)
	}
	return resolvedProject{root: root, hash: client.ProjectHash(root), cfg: cfg}, nil
}

// dialDaemon resolves the project and dials its daemon, spawning navd
// if no daemon is currently serving it.
func dialDaemon(ctx context.Context) (*client.Client, resolvedProject, error) {
	proj, err := resolveProject()
	if err != nil {
		return nil, resolvedProject{}, err
	}
	dataDir := codeFinderDir(proj.cfg)
	c, err := client.Dial(ctx, dataDir, proj.hash, client.SpawnSpec{
		Command: []string{"navd", "--root", proj.root},
		Dir:     proj.root,
		Env:     os.Environ(),
	})
	if err != nil {
		return nil, proj, fmt.Errorf("dialing navigator daemon: %w", err)
	}
	return c, proj, nil
}

// peekDaemon dials without spawning, for status/stop commands that
// should report "not running" instead of starting one up.
func peekDaemon(ctx context.Context) (*client.Client, resolvedProject, error) {
	proj, err := resolveProject()
	if err != nil {
		return nil, resolvedProject{}, err
	}
	c, err := client.Dial(ctx, codeFinderDir(proj.cfg), proj.hash, client.SpawnSpec{})
	if err != nil {
		return nil, proj, err
	}
	return c, proj, nil
}

func codeFinderDir(cfg *config.Config) string {
	return filepath.Join(cfg.CodexHome, "code-finder")
}
