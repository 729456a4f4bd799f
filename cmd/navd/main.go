// Command navd is the per-project navigator daemon: it builds and
// watches a project's symbol index and hybrid retrieval store, then
// serves both over an authenticated HTTP API, publishing a metadata
// file the CLI uses to find and dial it.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/codenav/navcore/internal/chunk"
	"github.com/codenav/navcore/internal/config"
	"github.com/codenav/navcore/internal/daemon/client"
	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/codenav/navcore/internal/embedder"
	"github.com/codenav/navcore/internal/hybridindex"
	"github.com/codenav/navcore/internal/indexbuild"
	"github.com/codenav/navcore/internal/pathfilter"
	"github.com/codenav/navcore/internal/registry"
	"github.com/codenav/navcore/internal/retrieval"
	"github.com/codenav/navcore/internal/search"
	"github.com/codenav/navcore/internal/vectorstore"
	"github.com/codenav/navcore/internal/watch"
)

func main() {
	root := flag.String("root", "", "project root (defaults to the current directory's VCS toplevel)")
	flag.Parse()

	if err := run(*root); err != nil {
		log.Fatalf("navd: %v", err)
	}
}

func run(rootFlag string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if rootFlag == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		rootFlag = cwd
	}
	root, err := client.ProjectRoot(rootFlag)
	if err != nil {
		return err
	}
	projectHash := client.ProjectHash(root)

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	workspaceDir := filepath.Join(cfg.CodexHome, "code-finder", projectHash)
	if err := os.MkdirAll(filepath.Join(workspaceDir, "queries"), 0o755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(workspaceDir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	filter, err := pathfilter.New(root)
	if err != nil {
		return fmt.Errorf("building path filter: %w", err)
	}

	searchEngine, err := search.New(root, filepath.Join(workspaceDir, "queries"))
	if err != nil {
		return fmt.Errorf("building search engine: %w", err)
	}

	provider, store, retriever, err := buildHybridPipeline(cfg)
	if err != nil {
		return fmt.Errorf("building hybrid retrieval pipeline: %w", err)
	}
	defer provider.Close()

	builder := &hybridindex.Builder{
		Root:      root,
		Options:   chunk.Options{Strategy: chunk.Strategy(cfg.Chunking.Strategy), TargetTokens: cfg.Chunking.TargetTokens, OverlapLines: cfg.Chunking.OverlapLines, IncludeContext: cfg.Chunking.IncludeContext},
		Provider:  provider,
		Store:     store,
		Retriever: retriever,
	}

	coordinator, err := watch.New(watch.Options{
		Root:      root,
		IndexPath: filepath.Join(workspaceDir, "index.bin"),
		Filter:    filter,
		Extract:   indexbuild.LocatorExtractor,
		OnRebuilt: builder.Rebuild,
	})
	if err != nil {
		return fmt.Errorf("building watch coordinator: %w", err)
	}
	if err := coordinator.Start(ctx); err != nil {
		return fmt.Errorf("starting watch coordinator: %w", err)
	}
	defer coordinator.Close()

	reg, err := registry.Open(filepath.Join(cfg.CodexHome, "code-finder", "registry.db"))
	if err != nil {
		return fmt.Errorf("opening workspace registry: %w", err)
	}
	defer reg.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("binding listener: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	secret, err := randomSecret()
	if err != nil {
		return fmt.Errorf("generating daemon secret: %w", err)
	}

	if err := reg.Register(registry.Workspace{
		ProjectHash: projectHash,
		RootPath:    root,
		PID:         os.Getpid(),
		Port:        port,
	}); err != nil {
		return fmt.Errorf("registering workspace: %w", err)
	}

	meta := client.Metadata{
		ProjectHash:   projectHash,
		ProjectRoot:   root,
		Port:          port,
		Secret:        secret,
		PID:           os.Getpid(),
		SchemaVersion: transport.SchemaVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := publishMetadata(workspaceDir, meta); err != nil {
		return fmt.Errorf("publishing daemon metadata: %w", err)
	}

	srv := transport.New(coordinator, searchEngine, retriever, secret)
	httpServer := &http.Server{Handler: srv.Handler()}

	go runSweepLoop(ctx, reg, projectHash, cfg.Daemon.SweepInterval())

	go func() {
		<-ctx.Done()
		log.Println("navd: shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("navd: shutdown error: %v", err)
		}
	}()

	log.Printf("navd: serving project %s (hash %s) on 127.0.0.1:%d", root, projectHash, port)
	if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func buildHybridPipeline(cfg *config.Config) (embedder.Provider, *vectorstore.Store, *retrieval.Retriever, error) {
	var provider embedder.Provider
	switch cfg.Embedding.Provider {
	case "hash", "":
		provider = embedder.NewHashProvider()
	default:
		return nil, nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	store, err := vectorstore.New(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, nil, nil, err
	}

	retriever, err := retrieval.New(retrieval.Options{
		MinQueryLength:    cfg.Retrieval.MinQueryLength,
		CacheSize:         cfg.Retrieval.CacheSize,
		CandidatePoolSize: cfg.Retrieval.CandidatePoolSize,
		FinalResultCount:  cfg.Retrieval.FinalResultCount,
		RRFK:              cfg.Retrieval.RRFK,
		FuzzyWeight:       cfg.Retrieval.FuzzyWeight,
		Fusion:            retrieval.FusionStrategy(cfg.Retrieval.Fusion),
		Rerank:            cfg.Retrieval.Rerank,
	}, nil, store, provider)
	if err != nil {
		return nil, nil, nil, err
	}
	return provider, store, retriever, nil
}

func runSweepLoop(ctx context.Context, reg *registry.Registry, selfHash string, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := reg.Touch(selfHash); err != nil {
				log.Printf("navd: touching registry entry: %v", err)
			}
			stale, err := reg.Sweep(interval * 3)
			if err != nil {
				log.Printf("navd: sweeping registry: %v", err)
				continue
			}
			for _, ws := range stale {
				if ws.ProjectHash == selfHash {
					continue
				}
				log.Printf("navd: workspace %s (%s) is stale, leaving its index for a warm start", ws.ProjectHash, ws.RootPath)
			}
		}
	}
}

func publishMetadata(workspaceDir string, meta client.Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(workspaceDir, "daemon.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
