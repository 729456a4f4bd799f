package search

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
)

type cachedQuery struct {
	CandidateIDs []string `json:"candidate_ids"`
	Query        string   `json:"query"`
}

// queryCache holds a small in-memory LRU in front of the on-disk
// queries/<uuid>.json directory that is the durable rendezvous for
// refine requests.
type queryCache struct {
	dir string
	mem otter.Cache[QueryID, cachedQuery]
}

func newQueryCache(dir string) (*queryCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	mem, err := otter.MustBuilder[QueryID, cachedQuery](1024).Build()
	if err != nil {
		return nil, err
	}
	return &queryCache{dir: dir, mem: mem}, nil
}

// store persists candidateIDs under a fresh QueryID, guaranteeing it is
// loadable (via lookup) before the caller returns it to the client.
func (c *queryCache) store(candidateIDs []string, req Request) (QueryID, error) {
	id := QueryID(uuid.NewString())
	entry := cachedQuery{CandidateIDs: candidateIDs, Query: req.Query}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(c.dir, string(id)+".json"), data, 0o644); err != nil {
		return "", err
	}

	c.mem.Set(id, entry)
	return id, nil
}

// lookup returns the candidate id list for id, checking the in-memory
// LRU first and falling back to disk; a miss in both degrades
// gracefully by reporting ok=false so callers can recompute fresh
// candidates.
func (c *queryCache) lookup(id QueryID) ([]string, bool) {
	if entry, ok := c.mem.Get(id); ok {
		return entry.CandidateIDs, true
	}

	data, err := os.ReadFile(filepath.Join(c.dir, string(id)+".json"))
	if err != nil {
		return nil, false
	}
	var entry cachedQuery
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	c.mem.Set(id, entry)
	return entry.CandidateIDs, true
}
