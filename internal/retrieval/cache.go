package retrieval

import "github.com/maypok86/otter"

// cache is the result LRU keyed on the raw query text, sized by
// Options.CacheSize.
type cache struct {
	mem otter.Cache[string, SearchResults]
}

func newCache(size int) *cache {
	if size <= 0 {
		size = 1
	}
	mem, err := otter.MustBuilder[string, SearchResults](size).Build()
	if err != nil {
		// A capacity-only builder with no custom cost function cannot
		// fail in practice; fall back to a cache of one entry rather
		// than propagating a constructor error for this hot path.
		mem, _ = otter.MustBuilder[string, SearchResults](1).Build()
	}
	return &cache{mem: mem}
}

func (c *cache) Get(query string) (SearchResults, bool) {
	return c.mem.Get(query)
}

func (c *cache) Set(query string, results SearchResults) {
	c.mem.Set(query, results)
}
