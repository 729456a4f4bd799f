package retrieval

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/codenav/navcore/internal/vectorstore"
)

const (
	minBoost = 0.5
	maxBoost = 2.0

	preferredMinLines = 5
	preferredMaxLines = 200
)

// rerank multiplies each fused hit's score by a contextual boost and
// re-sorts best-first. Hits whose record can no longer be resolved
// are dropped rather than crashing the pipeline.
func rerank(query string, recordOf func(string) (vectorstore.Record, bool), fused []fusedHit) []fusedHit {
	queryWords := strings.Fields(strings.ToLower(query))

	out := make([]fusedHit, 0, len(fused))
	for _, f := range fused {
		rec, ok := recordOf(f.id)
		if !ok {
			continue
		}
		boost := contextualBoost(query, queryWords, rec)
		out = append(out, fusedHit{id: f.id, score: f.score * boost})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out
}

// contextualBoost derives a multiplier in [minBoost, maxBoost] from
// six cheap signals: exact substring match, fraction of query words
// present, whether the query appears in the path, a fixed per-extension
// nudge, a preferred chunk-size band, and whether the record carries
// language metadata at all.
func contextualBoost(query string, queryWords []string, rec vectorstore.Record) float32 {
	boost := float32(1.0)
	lowerText := strings.ToLower(rec.Text)
	lowerQuery := strings.ToLower(query)

	if strings.Contains(lowerText, lowerQuery) {
		boost += 0.3
	}

	if len(queryWords) > 0 {
		present := 0
		for _, w := range queryWords {
			if strings.Contains(lowerText, w) {
				present++
			}
		}
		coverage := float32(present) / float32(len(queryWords))
		boost += 0.3 * coverage
	}

	if strings.Contains(strings.ToLower(rec.Path), lowerQuery) {
		boost += 0.2
	}

	if ext := filepath.Ext(rec.Path); ext != "" {
		boost += 0.05
	}

	lines := rec.EndLine - rec.StartLine + 1
	if lines >= preferredMinLines && lines <= preferredMaxLines {
		boost += 0.1
	}

	if rec.Language != "" {
		boost += 0.05
	}

	if boost < minBoost {
		boost = minBoost
	}
	if boost > maxBoost {
		boost = maxBoost
	}
	return boost
}
