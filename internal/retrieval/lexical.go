package retrieval

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/codenav/navcore/internal/vectorstore"
)

// lexicalIndex is the fuzzy/keyword stage: an in-memory bleve index
// over the chunk corpus plus a side table to recover the full record
// behind a hit (bleve stores only what the mapping asks it to).
type lexicalIndex struct {
	index   bleve.Index
	records map[string]vectorstore.Record
}

func newLexicalIndex(records []vectorstore.Record) (*lexicalIndex, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating lexical index: %w", err)
	}

	byID := make(map[string]vectorstore.Record, len(records))
	batch := index.NewBatch()
	for _, r := range records {
		byID[r.ID] = r
		if err := batch.Index(r.ID, lexicalDocument(r)); err != nil {
			index.Close()
			return nil, fmt.Errorf("indexing chunk %s: %w", r.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("committing lexical batch: %w", err)
	}

	return &lexicalIndex{index: index, records: byID}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "standard"
	textField.Store = false

	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = "keyword"
	pathField.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", textField)
	doc.AddFieldMappingsAt("path", pathField)

	mapping := bleve.NewIndexMapping()
	mapping.DefaultMapping = doc
	return mapping
}

func lexicalDocument(r vectorstore.Record) map[string]interface{} {
	return map[string]interface{}{
		"text": r.Text,
		"path": r.Path,
	}
}

// Search runs a fuzzy-leaning query (an exact match query or-combined
// with a fuzzy variant, so close misspellings still surface) and
// returns up to limit hits with bleve's relevance score normalized
// into [0, 1]. There is no smart-case handling: the match query is
// lowercased by the standard analyzer, and the fuzzy term is used as
// given.
func (l *lexicalIndex) Search(query string, limit int) ([]stageHit, error) {
	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("text")

	fuzzyQuery := bleve.NewFuzzyQuery(query)
	fuzzyQuery.SetField("text")
	fuzzyQuery.Fuzziness = 1

	combined := bleve.NewDisjunctionQuery(matchQuery, fuzzyQuery)

	req := bleve.NewSearchRequestOptions(combined, limit, 0, false)
	result, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	var maxScore float64
	for _, hit := range result.Hits {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	hits := make([]stageHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		score := float32(0)
		if maxScore > 0 {
			score = float32(hit.Score / maxScore)
		}
		hits = append(hits, stageHit{id: hit.ID, score: score})
	}
	return hits, nil
}

func (l *lexicalIndex) recordOf(id string) (vectorstore.Record, bool) {
	r, ok := l.records[id]
	return r, ok
}

func (l *lexicalIndex) Close() error {
	return l.index.Close()
}
