// Package vectorstore implements the Vector Store: it holds
// (chunk, embedding) pairs, answers top-k cosine similarity queries,
// and persists its contents to a single snapshot file, mirroring the
// way the indexer's chromem-go collection is built and queried.
package vectorstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "chunks"

// Record is one embedded chunk as stored by the vector store.
type Record struct {
	ID        string
	Path      string
	Text      string
	Language  string
	Strategy  string
	Symbol    string
	StartLine int
	EndLine   int
	Embedding []float32
}

// Result is a Record scored against a query embedding.
type Result struct {
	Record Record
	Score  float32
}

// Store wraps a chromem-go in-memory database with the batch-insert,
// top-k query, and whole-file persistence shape the pipeline needs.
// Embeddings always arrive pre-computed from the caller's embedder;
// the store itself never calls out to one.
type Store struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
}

// New creates an empty, in-memory vector store.
func New(dimensions int) (*Store, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating vector collection: %w", err)
	}
	return &Store{db: db, collection: collection, dimensions: dimensions}, nil
}

// Open loads a store from path if it exists, or creates an empty one
// otherwise.
func Open(path string, dimensions int) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(dimensions)
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("importing vector store from %s: %w", path, err)
	}
	collection := db.GetCollection(collectionName, nil)
	if collection == nil {
		var err error
		collection, err = db.CreateCollection(collectionName, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("creating vector collection: %w", err)
		}
	}
	return &Store{db: db, collection: collection, dimensions: dimensions}, nil
}

// Dimensions reports the embedding width the store was opened with.
func (s *Store) Dimensions() int { return s.dimensions }

// Insert batch-adds records to the store, replacing any existing
// record sharing an ID.
func (s *Store) Insert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.collection.Delete(ctx, nil, nil, r.ID)

		doc := chromem.Document{
			ID:        r.ID,
			Content:   r.Text,
			Embedding: r.Embedding,
			Metadata:  metadataOf(r),
		}
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", r.ID, err)
		}
	}
	return nil
}

// Delete removes records by ID. Missing IDs are ignored.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Delete(ctx, nil, nil, ids...)
}

// Reset atomically discards every stored record, swapping in a fresh
// empty collection the same way a full reindex replaces chromem-go's
// collection wholesale rather than deleting documents one at a time.
func (s *Store) Reset(ctx context.Context) error {
	collection, err := s.db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("resetting vector collection: %w", err)
	}
	s.mu.Lock()
	s.collection = collection
	s.mu.Unlock()
	return nil
}

// Query returns the topK records most similar to queryEmbedding by
// cosine similarity, highest score first.
func (s *Store) Query(ctx context.Context, queryEmbedding []float32, topK int) ([]Result, error) {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	if topK <= 0 {
		return nil, nil
	}
	n := topK
	if count := collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	docs, err := collection.QueryEmbedding(ctx, queryEmbedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, Result{
			Record: recordFromDocument(doc),
			Score:  doc.Similarity,
		})
	}
	return results, nil
}

// Count reports the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}

// Persist writes the entire store to path as a single file, via a
// sibling temp file renamed into place so readers never observe a
// partial snapshot.
func (s *Store) Persist(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmp := path + ".tmp"
	if err := s.db.ExportToFile(tmp, false, ""); err != nil {
		return fmt.Errorf("exporting vector store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming vector store snapshot into place: %w", err)
	}
	return nil
}

func metadataOf(r Record) map[string]string {
	meta := map[string]string{
		"path":     r.Path,
		"language": r.Language,
		"strategy": r.Strategy,
	}
	if r.Symbol != "" {
		meta["symbol"] = r.Symbol
	}
	meta["start_line"] = itoa(r.StartLine)
	meta["end_line"] = itoa(r.EndLine)
	return meta
}

func recordFromDocument(doc chromem.Result) Record {
	return Record{
		ID:        doc.ID,
		Path:      doc.Metadata["path"],
		Text:      doc.Content,
		Language:  doc.Metadata["language"],
		Strategy:  doc.Metadata["strategy"],
		Symbol:    doc.Metadata["symbol"],
		StartLine: atoi(doc.Metadata["start_line"]),
		EndLine:   atoi(doc.Metadata["end_line"]),
		Embedding: doc.Embedding,
	}
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

func atoi(s string) int {
	var n int
	fmt.Sscanf(s, "%d", &n)
	return n
}
