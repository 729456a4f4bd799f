// Package hybridindex bridges the symbol index's file snapshot to the
// Hybrid Retrieval Pipeline: it chunks every indexed file, embeds the
// chunks in passage mode, and replaces the vector store's contents in
// one pass, invoked from the watch Coordinator's post-rebuild hook
// alongside the symbol-index rebuild it already does.
package hybridindex

import (
	"context"
	"os"
	"path/filepath"

	"github.com/codenav/navcore/internal/chunk"
	"github.com/codenav/navcore/internal/embedder"
	"github.com/codenav/navcore/internal/index"
	"github.com/codenav/navcore/internal/retrieval"
	"github.com/codenav/navcore/internal/vectorstore"
	"github.com/google/uuid"
)

const maxFileSize = 2 << 20 // 2 MiB

// Builder owns the chunker options, embedding provider, vector store,
// and retriever a single workspace uses for semantic/hybrid search.
type Builder struct {
	Root      string
	Options   chunk.Options
	Provider  embedder.Provider
	Store     *vectorstore.Store
	Retriever *retrieval.Retriever
}

// Rebuild walks every file in snap, chunks it, embeds the chunks, and
// atomically replaces both the vector store and the retriever's
// lexical index with the new set of records.
func (b *Builder) Rebuild(ctx context.Context, snap *index.Snapshot) error {
	records, texts := b.collectChunks(snap)

	if len(records) == 0 {
		return b.swap(ctx, nil)
	}

	embeddings, err := b.Provider.Embed(ctx, texts, embedder.ModePassage)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Embedding = embeddings[i]
	}

	return b.swap(ctx, records)
}

func (b *Builder) collectChunks(snap *index.Snapshot) ([]vectorstore.Record, []string) {
	var records []vectorstore.Record
	var texts []string

	for path, entry := range snap.Files {
		abs := filepath.Join(b.Root, path)
		info, err := os.Stat(abs)
		if err != nil || info.Size() > maxFileSize {
			continue
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			continue
		}

		opts := b.Options
		opts.Language = entry.Language
		for _, c := range chunk.Chunk(path, data, opts) {
			records = append(records, vectorstore.Record{
				ID:        uuid.NewString(),
				Path:      c.Path,
				Text:      c.Text,
				Language:  entry.Language,
				Strategy:  string(c.Strategy),
				Symbol:    c.Symbol,
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
			})
			texts = append(texts, c.Text)
		}
	}

	return records, texts
}

// swap replaces the vector store's entire contents with records and
// reindexes the retriever's lexical side against the same set.
func (b *Builder) swap(ctx context.Context, records []vectorstore.Record) error {
	if err := b.Store.Reset(ctx); err != nil {
		return err
	}
	if len(records) > 0 {
		if err := b.Store.Insert(ctx, records); err != nil {
			return err
		}
	}
	return b.Retriever.Reindex(records)
}
