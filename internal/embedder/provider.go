// Package embedder defines the opaque embedding dependency the
// retrieval pipeline's semantic stage and the vector store's callers
// consume: training or hosting the underlying model is out of scope,
// so this package only fixes the interface and ships a deterministic
// test double.
package embedder

import "context"

// Mode distinguishes queries from passages, since some embedding
// models produce measurably better vectors when told which one a
// given text is.
type Mode string

const (
	// ModeQuery tags text typed by a user as a search query.
	ModeQuery Mode = "query"
	// ModePassage tags text drawn from an indexed chunk.
	ModePassage Mode = "passage"
)

// Provider converts text into fixed-width vectors. Implementations
// may wrap a local model, a remote API, or (for tests) a pure
// function of the input.
type Provider interface {
	// Embed returns one vector per entry in texts, in order.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions reports the width of vectors this provider produces.
	Dimensions() int

	// Close releases any resources the provider holds.
	Close() error
}
