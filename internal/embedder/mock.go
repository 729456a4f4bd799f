package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

const mockDimensions = 384

// HashProvider is a Provider that hashes each input text into a
// deterministic vector, so tests exercise the retrieval pipeline's
// semantic stage without a real model.
type HashProvider struct {
	mu         sync.Mutex
	dimensions int
	closed     bool
	embedErr   error
	closeErr   error
}

// NewHashProvider returns a HashProvider producing mockDimensions-wide vectors.
func NewHashProvider() *HashProvider {
	return &HashProvider{dimensions: mockDimensions}
}

// FailEmbed makes subsequent Embed calls return err.
func (p *HashProvider) FailEmbed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedErr = err
}

// FailClose makes Close return err.
func (p *HashProvider) FailClose(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeErr = err
}

// Embed hashes each text with SHA-256 and spreads the digest bytes
// across the vector, wrapping around as needed, then normalizes into
// [-1, 1]. Equal text always yields an equal vector.
func (p *HashProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.embedErr != nil {
		return nil, p.embedErr
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		digest := sha256.Sum256([]byte(string(mode) + ":" + text))
		vec := make([]float32, p.dimensions)
		for j := range vec {
			offset := (j * 4) % len(digest)
			bits := binary.BigEndian.Uint32(digest[offset : offset+4])
			vec[j] = (float32(bits)/float32(1<<32))*2.0 - 1.0
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the configured vector width.
func (p *HashProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

// Close records that it was called and returns any configured error.
func (p *HashProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.closeErr
}

// Closed reports whether Close has been called.
func (p *HashProvider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
