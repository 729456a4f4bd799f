package retrieval_test

import (
	"context"
	"testing"

	"github.com/codenav/navcore/internal/embedder"
	"github.com/codenav/navcore/internal/retrieval"
	"github.com/codenav/navcore/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []vectorstore.Record {
	return []vectorstore.Record{
		{ID: "1", Path: "auth/login.go", Text: "func Login(user, pass string) error { return verifyCredentials(user, pass) }", Language: "go", StartLine: 1, EndLine: 3},
		{ID: "2", Path: "auth/logout.go", Text: "func Logout(session string) error { return invalidateSession(session) }", Language: "go", StartLine: 1, EndLine: 3},
		{ID: "3", Path: "billing/invoice.go", Text: "func GenerateInvoice(order Order) Invoice { return buildInvoice(order) }", Language: "go", StartLine: 1, EndLine: 3},
	}
}

func newTestRetriever(t *testing.T, opts retrieval.Options) (*retrieval.Retriever, *embedder.HashProvider) {
	t.Helper()
	records := sampleRecords()

	store, err := vectorstore.New(384)
	require.NoError(t, err)
	provider := embedder.NewHashProvider()

	passages := make([]string, len(records))
	for i, r := range records {
		passages[i] = r.Text
	}
	vecs, err := provider.Embed(context.Background(), passages, embedder.ModePassage)
	require.NoError(t, err)
	for i := range records {
		records[i].Embedding = vecs[i]
	}
	require.NoError(t, store.Insert(context.Background(), records))

	r, err := retrieval.New(opts, records, store, provider)
	require.NoError(t, err)
	return r, provider
}

func TestRetrieveRejectsShortQueries(t *testing.T) {
	opts := retrieval.DefaultOptions()
	opts.MinQueryLength = 4
	r, _ := newTestRetriever(t, opts)

	results := r.Retrieve(context.Background(), "ab")
	assert.Empty(t, results.Results)
	assert.Empty(t, results.QueryID)
}

func TestRetrieveFuzzyOnlyFindsLexicalMatch(t *testing.T) {
	opts := retrieval.DefaultOptions()
	opts.Fusion = retrieval.FusionFuzzyOnly
	opts.Rerank = false
	r, _ := newTestRetriever(t, opts)

	results := r.Retrieve(context.Background(), "Login")
	require.NotEmpty(t, results.Results)
	assert.Equal(t, "1", results.Results[0].Chunk.ID)
}

func TestRetrieveCachesByQueryText(t *testing.T) {
	opts := retrieval.DefaultOptions()
	opts.Fusion = retrieval.FusionFuzzyOnly
	r, _ := newTestRetriever(t, opts)

	first := r.Retrieve(context.Background(), "invoice")
	assert.False(t, first.Cached)

	second := r.Retrieve(context.Background(), "invoice")
	assert.True(t, second.Cached)
	assert.Equal(t, first.QueryID, second.QueryID)
}

func TestRetrieveTruncatesToFinalResultCount(t *testing.T) {
	opts := retrieval.DefaultOptions()
	opts.Fusion = retrieval.FusionFuzzyOnly
	opts.FinalResultCount = 1
	r, _ := newTestRetriever(t, opts)

	results := r.Retrieve(context.Background(), "func")
	assert.LessOrEqual(t, len(results.Results), 1)
}

func TestRetrieveSemanticStageDegradesWhenEmbedderFails(t *testing.T) {
	opts := retrieval.DefaultOptions()
	r, provider := newTestRetriever(t, opts)
	provider.FailEmbed(assert.AnError)

	results := r.Retrieve(context.Background(), "login session")
	assert.Contains(t, results.Degraded, "semantic: "+assert.AnError.Error())
	// fuzzy stage still contributes results despite the semantic failure.
	assert.NotEmpty(t, results.Results)
}
