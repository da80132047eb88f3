package chromemdb

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag/internal/config"
)

// wordHashEmbedder maps text to a normalized bag-of-words vector, so
// texts sharing words land near each other under cosine similarity.
type wordHashEmbedder struct{}

func (wordHashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	const dim = 64
	vec := make([]float32, dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%dim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(&config.RAGConfig{
		VectorStoresDir: t.TempDir(),
		ChunkSize:       200,
		ChunkOverlap:    40,
	}, wordHashEmbedder{})
}

func sampleTranscript() string {
	paragraphs := []string{
		"The lecture opens with a history of container shipping and how standardized boxes changed global trade forever.",
		"Next the speaker explains how penguins huddle together in antarctic winters to conserve body heat during storms.",
		"A long section covers sourdough bread baking, hydration ratios, and why the crust browns in a hot dutch oven.",
		"Finally the talk compares electric vehicle battery chemistries, lithium iron phosphate against nickel manganese cobalt.",
	}
	return strings.Join(paragraphs, "\n\n")
}

func TestCreateLoadQuery(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	path, err := m.Create(ctx, sampleTranscript(), "sess-1")
	require.NoError(t, err)
	assert.Contains(t, path, "vs_sess-1")

	store, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, store)

	// A verbatim substring of one chunk must surface that chunk in the
	// top results.
	results, err := store.Query(ctx, "penguins huddle together in antarctic winters", 4)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	found := false
	for _, r := range results {
		if strings.Contains(r, "penguins huddle") {
			found = true
		}
	}
	assert.True(t, found, "expected the penguin chunk in the top-4 results, got %v", results)
}

func TestCreateOverwritesPriorIndex(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	_, err := m.Create(ctx, sampleTranscript(), "sess-1")
	require.NoError(t, err)
	_, err = m.Create(ctx, "a completely different transcript about gardening tomatoes in raised beds", "sess-1")
	require.NoError(t, err)

	store, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, store)

	results, err := store.Query(ctx, "gardening tomatoes", 4)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotContains(t, r, "penguins")
	}
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding backend down")
}

func TestFailedCreateKeepsPriorIndex(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	cfg := &config.RAGConfig{
		VectorStoresDir: baseDir,
		ChunkSize:       200,
		ChunkOverlap:    40,
	}

	good := NewManager(cfg, wordHashEmbedder{})
	_, err := good.Create(ctx, sampleTranscript(), "sess-1")
	require.NoError(t, err)

	bad := NewManager(cfg, failingEmbedder{})
	_, err = bad.Create(ctx, "replacement transcript that will never embed", "sess-1")
	require.Error(t, err)

	// The original index survives the failed rebuild.
	store, err := good.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, store)

	results, err := store.Query(ctx, "penguins huddle together in antarctic winters", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestLoadMissingIsNotAnError(t *testing.T) {
	store, err := testManager(t).Load(context.Background(), "never-created")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	_, err := m.Create(ctx, sampleTranscript(), "sess-1")
	require.NoError(t, err)

	require.NoError(t, m.Delete("sess-1"))
	store, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, store)

	// second delete is a no-op
	require.NoError(t, m.Delete("sess-1"))
}

func TestQueryClampsK(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	_, err := m.Create(ctx, "one tiny transcript", "sess-1")
	require.NoError(t, err)
	store, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, store)

	results, err := store.Query(ctx, "tiny", 50)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}
