package chromemdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"video-rag/internal/config"
)

const (
	collectionName = "transcript"
	compress       = false
)

// Embedder is the slice of the langchaingo embedder the store needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Manager owns the per-session chromem-go stores under one base
// directory. Exactly one store exists per session id, overwritten on
// re-processing and removed on session clear.
type Manager struct {
	baseDir      string
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
}

func NewManager(cfg *config.RAGConfig, embedder Embedder) *Manager {
	return &Manager{
		baseDir:      cfg.VectorStoresDir,
		embedder:     embedder,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
}

func (m *Manager) storePath(sessionID string) string {
	return filepath.Join(m.baseDir, "vs_"+sessionID)
}

// Create splits the transcript into overlapping chunks, embeds each one
// and persists a similarity index at the session's deterministic path.
// The index is built at a temporary path and swapped in only once
// complete, so a failed build never destroys a prior working index.
func (m *Manager) Create(ctx context.Context, transcript, sessionID string) (string, error) {
	path := m.storePath(sessionID)
	tmpPath := path + ".tmp"
	if err := os.RemoveAll(tmpPath); err != nil {
		return "", fmt.Errorf("failed to clear temporary store: %w", err)
	}
	defer os.RemoveAll(tmpPath)

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(m.chunkSize),
		textsplitter.WithChunkOverlap(m.chunkOverlap),
	)
	chunks, err := splitter.SplitText(transcript)
	if err != nil {
		return "", fmt.Errorf("failed to split transcript: %w", err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("transcript produced no chunks")
	}

	db, err := chromem.NewPersistentDB(tmpPath, compress)
	if err != nil {
		return "", fmt.Errorf("failed to create database: %v", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create/get collection: %v", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		emb, err := m.embedder.EmbedQuery(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		// Ordered ids keep chunk order readable when inspecting the store;
		// similarity search itself is order-independent.
		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("chunk-%04d", i),
			Content:   chunk,
			Embedding: emb,
		})
	}

	log.Info().Int("chunks", len(docs)).Str("path", path).Msg("Adding documents to vector database")
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return "", fmt.Errorf("failed to add documents: %v", err)
	}

	if err := m.Delete(sessionID); err != nil {
		return "", fmt.Errorf("failed to clear previous store: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to move store into place: %w", err)
	}
	return path, nil
}

// Load opens the persisted store for a session. A missing store is not
// an error: callers treat (nil, nil) as "please re-process the video".
func (m *Manager) Load(ctx context.Context, sessionID string) (*Store, error) {
	path := m.storePath(sessionID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	collection := db.GetCollection(collectionName, nil)
	if collection == nil {
		return nil, nil
	}
	return &Store{collection: collection, embedder: m.embedder}, nil
}

// Delete removes the on-disk artifact tree for a session. No-op when the
// store is already gone.
func (m *Manager) Delete(sessionID string) error {
	return os.RemoveAll(m.storePath(sessionID))
}

// Store is a loaded per-session similarity index.
type Store struct {
	collection *chromem.Collection
	embedder   Embedder
}

// Query embeds the text and returns the contents of the k nearest
// chunks, most similar first. k is clamped to the document count.
func (s *Store) Query(ctx context.Context, text string, k int) ([]string, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	emb, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := s.collection.QueryEmbedding(ctx, emb, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Content)
	}
	return out, nil
}
