package infographic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag/internal/config"
)

type stubProvider struct {
	name  string
	img   []byte
	err   error
	calls *[]string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, _ Request) ([]byte, error) {
	if s.calls != nil {
		*s.calls = append(*s.calls, s.name)
	}
	return s.img, s.err
}

func TestFirstSuccessShortCircuits(t *testing.T) {
	var calls []string
	o := NewOrchestrator(t.TempDir(),
		&stubProvider{name: "primary", img: []byte("png"), calls: &calls},
		&stubProvider{name: "fallback", img: []byte("other"), calls: &calls},
	)

	img, generator, err := o.Generate(context.Background(), Request{VideoID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img)
	assert.Equal(t, "primary", generator)
	assert.Equal(t, []string{"primary"}, calls)
}

func TestPrimaryFailureFallsThrough(t *testing.T) {
	var calls []string
	o := NewOrchestrator(t.TempDir(),
		&stubProvider{name: "primary", err: errors.New("quota"), calls: &calls},
		&stubProvider{name: "fallback", img: []byte("png"), calls: &calls},
	)

	img, generator, err := o.Generate(context.Background(), Request{VideoID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img)
	assert.Equal(t, "fallback", generator)
	assert.Equal(t, []string{"primary", "fallback"}, calls)
}

func TestExhaustionReturnsAggregateError(t *testing.T) {
	o := NewOrchestrator(t.TempDir(),
		&stubProvider{name: "primary", err: errors.New("quota exceeded")},
		&stubProvider{name: "fallback", err: errors.New("model loading")},
	)

	_, _, err := o.Generate(context.Background(), Request{VideoID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "fallback")
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "model loading")
}

func TestGenerateAndSavePersistsByVideoID(t *testing.T) {
	dir := t.TempDir()
	o := NewOrchestrator(dir, &stubProvider{name: "primary", img: []byte("png-bytes")})

	path, generator, err := o.GenerateAndSave(context.Background(), Request{VideoID: "QCX62YJCmGk"})
	require.NoError(t, err)
	assert.Equal(t, "primary", generator)
	assert.Equal(t, filepath.Join(dir, "QCX62YJCmGk_infographic.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestGenerateAndSaveNoFileOnExhaustion(t *testing.T) {
	dir := t.TempDir()
	o := NewOrchestrator(dir, &stubProvider{name: "primary", err: errors.New("down")})

	_, _, err := o.GenerateAndSave(context.Background(), Request{VideoID: "QCX62YJCmGk"})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "QCX62YJCmGk_infographic.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProviderChainSelection(t *testing.T) {
	cfg := &config.InfographicConfig{BriaKey: "k", HuggingFaceKey: "k"}

	chain := ProviderChain(cfg, "pollinations")
	require.Len(t, chain, 2)
	assert.Equal(t, "bria", chain[0].Name())
	assert.Equal(t, "pollinations", chain[1].Name())

	chain = ProviderChain(cfg, "anything-else")
	require.Len(t, chain, 2)
	assert.Equal(t, "bria", chain[0].Name())
	assert.Equal(t, "huggingface", chain[1].Name())
}

func TestDefaultStyleApplied(t *testing.T) {
	var seen Request
	o := NewOrchestrator(t.TempDir(), &recordingProvider{req: &seen})

	_, _, err := o.Generate(context.Background(), Request{VideoID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "notebooklm", seen.Style)
}

type recordingProvider struct {
	req *Request
}

func (r *recordingProvider) Name() string { return "recording" }

func (r *recordingProvider) Generate(_ context.Context, req Request) ([]byte, error) {
	*r.req = req
	return []byte("png"), nil
}
