package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-rag/internal/models"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager(time.Minute, nil)
	s, err := m.Create()
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	_, ok = m.Get("unknown")
	assert.False(t, ok)
}

func TestSetVideo(t *testing.T) {
	m := NewManager(time.Minute, nil)
	s, err := m.Create()
	require.NoError(t, err)

	meta := models.VideoMetadata{Title: "T", Author: "A"}
	require.True(t, m.SetVideo(s.ID, "QCX62YJCmGk", meta, "transcript text"))

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, "QCX62YJCmGk", got.VideoID)
	assert.Equal(t, meta, got.Metadata)
	assert.Equal(t, "transcript text", got.Transcript)

	assert.False(t, m.SetVideo("unknown", "x", meta, ""))
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager(time.Minute, nil)
	s, err := m.Create()
	require.NoError(t, err)
	require.True(t, m.SetVideo(s.ID, "QCX62YJCmGk", models.VideoMetadata{Title: "T"}, "transcript text"))

	got, ok := m.Get(s.ID)
	require.True(t, ok)

	// Mutating the snapshot must not leak into the manager's state.
	got.VideoID = "tampered-vid"
	got.Transcript = "tampered transcript"
	got.Metadata.Title = "tampered"

	again, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, "QCX62YJCmGk", again.VideoID)
	assert.Equal(t, "transcript text", again.Transcript)
	assert.Equal(t, "T", again.Metadata.Title)
}

func TestDeleteFiresExpiryHookOnce(t *testing.T) {
	var expired []string
	m := NewManager(time.Minute, func(id string) { expired = append(expired, id) })
	s, err := m.Create()
	require.NoError(t, err)

	m.Delete(s.ID)
	m.Delete(s.ID) // second delete is a no-op

	assert.Equal(t, []string{s.ID}, expired)
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	var expired []string
	m := NewManager(10*time.Millisecond, func(id string) { expired = append(expired, id) })

	stale, err := m.Create()
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	fresh, err := m.Create()
	require.NoError(t, err)

	m.sweep()

	assert.Equal(t, []string{stale.ID}, expired)
	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestGetRefreshesInactivityClock(t *testing.T) {
	m := NewManager(30*time.Millisecond, nil)
	s, err := m.Create()
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, ok := m.Get(s.ID) // touch
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	m.sweep()

	_, ok = m.Get(s.ID)
	assert.True(t, ok, "touched session should survive the sweep")
}
