package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"video-rag/internal/helper"
	"video-rag/internal/models"
)

// Data is the per-browser-session state: at most one processed video
// with its cached metadata and transcript. The owned similarity index
// lives on disk keyed by ID and is removed through the expiry hook.
type Data struct {
	ID         string
	VideoID    string
	Metadata   models.VideoMetadata
	Transcript string
	lastSeen   time.Time
}

// Manager tracks sessions in memory and expires them after an
// inactivity timeout. The onExpire hook runs for both explicit deletes
// and timeouts so the on-disk index always goes with the session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Data
	ttl      time.Duration
	onExpire func(sessionID string)
}

func NewManager(ttl time.Duration, onExpire func(sessionID string)) *Manager {
	return &Manager{
		sessions: make(map[string]*Data),
		ttl:      ttl,
		onExpire: onExpire,
	}
}

// Create registers a new session with a fresh opaque id.
func (m *Manager) Create() (Data, error) {
	id, err := helper.GenerateUUID()
	if err != nil {
		return Data{}, err
	}
	s := &Data{ID: id, lastSeen: time.Now()}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return *s, nil
}

// Get returns a snapshot of the session and refreshes its inactivity
// clock. Callers get a copy; all mutation goes through the manager so
// reads never race a concurrent SetVideo.
func (m *Manager) Get(id string) (Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Data{}, false
	}
	s.lastSeen = time.Now()
	return *s, true
}

// SetVideo caches the processed video on the session.
func (m *Manager) SetVideo(id, videoID string, metadata models.VideoMetadata, transcript string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.VideoID = videoID
	s.Metadata = metadata
	s.Transcript = transcript
	s.lastSeen = time.Now()
	return true
}

// Delete removes the session and fires the expiry hook. Idempotent.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok && m.onExpire != nil {
		m.onExpire(id)
	}
}

// StartSweeper expires idle sessions in the background until ctx is
// cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)
	var expired []string
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		log.Info().Str("session_id", id).Msg("Session expired, cleaning up")
		if m.onExpire != nil {
			m.onExpire(id)
		}
	}
}
