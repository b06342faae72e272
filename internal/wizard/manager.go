package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"resumepro/internal/drafts"
	"resumepro/resume/templates"
)

// Manager keeps one active session per user.
type Manager struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[string]*Session
}

// NewManager constructs a Manager.
func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps.withDefaults(), sessions: make(map[string]*Session)}
}

// Catalog returns the template catalog sessions draw from.
func (m *Manager) Catalog() *templates.Catalog {
	return m.deps.Catalog
}

// GetOrCreate returns the user's session, loading template and draft on first use.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) *Session {
	if s, ok := m.Lookup(userID); ok {
		return s
	}
	s := newSession(ctx, userID, m.deps)
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[userID]; ok {
		return existing
	}
	m.sessions[userID] = s
	return s
}

// Lookup returns the user's session if one is active.
func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// SelectTemplate records the user's template choice and applies it to an active session.
func (m *Manager) SelectTemplate(ctx context.Context, userID, templateID string) (templates.Descriptor, error) {
	tpl, err := m.deps.Catalog.Get(templateID)
	if err != nil {
		return templates.Descriptor{}, err
	}
	raw, err := json.Marshal(tpl)
	if err != nil {
		return templates.Descriptor{}, fmt.Errorf("encode template: %w", err)
	}
	if err := m.deps.Drafts.Put(ctx, userID, drafts.KeySelectedTemplate, string(raw)); err != nil {
		return templates.Descriptor{}, fmt.Errorf("save template choice: %w", err)
	}
	if s, ok := m.Lookup(userID); ok {
		s.SetTemplate(tpl)
	}
	return tpl, nil
}

// Discard drops the user's session and stored draft so the next session starts over.
func (m *Manager) Discard(ctx context.Context, userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.discard()
	}
	if err := m.deps.Drafts.Delete(ctx, userID, drafts.KeyResumeDraft); err != nil && !errors.Is(err, drafts.ErrNotFound) {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Release flushes and forgets the user's session, keeping the stored draft.
func (m *Manager) Release(ctx context.Context, userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close(ctx)
}

// Shutdown flushes every pending autosave.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
