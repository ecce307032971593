package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const sessionCookie = "xmlsel_session"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// flashStore keeps pending flashes per session.
type flashStore struct {
	mu      sync.Mutex
	pending map[string][]Flash
	roots   map[string]string
}

func newFlashStore() *flashStore {
	return &flashStore{
		pending: make(map[string][]Flash),
		roots:   make(map[string]string),
	}
}

// session returns the caller's session id, issuing a cookie when there is none.
func (s *flashStore) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *flashStore) add(session, category, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[session] = append(s.pending[session], Flash{Category: category, Message: message})
}

// take returns and clears the session's pending flashes.
func (s *flashStore) take(session string) []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending[session]
	delete(s.pending, session)
	return out
}

func (s *flashStore) setRoot(session, root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[session] = root
}

func (s *flashStore) root(session, fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.roots[session]; ok {
		return r
	}
	return fallback
}
