package paste

import (
	"pastebin/internal/logs"
	"pastebin/internal/store"
)

// Service is the store/fetch surface the HTTP layer talks to.
type Service struct {
	store    *store.Store
	generate func() string
	logger   *logs.Logger
}

// NewService wires a store to an identifier generator.
func NewService(st *store.Store, generate func() string, logger *logs.Logger) *Service {
	return &Service{
		store:    st,
		generate: generate,
		logger:   logger,
	}
}

// Store saves content under a freshly generated identifier and returns it.
//
// Identifiers are short and may collide with a live paste, in which case the
// older paste is silently replaced. Store never fails.
func (s *Service) Store(content []byte) string {
	id := s.generate()
	s.store.Put(id, content)

	s.logger.Debug("stored paste", "id", id, "bytes", len(content))
	return id
}

// Fetch returns the paste stored under id. A miss is an expected outcome:
// pastes are evicted continuously once the store is full.
func (s *Service) Fetch(id string) ([]byte, bool) {
	content, ok := s.store.Get(id)
	if !ok {
		s.logger.Debug("paste not found", "id", id)
	}
	return content, ok
}

// Len returns the number of live pastes.
func (s *Service) Len() int {
	return s.store.Len()
}

// Capacity returns the maximum number of live pastes.
func (s *Service) Capacity() int {
	return s.store.Capacity()
}

// Entries returns the live pastes, oldest first.
func (s *Service) Entries() []store.Entry {
	return s.store.Entries()
}
