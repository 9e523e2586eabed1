// Package store provides the conversation state backends. Both are scoped
// to the process lifetime; conversations are never expired, which is an
// accepted limitation for this workload.
package store

import (
	"sync"

	"github.com/zecobranca/cobranca-bot/internal/model"
)

type memoryStore struct {
	mu     sync.RWMutex
	states map[string]model.ConversationState
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{
		states: make(map[string]model.ConversationState),
	}
}

func (s *memoryStore) Load(userID string) (*model.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, model.ErrorConversationNotFound
	}
	return &state, nil
}

func (s *memoryStore) Save(state *model.ConversationState) (*model.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.UserID] = *state
	return state, nil
}

func (s *memoryStore) Close() error {
	return nil
}
