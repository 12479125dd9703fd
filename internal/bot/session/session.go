// Package session keeps the recent conversation turns per user in memory.
// History is lost on restart; the persistent chat log lives in the messages
// repository.
package session

import (
	"sync"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

const DefaultLimit = 20

// Turn is one entry of a conversation history.
type Turn struct {
	Role models.Role
	Text string
}

type Store struct {
	mu      sync.Mutex
	limit   int
	history map[int64][]Turn
}

// NewStore keeps at most limit turns per user (DefaultLimit when limit <= 0).
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{limit: limit, history: map[int64][]Turn{}}
}

// History returns a copy of the user's turns, oldest first.
func (s *Store) History(userID int64) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history[userID]...)
}

// Append adds turns and trims the oldest ones beyond the limit.
func (s *Store) Append(userID int64, turns ...Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[userID], turns...)
	if len(h) > s.limit {
		h = append([]Turn(nil), h[len(h)-s.limit:]...)
	}
	s.history[userID] = h
}

func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, userID)
}
