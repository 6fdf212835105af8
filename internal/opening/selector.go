// Package opening picks greeting messages for new sessions, rotating
// through the list without back-to-back repeats.
package opening

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"
)

// ErrNoMessages is returned when the selector has nothing to serve.
var ErrNoMessages = errors.New("no opening messages defined")

// DefaultMessages is the built-in greeting list.
var DefaultMessages = []string{
	"Hello there! It's great to connect with you. How can I help you today?",
	"Hi! I'm here and ready to chat. What's on your mind?",
	"Welcome! I'm looking forward to our conversation. What would you like to talk about?",
	"Hey! So glad to see you. Is there anything specific I can assist you with right now?",
	"Greetings! It's a pleasure to meet you. How can I make your day a little brighter?",
	"Good to see you! Let's explore your thoughts. What shall we begin with?",
}

// State is the rotation state of one session. Last is -1 before the first
// message is served.
type State struct {
	Used []int `json:"used"`
	Last int   `json:"last"`
}

func freshState() State {
	return State{Last: -1}
}

// StateStore keeps per-session rotation state. Load reports false when the
// session is unknown.
type StateStore interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, sessionID string, st State) error
	Delete(ctx context.Context, sessionID string) error
}

const lockStripes = 64

// Selector serves opening messages. Operations on one session are
// serialized through a fixed set of striped locks, so lock memory stays
// bounded however many sessions come and go.
type Selector struct {
	messages []string
	states   StateStore
	locks    [lockStripes]sync.Mutex
}

func NewSelector(messages []string, states StateStore) *Selector {
	return &Selector{messages: messages, states: states}
}

func (s *Selector) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Next returns the lowest unused message of the session's current cycle.
// Once every message has been served a new cycle starts with the first
// message other than the one served last.
func (s *Selector) Next(ctx context.Context, sessionID string) (string, error) {
	if len(s.messages) == 0 {
		return "", ErrNoMessages
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	st, ok, err := s.states.Load(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load opening state: %w", err)
	}
	if !ok {
		st = freshState()
	}

	st = advance(len(s.messages), st)
	if err := s.states.Save(ctx, sessionID, st); err != nil {
		return "", fmt.Errorf("save opening state: %w", err)
	}
	return s.messages[st.Last], nil
}

func advance(n int, st State) State {
	for i := 0; i < n; i++ {
		if !slices.Contains(st.Used, i) {
			return State{Used: append(st.Used, i), Last: i}
		}
	}
	idx := 0
	if n > 1 && st.Last == 0 {
		idx = 1
	}
	return State{Used: []int{idx}, Last: idx}
}

// Reset returns the session to a fresh cycle starting at the first message.
func (s *Selector) Reset(ctx context.Context, sessionID string) error {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.states.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete opening state: %w", err)
	}
	return nil
}
