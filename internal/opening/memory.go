package opening

import (
	"container/list"
	"context"
	"slices"
	"sync"
)

// DefaultCapacity bounds MemoryStateStore when no capacity is given.
const DefaultCapacity = 10000

type lruEntry struct {
	sessionID string
	state     State
}

// MemoryStateStore is an in-process LRU of session states. The least
// recently used session is evicted once capacity is reached.
type MemoryStateStore struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

func NewMemoryStateStore(capacity int) *MemoryStateStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStateStore{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (m *MemoryStateStore) Load(_ context.Context, sessionID string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[sessionID]
	if !ok {
		return State{}, false, nil
	}
	m.order.MoveToFront(el)
	st := el.Value.(*lruEntry).state
	st.Used = slices.Clone(st.Used)
	return st, true, nil
}

func (m *MemoryStateStore) Save(_ context.Context, sessionID string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st.Used = slices.Clone(st.Used)
	if el, ok := m.items[sessionID]; ok {
		el.Value.(*lruEntry).state = st
		m.order.MoveToFront(el)
		return nil
	}

	m.items[sessionID] = m.order.PushFront(&lruEntry{sessionID: sessionID, state: st})
	for m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*lruEntry).sessionID)
	}
	return nil
}

func (m *MemoryStateStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[sessionID]; ok {
		m.order.Remove(el)
		delete(m.items, sessionID)
	}
	return nil
}

// Len reports the number of tracked sessions.
func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

var _ StateStore = (*MemoryStateStore)(nil)
