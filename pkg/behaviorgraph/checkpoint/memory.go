package checkpoint

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps checkpoints in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]entry // engineID -> nodeID -> entry
	seq    map[string]int              // engineID -> last sequence
	closed bool
}

type entry struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]entry),
		seq:  make(map[string]int),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(engineID, nodeID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	nodes := m.data[engineID]
	if nodes == nil {
		nodes = make(map[string]entry)
		m.data[engineID] = nodes
	}
	m.seq[engineID]++

	nodes[nodeID] = entry{
		data:      append([]byte(nil), data...),
		sequence:  m.seq[engineID],
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(engineID, nodeID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	e, ok := m.data[engineID][nodeID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

// List implements Store.
func (m *MemoryStore) List(engineID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	nodes := m.data[engineID]
	infos := make([]Info, 0, len(nodes))
	for nodeID, e := range nodes {
		infos = append(infos, Info{
			EngineID:  engineID,
			NodeID:    nodeID,
			Sequence:  e.sequence,
			Timestamp: e.timestamp,
			Size:      int64(len(e.data)),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Sequence < infos[j].Sequence })
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(engineID, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data[engineID], nodeID)
	return nil
}

// DeleteEngine implements Store.
func (m *MemoryStore) DeleteEngine(engineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data, engineID)
	delete(m.seq, engineID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	m.seq = nil
	return nil
}

// Len returns the total number of checkpoints across all engines.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, nodes := range m.data {
		n += len(nodes)
	}
	return n
}
