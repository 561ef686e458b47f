package repository

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/okian/fishery/internal/domain/model"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: Name ASC, then Id ASC (deterministic). In-order traversal
// yields exactly what List must return, so reads never sort.

// treap node
type node struct {
	rec   model.FishRecord
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, rec model.FishRecord, prio uint64) *node {
	if n == nil {
		return &node{rec: rec, prio: prio, size: 1}
	}
	if model.Less(rec, n.rec) {
		n.left = insert(n.left, rec, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, rec, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// deleteNode removes the node holding key; key must carry the stored Name.
func deleteNode(n *node, key model.FishRecord) *node {
	if n == nil {
		return nil
	}
	if key.ID == n.rec.ID && key.Name == n.rec.Name {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, key)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, key)
		}
	} else if model.Less(key, n.rec) {
		n.left = deleteNode(n.left, key)
	} else {
		n.right = deleteNode(n.right, key)
	}
	fix(n)
	return n
}

// collectAll appends all records in Name order.
func collectAll(n *node, out *[]model.FishRecord) {
	if n == nil {
		return
	}
	collectAll(n.left, out)
	*out = append(*out, n.rec)
	collectAll(n.right, out)
}

// MemoryStore keeps fish records in process memory. It stands in for the
// managed database during local development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	root   *node
	byID   map[int64]model.FishRecord
	nextID int64
	closed bool
}

// NewMemoryStore constructs an empty store, preloaded with WithSeed records.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := applyOptions(opts)
	s := &MemoryStore{
		byID:   make(map[int64]model.FishRecord),
		nextID: 1,
	}
	for _, rec := range o.seed {
		s.insertLocked(rec)
	}
	return s
}

func (s *MemoryStore) insertLocked(rec model.FishRecord) {
	rec.ID = s.nextID
	s.nextID++
	s.byID[rec.ID] = rec
	s.root = insert(s.root, rec, rand.Uint64())
}

// List returns all records ordered by Name, then Id.
func (s *MemoryStore) List(_ context.Context) ([]model.FishRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, closedError("list")
	}

	out := make([]model.FishRecord, 0, nsize(s.root))
	collectAll(s.root, &out)
	return out, nil
}

// Create stores rec under a new Id in O(log n) expected time.
func (s *MemoryStore) Create(_ context.Context, rec model.FishRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedError("create")
	}

	s.insertLocked(rec)
	return nil
}

// Update replaces the record with rec.ID. Unknown ids are ignored.
func (s *MemoryStore) Update(_ context.Context, rec model.FishRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedError("update")
	}

	old, ok := s.byID[rec.ID]
	if !ok {
		return nil
	}
	// The treap is keyed by Name, so a rename has to move the node.
	s.root = deleteNode(s.root, old)
	s.byID[rec.ID] = rec
	s.root = insert(s.root, rec, rand.Uint64())
	return nil
}

// Delete removes the record with id. Unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return closedError("delete")
	}

	old, ok := s.byID[id]
	if !ok {
		return nil
	}
	s.root = deleteNode(s.root, old)
	delete(s.byID, id)
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Ping fails only once the store is closed.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return closedError("ping")
	}
	return nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
