package kv

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// Memory is an in-process Client with TTL bookkeeping. Batches apply under a
// single lock, so a batch is atomic with respect to concurrent readers.
type Memory struct {
	mu   sync.Mutex
	data map[string]entry

	// Now is the clock; overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewMemory builds an empty in-memory client.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]entry), Now: time.Now}
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// live reports whether the key exists and has not lapsed, pruning it lazily
// when it has. Callers hold the lock.
func (m *Memory) live(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{value: value}
	return nil
}

func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live(key); ok {
		e.expiresAt = m.now().Add(ttl)
		m.data[key] = e
	}
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(key)
	return ok, nil
}

// Get returns the live value for a key. Not part of the Client contract;
// tests use it to inspect payloads.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	return e.value, ok
}

// TTL returns the remaining lifetime for a key, or false when the key is
// absent or has no expiry. Test helper.
func (m *Memory) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok || e.expiresAt.IsZero() {
		return 0, false
	}
	return e.expiresAt.Sub(m.now()), true
}

func (m *Memory) Batch() Batch {
	return &memoryBatch{m: m}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry)
	return nil
}

type memoryOp struct {
	verb  string
	key   string
	value string
	ttl   time.Duration
}

type memoryBatch struct {
	m   *Memory
	ops []memoryOp
}

func (b *memoryBatch) Set(key, value string) {
	b.ops = append(b.ops, memoryOp{verb: "set", key: key, value: value})
}

func (b *memoryBatch) Del(key string) {
	b.ops = append(b.ops, memoryOp{verb: "del", key: key})
}

func (b *memoryBatch) Expire(key string, ttl time.Duration) {
	b.ops = append(b.ops, memoryOp{verb: "expire", key: key, ttl: ttl})
}

func (b *memoryBatch) Exists(key string) {
	b.ops = append(b.ops, memoryOp{verb: "exists", key: key})
}

func (b *memoryBatch) Exec(ctx context.Context) ([]Result, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	results := make([]Result, len(b.ops))
	for i, op := range b.ops {
		switch op.verb {
		case "set":
			b.m.data[op.key] = entry{value: op.value}
		case "del":
			delete(b.m.data, op.key)
		case "expire":
			if e, ok := b.m.live(op.key); ok {
				e.expiresAt = b.m.now().Add(op.ttl)
				b.m.data[op.key] = e
				results[i] = Result{Val: 1}
			}
		case "exists":
			if _, ok := b.m.live(op.key); ok {
				results[i] = Result{Val: 1}
			}
		}
	}
	b.ops = nil
	return results, nil
}
