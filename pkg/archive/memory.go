package archive

import (
	"io"
	"slices"
	"sync"

	"github.com/matzehuels/stackbom/pkg/errors"
)

// MemoryStore keeps entries in memory. It is an [EntryWriter]; call Reader
// to read the entries back. Useful for tests and in-process pipelines.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	closed  bool
	failure error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a copy of data under name.
func (m *MemoryStore) Append(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	if m.closed {
		return errors.New(errors.ErrCodeClosed, "memory store is closed")
	}
	if err := errors.ValidateEntryName(name); err != nil {
		return err
	}
	m.entries = append(m.entries, Entry{Name: name, Data: slices.Clone(data)})
	return nil
}

// FailWith makes every later Append return err. Tests use it to simulate
// storage faults.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// Close marks the store closed for appends. Entries stay readable.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Len returns the number of entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Entries returns the entries in append order.
func (m *MemoryStore) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

// Replace overwrites the data of entry i. Tests use it to corrupt archives.
func (m *MemoryStore) Replace(i int, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[i].Data = data
}

// Reader returns a reader over a snapshot of the current entries.
func (m *MemoryStore) Reader() EntryReader {
	return &memoryReader{entries: m.Entries()}
}

type memoryReader struct {
	entries []Entry
	pos     int
}

func (r *memoryReader) Next() (Entry, error) {
	if r.pos >= len(r.entries) {
		return Entry{}, io.EOF
	}
	e := r.entries[r.pos]
	r.pos++
	return e, nil
}

func (r *memoryReader) Close() error { return nil }

var (
	_ EntryWriter = (*MemoryStore)(nil)
	_ EntryReader = (*memoryReader)(nil)
)
