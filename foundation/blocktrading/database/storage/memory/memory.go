// Package memory implements the ability to read and write journal entries
// to memory using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
)

// Memory represents the serialization implementation for reading and storing
// entries in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu      sync.RWMutex
	entries []database.Entry
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified entry and stores it in memory.
func (m *Memory) Write(entry database.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(m.entries))+1 != entry.Number {
		return fmt.Errorf("%w: got %d, exp %d", database.ErrOutOfOrder, entry.Number, len(m.entries)+1)
	}

	m.entries = append(m.entries, entry)

	return nil
}

// GetEntry returns the entry with the specified number.
func (m *Memory) GetEntry(num uint64) (database.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num == 0 || num > uint64(len(m.entries)) {
		return database.Entry{}, fmt.Errorf("%w: %d", database.ErrNotFound, num)
	}

	return m.entries[num-1], nil
}

// ForEach returns an iterator to walk through all the entries
// starting with entry number 1.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the journal.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the entries in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Last entry number handed out.
	eoj     bool    // Represents the iterator is at the end of the journal.
}

// Next retrieves the next entry.
func (mi *memoryIterator) Next() (database.Entry, error) {
	if mi.eoj {
		return database.Entry{}, database.ErrNotFound
	}

	mi.current++
	entry, err := mi.storage.GetEntry(mi.current)
	if err != nil {
		mi.eoj = true
	}

	return entry, err
}

// Done returns the end of journal value.
func (mi *memoryIterator) Done() bool {
	return mi.eoj
}

// Close has nothing to release.
func (mi *memoryIterator) Close() error {
	return nil
}
