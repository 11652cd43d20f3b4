// Package database handles the lower level support for maintaining the
// journal of accepted registry calls.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// Journal manages the ordered record of every transaction the registry has
// accepted. Replaying the journal from genesis rebuilds the registry.
type Journal struct {
	mu      sync.RWMutex
	storage Storage
	latest  Entry
}

// New constructs a journal over the storage. The stored entries are walked
// to validate the chain and locate the latest entry.
func New(storage Storage) (*Journal, error) {
	j := Journal{
		storage: storage,
	}

	if err := j.ForEach(func(Entry) error { return nil }); err != nil {
		return nil, err
	}

	return &j, nil
}

// ForEach calls fn for every entry in order starting with entry 1. The walk
// stops at the first error.
func (j *Journal) ForEach(fn func(entry Entry) error) error {
	iter := j.storage.ForEach()
	defer iter.Close()

	var prev Entry
	for entry, err := iter.Next(); !iter.Done(); entry, err = iter.Next() {
		if err != nil {
			return err
		}

		if err := entry.ValidateFollows(prev); err != nil {
			return err
		}

		if err := fn(entry); err != nil {
			return fmt.Errorf("entry %d: %w", entry.Number, err)
		}

		prev = entry
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.latest = prev

	return nil
}

// Append records the signed transaction as the next entry.
func (j *Journal) Append(tx SignedTx, timeStamp uint64) (Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := Entry{
		Number:    j.latest.Number + 1,
		PrevHash:  j.latest.Hash(),
		TimeStamp: timeStamp,
		Tx:        tx,
	}

	if err := j.storage.Write(entry); err != nil {
		return Entry{}, fmt.Errorf("writing entry %d: %w", entry.Number, err)
	}

	j.latest = entry

	return entry, nil
}

// Latest returns the most recent entry, the zero entry when the journal
// is empty.
func (j *Journal) Latest() Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.latest
}

// Entries returns the entries from through to inclusive. Numbers past the
// latest entry are ignored.
func (j *Journal) Entries(from uint64, to uint64) ([]Entry, error) {
	latest := j.Latest().Number

	if from == 0 {
		from = 1
	}
	if to > latest {
		to = latest
	}

	var entries []Entry
	for num := from; num <= to; num++ {
		entry, err := j.storage.GetEntry(num)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				break
			}
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Reset removes every entry.
func (j *Journal) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.storage.Reset(); err != nil {
		return err
	}

	j.latest = Entry{}

	return nil
}

// Close closes the underlying storage.
func (j *Journal) Close() error {
	return j.storage.Close()
}
