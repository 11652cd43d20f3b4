// Package pebble implements the ability to read and write journal entries
// to a pebble key/value store. Entries are keyed by their big-endian number
// so the natural key order is the journal order, and values are encoded
// with deterministic CBOR.
package pebble

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/fxamacker/cbor/v2"
)

// entryPrefix namespaces the journal keys inside the store.
var entryPrefix = []byte("entry/")

// Pebble represents the serialization implementation for reading and storing
// entries in a pebble database. This implements the database.Storage
// interface.
type Pebble struct {
	db  *pebble.DB
	enc cbor.EncMode
	dec cbor.DecMode
}

// New opens or creates the pebble database at the specified path. The
// store reports WAL and compaction activity through log.
func New(dbPath string, log pebble.Logger) (*Pebble, error) {
	return open(dbPath, &pebble.Options{Logger: log})
}

// NewMem opens a pebble database that lives in memory.
func NewMem() (*Pebble, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()})
}

func open(dbPath string, options *pebble.Options) (*Pebble, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}

	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}

	db, err := pebble.Open(dbPath, options)
	if err != nil {
		return nil, fmt.Errorf("opening pebble at %q: %w", dbPath, err)
	}

	p := Pebble{
		db:  db,
		enc: enc,
		dec: dec,
	}

	return &p, nil
}

// Close closes the pebble database.
func (p *Pebble) Close() error {
	return p.db.Close()
}

// Write encodes the entry and stores it under its number. Entries must be
// written in order without gaps.
func (p *Pebble) Write(entry database.Entry) error {
	if entry.Number == 0 {
		return fmt.Errorf("%w: entry number zero", database.ErrOutOfOrder)
	}

	exists, err := p.has(entry.Number)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: entry %d exists", database.ErrOutOfOrder, entry.Number)
	}

	if entry.Number > 1 {
		exists, err := p.has(entry.Number - 1)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: entry %d is missing", database.ErrOutOfOrder, entry.Number-1)
		}
	}

	data, err := p.enc.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry %d: %w", entry.Number, err)
	}

	return p.db.Set(entryKey(entry.Number), data, pebble.Sync)
}

// GetEntry returns the entry with the specified number.
func (p *Pebble) GetEntry(num uint64) (database.Entry, error) {
	data, closer, err := p.db.Get(entryKey(num))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return database.Entry{}, fmt.Errorf("%w: %d", database.ErrNotFound, num)
		}
		return database.Entry{}, err
	}
	defer closer.Close()

	var entry database.Entry
	if err := p.dec.Unmarshal(data, &entry); err != nil {
		return database.Entry{}, fmt.Errorf("decoding entry %d: %w", num, err)
	}

	return entry, nil
}

// ForEach returns an iterator to walk through all the entries in key order.
// The iterator must be closed.
func (p *Pebble) ForEach() database.Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: entryPrefix,
		UpperBound: prefixEnd(entryPrefix),
	})

	return &pebbleIterator{
		iter: iter,
		dec:  p.dec,
		err:  err,
	}
}

// Reset deletes every entry.
func (p *Pebble) Reset() error {
	return p.db.DeleteRange(entryPrefix, prefixEnd(entryPrefix), pebble.Sync)
}

// has reports whether an entry with the number is stored.
func (p *Pebble) has(num uint64) (bool, error) {
	_, closer, err := p.db.Get(entryKey(num))
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	closer.Close()
	return true, nil
}

// =============================================================================

// pebbleIterator walks the entries using a pebble iterator. This implements
// the database Iterator interface.
type pebbleIterator struct {
	iter       *pebble.Iterator
	dec        cbor.DecMode
	err        error
	positioned bool
	eoj        bool
}

// Next decodes the entry at the next key.
func (pi *pebbleIterator) Next() (database.Entry, error) {
	if pi.err != nil {
		return database.Entry{}, pi.err
	}

	if pi.eoj {
		return database.Entry{}, database.ErrNotFound
	}

	var valid bool
	switch pi.positioned {
	case false:
		pi.positioned = true
		valid = pi.iter.First()
	default:
		valid = pi.iter.Next()
	}

	if !valid {
		if err := pi.iter.Error(); err != nil {
			return database.Entry{}, err
		}
		pi.eoj = true
		return database.Entry{}, database.ErrNotFound
	}

	var entry database.Entry
	if err := pi.dec.Unmarshal(pi.iter.Value(), &entry); err != nil {
		return database.Entry{}, fmt.Errorf("decoding key %x: %w", pi.iter.Key(), err)
	}

	return entry, nil
}

// Done returns the end of journal value.
func (pi *pebbleIterator) Done() bool {
	return pi.eoj
}

// Close releases the pebble iterator.
func (pi *pebbleIterator) Close() error {
	if pi.iter == nil {
		return nil
	}

	err := pi.iter.Close()
	pi.iter = nil

	return err
}

// =============================================================================

// entryKey forms the key for the specified entry number.
func entryKey(num uint64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], num)

	return key
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)

	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	return nil
}
