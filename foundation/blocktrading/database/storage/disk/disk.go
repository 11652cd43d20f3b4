// Package disk implements the ability to read and write journal entries to
// disk, one JSON file per entry.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
)

// Disk represents the serialization implementation for reading and storing
// entries in their own separate files on disk. This implements the
// database.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new entry and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified entry and stores it on disk in a file labeled
// with the entry number.
func (d *Disk) Write(entry database.Entry) error {

	// Marshal the entry for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this entry. An existing file means the entry
	// was already written.
	f, err := os.OpenFile(d.getPath(entry.Number), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: entry %d exists", database.ErrOutOfOrder, entry.Number)
		}
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return f.Sync()
}

// GetEntry searches the journal on disk to locate and return the contents
// of the specified entry by number.
func (d *Disk) GetEntry(num uint64) (database.Entry, error) {

	// Open the entry file for the specified number.
	f, err := os.Open(d.getPath(num))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.Entry{}, fmt.Errorf("%w: %d", database.ErrNotFound, num)
		}
		return database.Entry{}, err
	}
	defer f.Close()

	// Decode the contents of the entry.
	var entry database.Entry
	if err := json.NewDecoder(f).Decode(&entry); err != nil {
		return database.Entry{}, fmt.Errorf("decoding entry %d: %w", num, err)
	}

	return entry, nil
}

// ForEach returns an iterator to walk through all the entries
// starting with entry number 1.
func (d *Disk) ForEach() database.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the journal on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified entry.
func (d *Disk) getPath(num uint64) string {
	name := strconv.FormatUint(num, 10)
	return filepath.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading entries on disk. This implements the database
// Iterator interface.
type diskIterator struct {
	disk    *Disk  // Access to the storage API.
	current uint64 // Current entry number being iterated over.
	eoj     bool   // Represents the iterator is at the end of the journal.
}

// Next retrieves the next entry from disk.
func (di *diskIterator) Next() (database.Entry, error) {
	if di.eoj {
		return database.Entry{}, database.ErrNotFound
	}

	di.current++
	entry, err := di.disk.GetEntry(di.current)
	if errors.Is(err, database.ErrNotFound) {
		di.eoj = true
	}

	return entry, err
}

// Done returns the end of journal value.
func (di *diskIterator) Done() bool {
	return di.eoj
}

// Close has nothing to release since each entry file is closed after it
// is read.
func (di *diskIterator) Close() error {
	return nil
}
