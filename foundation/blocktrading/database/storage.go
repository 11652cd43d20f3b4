package database

// Storage interface represents the behavior required to be implemented by any
// package providing support for reading and writing the journal.
type Storage interface {
	Write(entry Entry) error
	GetEntry(num uint64) (Entry, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the journal.
type Iterator interface {
	Next() (Entry, error)
	Done() bool
	Close() error
}
