package pebble_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/pebble"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/stretchr/testify/require"
)

func newMem(t *testing.T) *pebble.Pebble {
	t.Helper()

	p, err := pebble.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, p.Close())
	})

	return p
}

func entry(num uint64) database.Entry {
	return database.Entry{
		Number:    num,
		TimeStamp: 1_700_000_000_000 + num,
		Tx: database.SignedTx{
			Tx: database.Tx{
				ChainID: 1337,
				Nonce:   num,
				Call:    database.CallBuyMultipleBlocks,
				Blocks:  []uint64{num, num + 300},
				Value:   genesis.FromEther(2, 10),
			},
		},
	}
}

func TestWriteAndGet(t *testing.T) {
	p := newMem(t)

	for num := uint64(1); num <= 3; num++ {
		require.NoError(t, p.Write(entry(num)))
	}

	got, err := p.GetEntry(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Number)
	require.Equal(t, []uint64{2, 302}, got.Tx.Blocks)
	require.True(t, got.Tx.Value.Eq(genesis.FromEther(2, 10)))
	require.Equal(t, entry(2).Hash(), got.Hash())

	_, err = p.GetEntry(4)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestWriteOrder(t *testing.T) {
	p := newMem(t)

	require.ErrorIs(t, p.Write(entry(2)), database.ErrOutOfOrder)
	require.NoError(t, p.Write(entry(1)))
	require.ErrorIs(t, p.Write(entry(1)), database.ErrOutOfOrder)
	require.ErrorIs(t, p.Write(entry(3)), database.ErrOutOfOrder)
}

func TestForEachUsesKeyOrder(t *testing.T) {
	p := newMem(t)

	// Past 255 a little-endian key would sort out of order.
	const total = 300
	for num := uint64(1); num <= total; num++ {
		require.NoError(t, p.Write(entry(num)))
	}

	iter := p.ForEach()
	defer iter.Close()

	var want uint64 = 1
	for e, err := iter.Next(); !iter.Done(); e, err = iter.Next() {
		require.NoError(t, err)
		require.Equal(t, want, e.Number)
		want++
	}
	require.Equal(t, uint64(total+1), want)
}

func TestReset(t *testing.T) {
	p := newMem(t)

	require.NoError(t, p.Write(entry(1)))
	require.NoError(t, p.Write(entry(2)))
	require.NoError(t, p.Reset())

	_, err := p.GetEntry(1)
	require.ErrorIs(t, err, database.ErrNotFound)

	iter := p.ForEach()
	defer iter.Close()

	_, err = iter.Next()
	require.ErrorIs(t, err, database.ErrNotFound)
	require.True(t, iter.Done())

	require.NoError(t, p.Write(entry(1)))
}

func TestJournalOverPebble(t *testing.T) {
	p := newMem(t)

	journal, err := database.New(p)
	require.NoError(t, err)

	for num := uint64(1); num <= 3; num++ {
		_, err := journal.Append(entry(num).Tx, num)
		require.NoError(t, err)
	}

	reopened, err := database.New(p)
	require.NoError(t, err)
	require.Equal(t, journal.Latest().Hash(), reopened.Latest().Hash())

	entries, err := reopened.Entries(1, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

// logRecorder captures what the store reports through its logger.
type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logRecorder) Fatalf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

func (l *logRecorder) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestReopenLogsToLogger(t *testing.T) {
	dir := t.TempDir()

	p, err := pebble.New(dir, &logRecorder{})
	require.NoError(t, err)
	for num := uint64(1); num <= 3; num++ {
		require.NoError(t, p.Write(entry(num)))
	}
	require.NoError(t, p.Close())

	log := logRecorder{}
	p, err = pebble.New(dir, &log)
	require.NoError(t, err)
	defer p.Close()

	got, err := p.GetEntry(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.Number)

	require.True(t, log.contains("replayed"), "WAL replay should be reported to the logger")
}
