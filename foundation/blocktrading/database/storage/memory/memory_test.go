package memory_test

import (
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/memory"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m, err := memory.New()
	require.NoError(t, err)

	require.ErrorIs(t, m.Write(database.Entry{Number: 2}), database.ErrOutOfOrder)
	require.NoError(t, m.Write(database.Entry{Number: 1}))
	require.NoError(t, m.Write(database.Entry{Number: 2}))

	got, err := m.GetEntry(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Number)

	_, err = m.GetEntry(0)
	require.ErrorIs(t, err, database.ErrNotFound)

	iter := m.ForEach()
	defer iter.Close()

	var count int
	for _, err := iter.Next(); !iter.Done(); _, err = iter.Next() {
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)

	require.NoError(t, m.Reset())
	_, err = m.GetEntry(1)
	require.ErrorIs(t, err, database.ErrNotFound)
}
