package disk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/disk"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/stretchr/testify/require"
)

func entry(num uint64) database.Entry {
	return database.Entry{
		Number:    num,
		TimeStamp: 1_700_000_000_000 + num,
		Tx: database.SignedTx{
			Tx: database.Tx{
				ChainID: 1337,
				Nonce:   num,
				Call:    database.CallSellBlock,
				Block:   num,
				Price:   genesis.FromEther(num, 10),
			},
		},
	}
}

func TestWriteAndGet(t *testing.T) {
	dir := t.TempDir()

	d, err := disk.New(dir)
	require.NoError(t, err)

	require.NoError(t, d.Write(entry(1)))
	require.NoError(t, d.Write(entry(2)))
	require.FileExists(t, filepath.Join(dir, "2.json"))

	got, err := d.GetEntry(2)
	require.NoError(t, err)
	require.Equal(t, entry(2).Hash(), got.Hash())
	require.True(t, got.Tx.Price.Eq(genesis.FromEther(2, 10)))

	_, err = d.GetEntry(3)
	require.ErrorIs(t, err, database.ErrNotFound)

	require.ErrorIs(t, d.Write(entry(2)), database.ErrOutOfOrder)
}

func TestForEach(t *testing.T) {
	d, err := disk.New(t.TempDir())
	require.NoError(t, err)

	for num := uint64(1); num <= 12; num++ {
		require.NoError(t, d.Write(entry(num)))
	}

	iter := d.ForEach()
	defer iter.Close()

	var want uint64 = 1
	for e, err := iter.Next(); !iter.Done(); e, err = iter.Next() {
		require.NoError(t, err)
		require.Equal(t, want, e.Number)
		want++
	}
	require.Equal(t, uint64(13), want)
}

func TestCorruptEntry(t *testing.T) {
	dir := t.TempDir()

	d, err := disk.New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.json"), []byte("{"), 0600))

	_, err = database.New(d)
	require.Error(t, err)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()

	d, err := disk.New(dir)
	require.NoError(t, err)
	require.NoError(t, d.Write(entry(1)))
	require.NoError(t, d.Reset())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, files)
}
