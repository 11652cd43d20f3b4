package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	dir := t.TempDir()

	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	require.NoError(t, err)
	require.NoError(t, crypto.SaveECDSA(filepath.Join(dir, "pavel.ecdsa"), pk))

	ns, err := nameservice.New(dir)
	require.NoError(t, err)

	const pavel accounts.AccountID = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"

	require.Equal(t, "pavel", ns.Lookup(pavel))
	require.Equal(t, "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", ns.Lookup("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"))

	id, err := ns.Resolve("pavel")
	require.NoError(t, err)
	require.Equal(t, pavel, id)

	id, err = ns.Resolve("0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eba4")
	require.NoError(t, err)
	require.Equal(t, pavel, id)

	_, err = ns.Resolve("kennedy")
	require.ErrorIs(t, err, accounts.ErrInvalidAccount)

	require.Len(t, ns.Copy(), 1)
}
