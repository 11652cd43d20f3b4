package handlers_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/blocktrading/app/services/node/handlers"
	"github.com/ardanlabs/blocktrading/business/web/errs"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/memory"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/state"
	"github.com/ardanlabs/blocktrading/foundation/events"
	"github.com/ardanlabs/blocktrading/foundation/logger"
	"github.com/ardanlabs/blocktrading/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var keys = map[string]string{
	"admin": "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0",
	"pavel": "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959",
	"bill":  "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93",
}

type client struct {
	key   *ecdsa.PrivateKey
	id    accounts.AccountID
	nonce uint64
}

type node struct {
	mux     http.Handler
	clients map[string]*client
}

func newNode(t *testing.T) *node {
	t.Helper()

	dir := t.TempDir()
	clients := make(map[string]*client)

	gen := genesis.Default()
	for name, hexKey := range keys {
		pk, err := crypto.HexToECDSA(hexKey)
		require.NoError(t, err)
		require.NoError(t, crypto.SaveECDSA(filepath.Join(dir, name+".ecdsa"), pk))

		id := accounts.PublicKeyToAccountID(pk.PublicKey)
		clients[name] = &client{key: pk, id: id}
		gen.Balances[string(id)] = genesis.FromEther(1, 1)
	}

	ns, err := nameservice.New(dir)
	require.NoError(t, err)

	storage, err := memory.New()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		AccountID: clients["admin"].id,
		Genesis:   gen,
		Storage:   storage,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Shutdown() })

	evts := events.New()
	t.Cleanup(evts.Shutdown)

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      logger.NewNop(),
		State:    st,
		NS:       ns,
		Evts:     evts,
	})

	return &node{mux: mux, clients: clients}
}

func (n *node) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	n.mux.ServeHTTP(w, r)

	return w
}

func (n *node) submit(t *testing.T, name string, tx database.Tx) *httptest.ResponseRecorder {
	t.Helper()

	c := n.clients[name]
	c.nonce++
	tx.ChainID = 1337
	tx.Nonce = c.nonce

	signedTx, err := tx.Sign(c.key)
	require.NoError(t, err)

	body, err := json.Marshal(signedTx)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/v1/tx/submit", bytes.NewReader(body))
	w := httptest.NewRecorder()
	n.mux.ServeHTTP(w, r)

	// Rejected calls don't consume the nonce.
	if w.Code != http.StatusOK {
		c.nonce--
	}

	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errs.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestRegistryInfo(t *testing.T) {
	n := newNode(t)

	w := n.get(t, "/v1/registry")
	require.Equal(t, http.StatusOK, w.Code)

	var reg struct {
		AdminOwner  accounts.AccountID `json:"admin_owner"`
		AdminName   string             `json:"admin_name"`
		MintPrice   *uint256.Int       `json:"mint_price"`
		LatestEntry uint64             `json:"latest_entry"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.Equal(t, n.clients["admin"].id, reg.AdminOwner)
	require.Equal(t, "admin", reg.AdminName)
	require.Equal(t, genesis.FromEther(1, 10), reg.MintPrice)
	require.Zero(t, reg.LatestEntry)
}

func TestSubmitAndRead(t *testing.T) {
	n := newNode(t)
	price := genesis.FromEther(1, 10)

	w := n.submit(t, "pavel", database.Tx{Call: database.CallBuyBlock, Block: 7, Value: price})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Entry struct {
			Number uint64 `json:"number"`
			Tx     struct {
				FromName string `json:"from_name"`
			} `json:"tx"`
		} `json:"entry"`
		Paid *uint256.Int `json:"paid"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, uint64(1), res.Entry.Number)
	require.Equal(t, "pavel", res.Entry.Tx.FromName)
	require.Equal(t, price, res.Paid)

	w = n.get(t, "/v1/blocks/7")
	require.Equal(t, http.StatusOK, w.Code)

	var blk struct {
		Owned bool   `json:"owned"`
		Name  string `json:"name"`
		Color uint8  `json:"color"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blk))
	require.True(t, blk.Owned)
	require.Equal(t, "pavel", blk.Name)
	require.Equal(t, uint8(1), blk.Color)

	w = n.get(t, "/v1/blocks/owner/pavel")
	require.Equal(t, http.StatusOK, w.Code)

	var owned struct {
		Blocks []uint64 `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &owned))
	require.Equal(t, []uint64{7}, owned.Blocks)

	w = n.get(t, "/v1/journal/list/1/latest")
	require.Equal(t, http.StatusOK, w.Code)

	var ents []json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ents))
	require.Len(t, ents, 1)
}

func TestSubmitStatusCodes(t *testing.T) {
	n := newNode(t)
	price := genesis.FromEther(1, 10)

	w := n.submit(t, "pavel", database.Tx{Call: database.CallBuyBlock, Block: 3, Value: price})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tt := []struct {
		name   string
		user   string
		tx     database.Tx
		status int
	}{
		{
			name:   "underpaid mint",
			user:   "bill",
			tx:     database.Tx{Call: database.CallBuyBlock, Block: 4, Value: uint256.NewInt(1)},
			status: http.StatusPaymentRequired,
		},
		{
			name:   "mint owned block",
			user:   "bill",
			tx:     database.Tx{Call: database.CallBuyBlock, Block: 3, Value: price},
			status: http.StatusConflict,
		},
		{
			name:   "color someone else's block",
			user:   "bill",
			tx:     database.Tx{Call: database.CallSetColor, Block: 3, Color: 9},
			status: http.StatusForbidden,
		},
		{
			name:   "buy unlisted block",
			user:   "bill",
			tx:     database.Tx{Call: database.CallBuyFromUser, Block: 3, Value: price},
			status: http.StatusConflict,
		},
		{
			name:   "mint price by non admin",
			user:   "pavel",
			tx:     database.Tx{Call: database.CallSetMintPrice, Price: uint256.NewInt(5)},
			status: http.StatusForbidden,
		},
		{
			name:   "duplicate multi buy",
			user:   "pavel",
			tx:     database.Tx{Call: database.CallBuyMultipleBlocks, Blocks: []uint64{5, 5}, Value: genesis.FromEther(2, 10)},
			status: http.StatusBadRequest,
		},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			w := n.submit(t, tst.user, tst.tx)
			require.Equal(t, tst.status, w.Code, w.Body.String())
			require.NotEmpty(t, errorOf(t, w))
		})
	}

	w = n.get(t, "/v1/registry")
	require.Equal(t, http.StatusOK, w.Code)

	var reg struct {
		LatestEntry uint64 `json:"latest_entry"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.Equal(t, uint64(1), reg.LatestEntry, "rejected calls must not be journaled")
}

func TestBadRequests(t *testing.T) {
	n := newNode(t)

	w := n.get(t, "/v1/blocks/range/10/5")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = n.get(t, "/v1/blocks/abc")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = n.get(t, "/v1/journal/list/latest/latest")
	require.Equal(t, http.StatusNoContent, w.Code)

	r := httptest.NewRequest(http.MethodPost, "/v1/tx/submit", bytes.NewReader([]byte(`{"chain_id":1337}`)))
	rw := httptest.NewRecorder()
	n.mux.ServeHTTP(rw, r)
	require.Equal(t, http.StatusBadRequest, rw.Code)

	var resp errs.Response
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	require.Contains(t, resp.Fields, "nonce")
}

func TestRange(t *testing.T) {
	n := newNode(t)

	w := n.get(t, "/v1/blocks/range/0/4")
	require.Equal(t, http.StatusOK, w.Code)

	var blks []struct {
		Index uint64 `json:"index"`
		Owned bool   `json:"owned"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blks))
	require.Len(t, blks, 5)
	for i, b := range blks {
		require.Equal(t, uint64(i), b.Index)
		require.False(t, b.Owned)
	}
}
