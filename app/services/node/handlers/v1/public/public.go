// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/blocktrading/business/web/errs"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/registry"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/state"
	"github.com/ardanlabs/blocktrading/foundation/events"
	"github.com/ardanlabs/blocktrading/foundation/nameservice"
	"github.com/ardanlabs/blocktrading/foundation/validate"
	"github.com/ardanlabs/blocktrading/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of registry endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the registry.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the registry or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction applies a signed registry call from a wallet.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a signed transaction. Decode
	// also checks the fields and the signature.
	var signedTx database.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "from:nonce:call", signedTx, "block", signedTx.Block, "value", signedTx.Amount())

	res, err := h.State.SubmitTransaction(signedTx)
	if err != nil {
		return toTrusted(err)
	}

	return web.Respond(ctx, w, toResult(res, h.NS), http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Registry returns the deployment level information of the registry.
func (h Handlers) Registry(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	latest := h.State.RetrieveLatestEntry()
	admin := h.State.QueryAdminOwner()

	reg := registryInfo{
		ChainID:     gen.ChainID,
		AdminOwner:  admin,
		AdminName:   h.NS.Lookup(admin),
		MintPrice:   h.State.QueryMintPrice(),
		Balance:     h.State.QueryRegistryBalance(),
		MaxBlocks:   gen.MaxBlocks,
		MaxRange:    gen.MaxRange,
		LatestEntry: latest.Number,
		LatestHash:  latest.Hash(),
	}

	return web.Respond(ctx, w, reg, http.StatusOK)
}

// Block returns the state of a single block.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := paramUint(r, "index")
	if err != nil {
		return err
	}

	info := h.State.QueryBlock(index)

	return web.Respond(ctx, w, toBlock(info, h.NS), http.StatusOK)
}

// BlocksRange returns the state of every block in the inclusive range.
func (h Handlers) BlocksRange(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	start, err := paramUint(r, "start")
	if err != nil {
		return err
	}

	end, err := paramUint(r, "end")
	if err != nil {
		return err
	}

	infos, err := h.State.QueryBlocks(start, end)
	if err != nil {
		return toTrusted(err)
	}

	blks := make([]block, len(infos))
	for i, info := range infos {
		blks[i] = toBlock(info, h.NS)
	}

	return web.Respond(ctx, w, blks, http.StatusOK)
}

// BlocksByOwner returns the indices of the blocks an account holds.
func (h Handlers) BlocksByOwner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	owned := ownedBlocks{
		Account: accountID,
		Name:    h.NS.Lookup(accountID),
		Blocks:  h.State.QueryBlocksByOwner(accountID),
	}
	if owned.Blocks == nil {
		owned.Blocks = []uint64{}
	}

	return web.Respond(ctx, w, owned, http.StatusOK)
}

// Accounts returns the current balances for all users.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var infos map[accounts.AccountID]accounts.Info
	switch account {
	case "":
		infos = h.State.RetrieveAccounts()

	default:
		accountID, err := h.NS.Resolve(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		infos = map[accounts.AccountID]accounts.Info{
			accountID: h.State.QueryAccount(accountID),
		}
	}

	acts := make([]info, 0, len(infos))
	for accountID, actInfo := range infos {
		act := info{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: actInfo.Balance,
			Nonce:   actInfo.Nonce,
		}
		acts = append(acts, act)
	}

	ai := actInfo{
		LatestEntry: h.State.RetrieveLatestEntry().Number,
		Accounts:    acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Journal returns the journal entries in the inclusive range. The word
// latest can be used for either bound.
func (h Handlers) Journal(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := paramEntry(r, "from")
	if err != nil {
		return err
	}

	to, err := paramEntry(r, "to")
	if err != nil {
		return err
	}

	if from > to {
		return errs.NewTrusted(errors.New("from is greater than to"), http.StatusBadRequest)
	}

	dbEntries, err := h.State.RetrieveEntries(from, to)
	if err != nil {
		return err
	}

	if len(dbEntries) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	ents := make([]entry, len(dbEntries))
	for i, dbEntry := range dbEntries {
		ents[i] = toEntry(dbEntry, h.NS)
	}

	return web.Respond(ctx, w, ents, http.StatusOK)
}

// =============================================================================

// toTrusted maps a failed registry call to the status the client sees.
// Journal failures stay untrusted and surface as internal errors.
func toTrusted(err error) error {
	if errors.Is(err, state.ErrJournal) {
		return err
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, registry.ErrInsufficientPayment),
		errors.Is(err, accounts.ErrInsufficientFunds):
		status = http.StatusPaymentRequired

	case errors.Is(err, registry.ErrNotBlockOwner),
		errors.Is(err, registry.ErrUnauthorized):
		status = http.StatusForbidden

	case errors.Is(err, registry.ErrBlockOwned),
		errors.Is(err, registry.ErrNotForSale):
		status = http.StatusConflict
	}

	return errs.NewTrusted(err, status)
}

// paramUint parses a numeric route parameter.
func paramUint(r *http.Request, key string) (uint64, error) {
	n, err := strconv.ParseUint(web.Param(r, key), 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid %s: %w", key, err), http.StatusBadRequest)
	}
	return n, nil
}

// paramEntry parses an entry number route parameter.
func paramEntry(r *http.Request, key string) (uint64, error) {
	if web.Param(r, key) == "latest" {
		return state.QueryLatest, nil
	}
	return paramUint(r, key)
}
