package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/registry"
	"github.com/holiman/uint256"
)

// Set of error variables for call processing.
var (
	ErrWrongChain = errors.New("transaction is for a different chain")
	ErrJournal    = errors.New("journal write failed")
)

// Result describes a call the node accepted.
type Result struct {
	Entry   database.Entry     `json:"entry"`
	From    accounts.AccountID `json:"from"`
	Receipt registry.Receipt   `json:"receipt"`
}

// SubmitTransaction applies a signed call from a wallet and journals it.
// A call that fails for any reason has no effect on the registry, the
// accounts or the journal.
func (s *State) SubmitTransaction(signedTx database.SignedTx) (res Result, err error) {
	started := time.Now()
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveCall(string(signedTx.Call), err, started)
		}
	}()

	if err := signedTx.Validate(); err != nil {
		s.evHandler("state: SubmitTransaction: %s: rejected: %s", signedTx.Call, err)
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, undo, err := s.apply(signedTx)
	if err != nil {
		s.evHandler("state: SubmitTransaction: %s: rejected: %s", signedTx, err)
		return Result{}, err
	}

	entry, err := s.journal.Append(signedTx, uint64(time.Now().UTC().UnixMilli()))
	if err != nil {
		undo()

		s.evHandler("state: SubmitTransaction: %s: journal: ERROR: %s", signedTx, err)
		return Result{}, fmt.Errorf("%w: %w", ErrJournal, err)
	}
	res.Entry = entry

	s.evHandler("viewer: tx: %s: entry[%d]: block[%d]: %s", signedTx.Call, entry.Number, signedTx.Block, res.From)

	return res, nil
}

// =============================================================================

// apply runs the call against the registry and settles the money it moves.
// A call that fails leaves everything as it was. The returned function
// undoes a call that succeeded. The caller must hold the state lock unless
// the state is being built.
func (s *State) apply(signedTx database.SignedTx) (Result, func(), error) {
	if signedTx.ChainID != s.genesis.ChainID {
		return Result{}, nil, fmt.Errorf("%w: got %d, exp %d", ErrWrongChain, signedTx.ChainID, s.genesis.ChainID)
	}

	from, err := signedTx.FromAccount()
	if err != nil {
		return Result{}, nil, fmt.Errorf("%w: %s", accounts.ErrInvalidAccount, err)
	}

	if err := s.accounts.ValidateNonce(from, signedTx.Nonce); err != nil {
		return Result{}, nil, err
	}

	value := signedTx.Amount()
	if bal := s.accounts.Query(from).Balance; bal.Lt(value) {
		return Result{}, nil, fmt.Errorf("%w, %s has %s, needs %s", accounts.ErrInsufficientFunds, from, bal, value)
	}

	// A rejected call leaves the registry untouched.
	regCP := s.registry.Checkpoint(blocksOf(signedTx.Tx)...)

	rcpt, err := s.dispatch(from, signedTx.Tx)
	if err != nil {
		return Result{}, nil, err
	}

	touched := []accounts.AccountID{from}
	for _, tr := range rcpt.Transfers {
		touched = append(touched, tr.To)
	}
	actCP := s.accounts.Checkpoint(touched...)

	undo := func() {
		s.registry.Restore(regCP)
		s.accounts.Restore(actCP)
	}

	if err := s.settle(from, value, rcpt); err != nil {
		undo()
		return Result{}, nil, err
	}

	s.accounts.UpdateNonce(from, signedTx.Nonce)

	res := Result{
		From:    from,
		Receipt: rcpt,
	}

	return res, undo, nil
}

// settle charges the caller and pays out the transfers of the receipt.
func (s *State) settle(from accounts.AccountID, value *uint256.Int, rcpt registry.Receipt) error {
	if err := s.accounts.Debit(from, value); err != nil {
		return err
	}

	for _, tr := range rcpt.Transfers {
		if err := s.accounts.Credit(tr.To, tr.Amount); err != nil {
			return err
		}
	}

	return nil
}

// blocksOf returns the indices of the blocks the call can change.
func blocksOf(tx database.Tx) []uint64 {
	switch tx.Call {
	case database.CallBuyMultipleBlocks:
		return tx.Blocks

	case database.CallSetMintPrice, database.CallWithdraw:
		return nil
	}

	return []uint64{tx.Block}
}

// dispatch invokes the registry operation named by the transaction.
func (s *State) dispatch(from accounts.AccountID, tx database.Tx) (registry.Receipt, error) {
	var rcpt registry.Receipt
	var err error

	switch tx.Call {
	case database.CallBuyBlock:
		rcpt, err = s.registry.BuyBlock(from, tx.Block, tx.Amount())

	case database.CallBuyMultipleBlocks:
		rcpt, err = s.registry.BuyMultipleBlocks(from, tx.Blocks, tx.Amount())

	case database.CallBuyFromUser:
		rcpt, err = s.registry.BuyFromUser(from, tx.Block, tx.Amount())

	case database.CallSellBlock:
		err = s.registry.SellBlock(from, tx.Block, tx.Price)

	case database.CallSetColor:
		err = s.registry.SetColor(from, tx.Block, registry.Color(tx.Color))

	case database.CallSetMintPrice:
		err = s.registry.SetMintPrice(from, tx.Price)

	case database.CallWithdraw:
		rcpt, err = s.registry.Withdraw(from)

	default:
		err = fmt.Errorf("unknown call %q", tx.Call)
	}

	return rcpt, err
}
