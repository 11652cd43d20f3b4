// Package state is the core API for the block trading node. It serializes
// every registry call, settles the money it moves and keeps the journal.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/registry"
)

// EventHandler defines a function that is called when events
// occur in the processing of registry calls.
type EventHandler func(v string, args ...any)

// Recorder records the outcome of every submitted call.
type Recorder interface {
	ObserveCall(call string, err error, started time.Time)
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	AccountID accounts.AccountID // Node account, the admin when genesis names none.
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
	Recorder  Recorder
}

// State manages the registry, the accounts and the journal.
type State struct {
	mu sync.Mutex

	accountID accounts.AccountID
	evHandler EventHandler
	recorder  Recorder

	genesis  genesis.Genesis
	accounts *accounts.Accounts
	registry *registry.Registry
	journal  *database.Journal
}

// New constructs the state from genesis and replays the journal found in
// storage on top of it.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	accts, err := accounts.New(cfg.Genesis)
	if err != nil {
		return nil, err
	}

	reg, err := newRegistry(cfg.Genesis, cfg.AccountID)
	if err != nil {
		return nil, err
	}

	s := State{
		accountID: cfg.AccountID,
		evHandler: ev,
		recorder:  cfg.Recorder,
		genesis:   cfg.Genesis,
		accounts:  accts,
		registry:  reg,
	}

	// Replaying the journal rebuilds the registry and the accounts. An
	// entry that no longer applies means the journal can't be trusted.
	ev("state: New: replaying journal")

	replay := func(entry database.Entry) error {
		if _, _, err := s.apply(entry.Tx); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		return nil
	}

	journal, err := database.New(cfg.Storage)
	if err != nil {
		return nil, err
	}

	if err := journal.ForEach(replay); err != nil {
		return nil, err
	}
	s.journal = journal

	ev("state: New: replayed: latest entry[%d]", journal.Latest().Number)

	return &s, nil
}

// Shutdown cleanly brings the state down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.journal.Close()
}

// Truncate resets the registry, the accounts and the journal back to the
// genesis state.
func (s *State) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := newRegistry(s.genesis, s.accountID)
	if err != nil {
		return err
	}

	if err := s.accounts.Reset(); err != nil {
		return err
	}
	s.registry.Replace(reg)

	return s.journal.Reset()
}

// =============================================================================

// newRegistry deploys a registry with the genesis settings.
func newRegistry(gen genesis.Genesis, nodeID accounts.AccountID) (*registry.Registry, error) {
	admin := nodeID
	if gen.AdminOwner != "" {
		id, err := accounts.ToAccountID(gen.AdminOwner)
		if err != nil {
			return nil, fmt.Errorf("genesis admin owner %q: %w", gen.AdminOwner, err)
		}
		admin = id
	}

	return registry.New(registry.Config{
		AdminOwner:   admin,
		MintPrice:    gen.MintPrice,
		DefaultColor: registry.Color(gen.DefaultColor),
		MaxBlocks:    gen.MaxBlocks,
		MaxRange:     gen.MaxRange,
	})
}
