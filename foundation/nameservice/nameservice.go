// Package nameservice reads a folder of key files and creates a name
// service lookup for the accounts they belong to.
package nameservice

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[accounts.AccountID]string
}

// New constructs a name service with accounts from the key files found
// under root. The file name without the .ecdsa extension is the name.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[accounts.AccountID]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		accountID := accounts.PublicKeyToAccountID(privateKey.PublicKey)
		ns.accounts[accountID] = strings.TrimSuffix(filepath.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(accountID accounts.AccountID) string {
	name, exists := ns.accounts[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// Resolve returns the account for a name or an account id.
func (ns *NameService) Resolve(nameOrID string) (accounts.AccountID, error) {
	for accountID, name := range ns.accounts {
		if name == nameOrID {
			return accountID, nil
		}
	}

	return accounts.ToAccountID(nameOrID)
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[accounts.AccountID]string {
	cpy := make(map[accounts.AccountID]string, len(ns.accounts))
	for accountID, name := range ns.accounts {
		cpy[accountID] = name
	}
	return cpy
}
