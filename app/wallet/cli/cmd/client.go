package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/holiman/uint256"
)

// client talks to the public api of a node.
type client struct {
	url  string
	http *http.Client
}

func newClient(url string) *client {
	return &client{
		url:  strings.TrimSuffix(url, "/"),
		http: http.DefaultClient,
	}
}

type accountInfo struct {
	Account accounts.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance *uint256.Int       `json:"balance"`
	Nonce   uint64             `json:"nonce"`
}

// account returns the balance and nonce the node has for the account.
func (c *client) account(accountID accounts.AccountID) (accountInfo, error) {
	var resp struct {
		Accounts []accountInfo `json:"accounts"`
	}
	if err := c.get(fmt.Sprintf("/v1/accounts/list/%s", accountID), &resp); err != nil {
		return accountInfo{}, err
	}

	if len(resp.Accounts) == 0 {
		return accountInfo{}, fmt.Errorf("account %s not found", accountID)
	}

	return resp.Accounts[0], nil
}

// submit signs the call with the private key and posts it to the node. A
// zero nonce is replaced with the next nonce of the account.
func (c *client) submit(privateKey *ecdsa.PrivateKey, tx database.Tx) (json.RawMessage, error) {
	if tx.Nonce == 0 {
		act, err := c.account(accounts.PublicKeyToAccountID(privateKey.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("query nonce: %w", err)
		}
		tx.Nonce = act.Nonce + 1
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.url+"/v1/tx/submit", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result json.RawMessage
	if err := decode(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// get issues a GET against the node and decodes the response into v.
func (c *client) get(path string, v any) error {
	resp, err := c.http.Get(c.url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, v)
}

// decode reads a response, turning error responses from the node into errors.
func decode(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var er struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
			return fmt.Errorf("node returned %s", resp.Status)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("%s: %s: %v", resp.Status, er.Error, er.Fields)
		}
		return fmt.Errorf("%s: %s", resp.Status, er.Error)
	}

	if resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil
	}

	return json.Unmarshal(body, v)
}

// =============================================================================

// parseAmount reads a wei amount written in decimal or 0x prefixed hex.
func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.New("amount is required")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" {
			return nil, fmt.Errorf("amount %q has no digits", s)
		}

		// FromHex rejects leading zeros.
		digits = strings.TrimLeft(digits, "0")
		if digits == "" {
			digits = "0"
		}
		return uint256.FromHex("0x" + digits)
	}

	return uint256.FromDecimal(s)
}

// parseIndices reads a comma separated list of block indices.
func parseIndices(s string) ([]uint64, error) {
	var indices []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		index, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("block index %q: %w", part, err)
		}
		indices = append(indices, index)
	}

	if len(indices) == 0 {
		return nil, errors.New("no block indices given")
	}

	return indices, nil
}

// printJSON writes v to the terminal as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
