// Package chain talks to the token/collectible ledger service. Calls are
// best effort and never retried; a failure is surfaced to the caller and any
// gameplay state already applied stays applied.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 8 * time.Second}

// Service is the ledger/mint collaborator consumed by the game.
type Service interface {
	TransferTokens(ctx context.Context, to string, amount float64, kind string) (string, error)
	MintCollectible(ctx context.Context, owner, name, rarity string) (string, error)
	GetBalance(ctx context.Context, addr, kind string) (float64, error)
}

// Client is an HTTP implementation of Service.
type Client struct {
	baseURL string
	admin   string
}

// NewClient returns a client for the service at baseURL, transferring from
// the given admin wallet.
func NewClient(baseURL, adminAddr string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), admin: adminAddr}
}

type txResponse struct {
	TxID string `json:"tx_id"`
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("chain status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// TransferTokens moves tokens from the admin wallet to a recipient.
func (c *Client) TransferTokens(ctx context.Context, to string, amount float64, kind string) (string, error) {
	var out txResponse
	err := c.post(ctx, "/transfer", map[string]any{
		"from": c.admin, "to": to, "amount": amount, "kind": kind,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.TxID, nil
}

// MintCollectible mints a named collectible for the owner wallet.
func (c *Client) MintCollectible(ctx context.Context, owner, name, rarity string) (string, error) {
	var out txResponse
	err := c.post(ctx, "/mint", map[string]any{
		"owner": owner, "name": name, "rarity": rarity,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.TxID, nil
}

// GetBalance reads a wallet balance for a token kind.
func (c *Client) GetBalance(ctx context.Context, addr, kind string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/balance?addr=%s&kind=%s", c.baseURL, addr, kind), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return 0, fmt.Errorf("chain status %d", resp.StatusCode)
	}
	var out struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

// Noop is an offline Service for tests and local play. Every call succeeds
// with a synthetic tx id.
type Noop struct{}

func (Noop) TransferTokens(context.Context, string, float64, string) (string, error) {
	return "offline-transfer", nil
}

func (Noop) MintCollectible(context.Context, string, string, string) (string, error) {
	return "offline-mint", nil
}

func (Noop) GetBalance(context.Context, string, string) (float64, error) { return 0, nil }
