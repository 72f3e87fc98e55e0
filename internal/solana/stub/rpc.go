package stub

import (
	"context"

	"solana-wallet-tracker/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Accounts map[string][]solana.TokenAccount // wallet -> token accounts
	Balances map[string]uint64                // wallet -> lamports
	Errs     map[string]error                 // wallet -> forced failure

	ListCalls int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts: make(map[string][]solana.TokenAccount),
		Balances: make(map[string]uint64),
		Errs:     make(map[string]error),
	}
}

// ListTokenAccounts returns the configured accounts for a wallet.
func (c *RPCClient) ListTokenAccounts(_ context.Context, wallet string) ([]solana.TokenAccount, error) {
	c.ListCalls++
	if err := c.Errs[wallet]; err != nil {
		return nil, err
	}
	return c.Accounts[wallet], nil
}

// ListTokenAccountsForMint returns the configured accounts filtered to one mint.
func (c *RPCClient) ListTokenAccountsForMint(_ context.Context, wallet, mint string) ([]solana.TokenAccount, error) {
	c.ListCalls++
	if err := c.Errs[wallet]; err != nil {
		return nil, err
	}
	var out []solana.TokenAccount
	for _, acc := range c.Accounts[wallet] {
		if acc.Mint == mint {
			out = append(out, acc)
		}
	}
	return out, nil
}

// GetNativeBalance returns the configured lamport balance for a wallet.
func (c *RPCClient) GetNativeBalance(_ context.Context, wallet string) (uint64, error) {
	if err := c.Errs[wallet]; err != nil {
		return 0, err
	}
	return c.Balances[wallet], nil
}

// AddAccount appends a token account for a wallet.
func (c *RPCClient) AddAccount(wallet string, acc solana.TokenAccount) {
	c.Accounts[wallet] = append(c.Accounts[wallet], acc)
}

// FailWallet makes all calls for a wallet return err.
func (c *RPCClient) FailWallet(wallet string, err error) {
	c.Errs[wallet] = err
}
