package solana

import "context"

// TokenProgramID is the SPL token program account.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// RPCClient defines the Solana RPC HTTP interface the tracker needs.
type RPCClient interface {
	// ListTokenAccounts retrieves all SPL token accounts owned by the
	// wallet. Accounts with a zero balance are omitted. The listing may
	// contain multiple accounts for the same mint; callers merge them.
	ListTokenAccounts(ctx context.Context, wallet string) ([]TokenAccount, error)

	// ListTokenAccountsForMint retrieves the wallet's token accounts for a
	// single mint. Used in allowlist mode to avoid a full account scan.
	ListTokenAccountsForMint(ctx context.Context, wallet, mint string) ([]TokenAccount, error)

	// GetNativeBalance retrieves the wallet's SOL balance in lamports.
	GetNativeBalance(ctx context.Context, wallet string) (uint64, error)
}
