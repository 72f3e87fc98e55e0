package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// TokenAccount is one SPL token account balance as reported by
// getTokenAccountsByOwner.
type TokenAccount struct {
	Mint      string
	RawAmount uint64
	Decimals  uint8
}

// ValidateAddress checks that an address is a well-formed base58-encoded
// 32-byte public key.
func ValidateAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", addr, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("address %q: expected 32 bytes, got %d", addr, len(raw))
	}
	return nil
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Wallet owner keys are on the curve; program-derived addresses are not,
// so this distinguishes a wallet from a token account or pool address.
func IsOnCurve(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
