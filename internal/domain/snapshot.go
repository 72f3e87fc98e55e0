package domain

// WalletStats records how many holdings passed vs failed the relevance
// filter for one wallet on one tracking cycle.
type WalletStats struct {
	Found   int `json:"found"`
	Skipped int `json:"skipped"`
}

// WalletSnapshot is the full set of filtered holdings for all tracked
// wallets at one point in time. Exactly one "current" snapshot is kept
// per cache; superseded snapshots are not retained.
type WalletSnapshot struct {
	Wallets   map[string][]TokenHolding `json:"wallets"`
	Stats     map[string]WalletStats    `json:"stats"`
	Timestamp int64                     `json:"timestamp"` // Unix ms of the cycle that produced it
}

// NewWalletSnapshot returns an empty snapshot ready for per-wallet writes.
func NewWalletSnapshot() *WalletSnapshot {
	return &WalletSnapshot{
		Wallets: make(map[string][]TokenHolding),
		Stats:   make(map[string]WalletStats),
	}
}

// Holdings returns the holdings recorded for a wallet, nil when the wallet
// has no entry (treated everywhere as "no previous snapshot").
func (s *WalletSnapshot) Holdings(wallet string) []TokenHolding {
	if s == nil || s.Wallets == nil {
		return nil
	}
	return s.Wallets[wallet]
}

// SnapshotMeta describes the policy a persisted snapshot was taken under.
// A mismatch against the current policy invalidates the snapshot as a
// diff baseline.
type SnapshotMeta struct {
	Mode           FilterMode `json:"mode"`
	MonitoredMints []string   `json:"monitored_mints"`
	SavedAt        int64      `json:"saved_at"` // Unix ms
}
