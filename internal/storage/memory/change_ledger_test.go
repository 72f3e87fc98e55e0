package memory

import (
	"context"
	"fmt"
	"testing"

	"solana-wallet-tracker/internal/domain"
)

func event(mint string) domain.ChangeEvent {
	return domain.ChangeEvent{Type: domain.ChangeNew, Wallet: "w1", Mint: mint}
}

func TestChangeLedger_AppendNewestFirst(t *testing.T) {
	ledger := NewChangeLedger(10)
	ctx := context.Background()

	if err := ledger.Append(ctx, []domain.ChangeEvent{event("old")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Append(ctx, []domain.ChangeEvent{event("new")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := ledger.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 || got[0].Mint != "new" || got[1].Mint != "old" {
		t.Errorf("Expected newest first, got %+v", got)
	}
}

func TestChangeLedger_RetentionCap(t *testing.T) {
	ledger := NewChangeLedger(25)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		if err := ledger.Append(ctx, []domain.ChangeEvent{event(fmt.Sprintf("mint%02d", i))}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	got, err := ledger.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 25 {
		t.Fatalf("Expected 25 retained events, got %d", len(got))
	}
	if got[0].Mint != "mint29" {
		t.Errorf("Expected newest mint29 first, got %s", got[0].Mint)
	}
	if got[24].Mint != "mint05" {
		t.Errorf("Expected oldest retained mint05, got %s", got[24].Mint)
	}
}

func TestChangeLedger_RecentLimit(t *testing.T) {
	ledger := NewChangeLedger(10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := ledger.Append(ctx, []domain.ChangeEvent{event(fmt.Sprintf("mint%d", i))}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := ledger.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 || got[0].Mint != "mint4" {
		t.Errorf("Unexpected limited result %+v", got)
	}
}

func TestChangeLedger_Clear(t *testing.T) {
	ledger := NewChangeLedger(10)
	ctx := context.Background()

	if err := ledger.Append(ctx, []domain.ChangeEvent{event("a"), event("b")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := ledger.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	got, err := ledger.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty ledger after Clear, got %d events", len(got))
	}
}
