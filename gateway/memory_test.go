package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/recur/types"
)

const (
	asset = types.AssetRef("asset-t")
	alice = types.Account("alice")
	bob   = types.Account("bob")
)

func TestMemoryLedgerPull(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(asset, alice, 100)
	l.Approve(asset, alice, 50)

	if err := l.Pull(ctx, asset, alice, bob, 30); err != nil {
		t.Fatal(err)
	}

	balance, _ := l.BalanceOf(ctx, asset, alice)
	if balance != 70 {
		t.Errorf("payer balance: got %d, want 70", balance)
	}
	balance, _ = l.BalanceOf(ctx, asset, bob)
	if balance != 30 {
		t.Errorf("payee balance: got %d, want 30", balance)
	}
	allowance, _ := l.Allowance(ctx, asset, alice)
	if allowance != 20 {
		t.Errorf("allowance: got %d, want 20", allowance)
	}
}

func TestMemoryLedgerFailureModes(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient allowance", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Mint(asset, alice, 100)
		l.Approve(asset, alice, 10)

		if err := l.Pull(ctx, asset, alice, bob, 20); !errors.Is(err, ErrInsufficientAllowance) {
			t.Errorf("got %v, want ErrInsufficientAllowance", err)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Mint(asset, alice, 5)
		l.Approve(asset, alice, 100)

		if err := l.Pull(ctx, asset, alice, bob, 20); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("failed pull moves nothing", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Mint(asset, alice, 5)

		_ = l.Pull(ctx, asset, alice, bob, 20)

		balance, _ := l.BalanceOf(ctx, asset, alice)
		if balance != 5 {
			t.Errorf("payer balance changed on failed pull: %d", balance)
		}
		balance, _ = l.BalanceOf(ctx, asset, bob)
		if balance != 0 {
			t.Errorf("payee balance changed on failed pull: %d", balance)
		}
	})
}

func TestMemoryLedgerOnPullCallback(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(asset, alice, 100)
	l.Approve(asset, alice, 100)

	called := false
	l.OnPull(func(context.Context) {
		called = true
		// The ledger state is already settled when the callback runs.
		balance, _ := l.BalanceOf(ctx, asset, bob)
		if balance != 10 {
			t.Errorf("callback observed balance %d, want 10", balance)
		}
	})

	if err := l.Pull(ctx, asset, alice, bob, 10); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("OnPull callback did not run")
	}
}
