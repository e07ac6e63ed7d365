package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/recur/types"
)

// MemoryLedger is an in-process asset ledger implementing Gateway.
// It mirrors the standard token surface (balances plus spender
// allowances) and is intended for tests and development wiring.
type MemoryLedger struct {
	mu         sync.Mutex
	balances   map[balanceKey]types.Amount
	allowances map[balanceKey]types.Amount

	// onPull, when set, runs inside Pull after the ledger state has
	// changed but before Pull returns. Tests use it to reenter the
	// engine mid-settlement.
	onPull func(ctx context.Context)
}

type balanceKey struct {
	asset types.AssetRef
	owner types.Account
}

// NewMemoryLedger creates an empty in-process asset ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[balanceKey]types.Amount),
		allowances: make(map[balanceKey]types.Amount),
	}
}

// Mint credits amount of asset to owner.
func (l *MemoryLedger) Mint(asset types.AssetRef, owner types.Account, amount types.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey{asset, owner}] += amount
}

// Approve grants the engine a pull allowance of amount for owner's
// holdings of asset. It replaces any prior allowance.
func (l *MemoryLedger) Approve(asset types.AssetRef, owner types.Account, amount types.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[balanceKey{asset, owner}] = amount
}

// OnPull installs a callback that runs inside every Pull call, after
// balances have moved. A reentrant callback models a hostile ledger.
func (l *MemoryLedger) OnPull(fn func(ctx context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onPull = fn
}

// Pull implements Gateway.
func (l *MemoryLedger) Pull(ctx context.Context, asset types.AssetRef, payer, payee types.Account, amount types.Amount) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrLedgerFailure)
	}

	l.mu.Lock()
	from := balanceKey{asset, payer}
	to := balanceKey{asset, payee}

	if l.allowances[from] < amount {
		l.mu.Unlock()
		return ErrInsufficientAllowance
	}
	if l.balances[from] < amount {
		l.mu.Unlock()
		return ErrInsufficientBalance
	}

	l.allowances[from] -= amount
	l.balances[from] -= amount
	l.balances[to] += amount
	cb := l.onPull
	l.mu.Unlock()

	if cb != nil {
		cb(ctx)
	}
	return nil
}

// BalanceOf implements Gateway.
func (l *MemoryLedger) BalanceOf(_ context.Context, asset types.AssetRef, owner types.Account) (types.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[balanceKey{asset, owner}], nil
}

// Allowance implements Gateway.
func (l *MemoryLedger) Allowance(_ context.Context, asset types.AssetRef, owner types.Account) (types.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[balanceKey{asset, owner}], nil
}

// compile-time interface check
var _ Gateway = (*MemoryLedger)(nil)
