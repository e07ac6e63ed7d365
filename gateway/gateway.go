// Package gateway is the engine's boundary to the external
// fungible-asset ledger.
//
// The ledger is a collaborator, not a component: calls into it may
// take arbitrarily long, may fail, and may reenter the engine before
// returning. The engine never relies on anything staying still
// between invoking Pull and it returning — its own state is committed
// first (see the settlement protocol in the root package).
package gateway

import (
	"context"
	"errors"

	"github.com/xraph/recur/types"
)

// Sentinel errors surfaced from the ledger boundary.
var (
	ErrInsufficientAllowance = errors.New("gateway: insufficient allowance")
	ErrInsufficientBalance   = errors.New("gateway: insufficient balance")
	ErrLedgerFailure         = errors.New("gateway: ledger failure")
)

// Gateway adapts the external asset ledger's pull-transfer primitive.
// Each call is atomic from the engine's point of view.
type Gateway interface {
	// Pull transfers amount of asset from payer to payee, drawing
	// against the payer's pre-granted allowance. Failure modes are
	// ErrInsufficientAllowance, ErrInsufficientBalance and
	// ErrLedgerFailure.
	Pull(ctx context.Context, asset types.AssetRef, payer, payee types.Account, amount types.Amount) error

	// BalanceOf returns the payer's current balance for asset.
	BalanceOf(ctx context.Context, asset types.AssetRef, owner types.Account) (types.Amount, error)

	// Allowance returns how much of asset the engine may still pull
	// on behalf of owner.
	Allowance(ctx context.Context, asset types.AssetRef, owner types.Account) (types.Amount, error)
}
