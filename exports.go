package recur

import "github.com/xraph/recur/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Account is re-exported from types package.
type Account = types.Account

// AssetRef is re-exported from types package.
type AssetRef = types.AssetRef

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Entity constructors
var (
	NewEntity   = types.NewEntity
	NewEntityAt = types.NewEntityAt
)
