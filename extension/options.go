package extension

import (
	recur "github.com/xraph/recur"
	"github.com/xraph/recur/gateway"
	"github.com/xraph/recur/plugin"
	"github.com/xraph/recur/store"
)

// Option configures the Recur Forge extension.
type Option func(*Extension)

// WithStore sets the subscription registry for the engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGateway sets the asset-ledger gateway for the engine.
func WithGateway(g gateway.Gateway) Option {
	return func(e *Extension) {
		e.gateway = g
	}
}

// WithEngineOption passes a recur.Option through to the underlying engine.
func WithEngineOption(opt recur.Option) Option {
	return func(e *Extension) {
		e.recurOpts = append(e.recurOpts, opt)
	}
}

// WithPlugin registers an engine plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.recurOpts = append(e.recurOpts, recur.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithManager designates an operator account that may cancel any
// subscription in addition to its payer.
func WithManager(account string) Option {
	return func(e *Extension) { e.config.Manager = account }
}

// WithRollbackOnPullFailure makes failed settlement pulls restore the
// previous due date for retry.
func WithRollbackOnPullFailure() Option {
	return func(e *Extension) { e.config.RollbackOnPullFailure = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
