package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/recur/subscription"
)

// Registry manages all registered plugins and provides efficient
// dispatch. It uses type-cached discovery so emission never walks the
// full plugin list looking for interface matches.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                  []OnInit
	onShutdown              []OnShutdown
	onSubscriptionCreated   []OnSubscriptionCreated
	onSubscriptionCancelled []OnSubscriptionCancelled
	onSettlement            []OnSettlement
	onSettlementFailed      []OnSettlementFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	var interfaces []string
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		interfaces = append(interfaces, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		interfaces = append(interfaces, "OnShutdown")
	}
	if v, ok := p.(OnSubscriptionCreated); ok {
		r.onSubscriptionCreated = append(r.onSubscriptionCreated, v)
		interfaces = append(interfaces, "OnSubscriptionCreated")
	}
	if v, ok := p.(OnSubscriptionCancelled); ok {
		r.onSubscriptionCancelled = append(r.onSubscriptionCancelled, v)
		interfaces = append(interfaces, "OnSubscriptionCancelled")
	}
	if v, ok := p.(OnSettlement); ok {
		r.onSettlement = append(r.onSettlement, v)
		interfaces = append(interfaces, "OnSettlement")
	}
	if v, ok := p.(OnSettlementFailed); ok {
		r.onSettlementFailed = append(r.onSettlementFailed, v)
		interfaces = append(interfaces, "OnSettlementFailed")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", interfaces,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSubscriptionCreated emits the creation record for a new
// subscription.
func (r *Registry) EmitSubscriptionCreated(ctx context.Context, sub *subscription.Subscription) {
	r.mu.RLock()
	plugins := r.onSubscriptionCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscriptionCreated(ctx, sub)
		}); err != nil {
			r.logger.Warn("plugin OnSubscriptionCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSubscriptionCancelled emits a subscription cancelled event.
func (r *Registry) EmitSubscriptionCancelled(ctx context.Context, sub *subscription.Subscription) {
	r.mu.RLock()
	plugins := r.onSubscriptionCancelled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscriptionCancelled(ctx, sub)
		}); err != nil {
			r.logger.Warn("plugin OnSubscriptionCancelled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSettlement emits a successful settlement event.
func (r *Registry) EmitSettlement(ctx context.Context, event SettlementEvent) {
	r.mu.RLock()
	plugins := r.onSettlement
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSettlement(ctx, event)
		}); err != nil {
			r.logger.Warn("plugin OnSettlement failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSettlementFailed emits a failed settlement event.
func (r *Registry) EmitSettlementFailed(ctx context.Context, event SettlementEvent, cause error) {
	r.mu.RLock()
	plugins := r.onSettlementFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSettlementFailed(ctx, event, cause)
		}); err != nil {
			r.logger.Warn("plugin OnSettlementFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the settlement pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
