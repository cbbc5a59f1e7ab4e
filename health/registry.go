package health

import (
	"fmt"
	"sync"
	"time"

	"github.com/Ishswami-Tech/healthops/observe"
)

const (
	// DefaultTimeout is the probe budget used when a definition leaves it zero.
	DefaultTimeout = 5 * time.Second

	// DefaultFallbackTimeout bounds a single fallback verification.
	DefaultFallbackTimeout = time.Second
)

// Definition is the static registration of one dependency check.
type Definition struct {
	// Name is the unique, stable key of the probe in every snapshot.
	Name string

	// Kind labels the dependency type for telemetry, e.g. "sql" or "redis".
	Kind string

	// Timeout is the probe budget. Zero means the registry default.
	Timeout time.Duration

	// Critical marks a dependency whose failure is listed in
	// Snapshot.CriticalFailures. It does not change the overall status.
	Critical bool

	// Probe performs the check.
	Probe Probe

	// Fallback, when set, is consulted if the probe fails because a client-side
	// circuit breaker is open.
	Fallback Verifier

	// FallbackTimeout bounds the fallback verification.
	// Default: DefaultFallbackTimeout
	FallbackTimeout time.Duration
}

func (d Definition) meta() observe.ProbeMeta {
	return observe.ProbeMeta{
		Name:     d.Name,
		Kind:     d.Kind,
		Critical: d.Critical,
		Timeout:  d.Timeout,
	}
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// DefaultTimeout applies to definitions registered without a timeout.
	// Default: 5 seconds
	DefaultTimeout time.Duration
}

// Registry holds probe definitions in registration order.
//
// Definitions are registered once at process start. Freeze makes the set
// immutable; the engine freezes the registry it is built from.
type Registry struct {
	config RegistryConfig

	mu     sync.RWMutex
	defs   []Definition
	names  map[string]struct{}
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry(config ...RegistryConfig) *Registry {
	var cfg RegistryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}

	return &Registry{
		config: cfg,
		names:  make(map[string]struct{}),
	}
}

// Register adds a definition, filling zero timeouts with defaults.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if def.Probe == nil {
		return fmt.Errorf("%w: probe %q has no check", ErrInvalidDefinition, def.Name)
	}
	if def.Timeout < 0 || def.FallbackTimeout < 0 {
		return fmt.Errorf("%w: probe %q has a negative timeout", ErrInvalidDefinition, def.Name)
	}

	if def.Timeout == 0 {
		def.Timeout = r.config.DefaultTimeout
	}
	if def.Fallback != nil && def.FallbackTimeout == 0 {
		def.FallbackTimeout = DefaultFallbackTimeout
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, def.Name)
	}
	if _, exists := r.names[def.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProbe, def.Name)
	}

	r.names[def.Name] = struct{}{}
	r.defs = append(r.defs, def)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Definitions returns a copy of the registered definitions in order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, len(r.defs))
	copy(defs, r.defs)
	return defs
}

// Names returns the registered probe names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.defs))
	for i, def := range r.defs {
		names[i] = def.Name
	}
	return names
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Freeze rejects any further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
