package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Manager holds named filter presets and combines them with ad-hoc
// expressions
type Manager struct {
	compiler  Compiler
	evaluator *Evaluator
	presets   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *Evaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler:  NewExprCompiler(WithCache(100)),
		evaluator: NewEvaluator(),
		presets:   make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterPreset compiles and stores a named filter, replacing any
// preset with the same name
func (m *Manager) RegisterPreset(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile preset '%s': %w", name, err)
	}

	m.mu.Lock()
	m.presets[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterPresets registers several presets. Nothing is registered when any
// of them fails to compile.
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(presets))
	for _, name := range slices.Sorted(maps.Keys(presets)) {
		filter, err := m.compiler.Compile(presets[name])
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	for name, filter := range compiled {
		m.presets[name] = filter
	}
	m.mu.Unlock()

	return nil
}

// Preset returns a registered preset by name
func (m *Manager) Preset(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter, ok := m.presets[name]
	return filter, ok
}

// ListPresets returns the registered preset names in sorted order
func (m *Manager) ListPresets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.presets))
}

// Resolve builds the filter for a preset name and a where expression,
// either of which may be empty. Both together must hold. A nil filter
// means no filtering.
func (m *Manager) Resolve(preset, where string) (CompiledFilter, error) {
	preset = strings.TrimSpace(preset)
	where = strings.TrimSpace(where)

	var presetFilter CompiledFilter
	if preset != "" {
		var ok bool
		if presetFilter, ok = m.Preset(preset); !ok {
			return nil, fmt.Errorf("unknown filter preset '%s' (available: %s)", preset, strings.Join(m.ListPresets(), ", "))
		}
	}

	switch {
	case presetFilter == nil && where == "":
		return nil, nil
	case where == "":
		return presetFilter, nil
	case presetFilter == nil:
		return m.compiler.Compile(where)
	default:
		return m.compiler.Compile("(" + presetFilter.Expression() + ") && (" + where + ")")
	}
}

// Evaluator returns the evaluator used by Select
func (m *Manager) Evaluator() *Evaluator {
	return m.evaluator
}
