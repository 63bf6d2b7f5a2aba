package datamodel

import (
	"context"
	"sync"
)

// SnapshotProvider returns the current classes of the data model.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ConfigProvider returns the current schema configuration.
type ConfigProvider interface {
	Config(ctx context.Context) (*SchemaConfig, error)
}

// FunctionProvider returns the names of the server-callable functions.
type FunctionProvider interface {
	FunctionNames(ctx context.Context) ([]string, error)
}

// SnapshotFunc adapts a function to SnapshotProvider.
type SnapshotFunc func(ctx context.Context) (*Snapshot, error)

func (f SnapshotFunc) Snapshot(ctx context.Context) (*Snapshot, error) { return f(ctx) }

// ConfigFunc adapts a function to ConfigProvider.
type ConfigFunc func(ctx context.Context) (*SchemaConfig, error)

func (f ConfigFunc) Config(ctx context.Context) (*SchemaConfig, error) { return f(ctx) }

// FunctionsFunc adapts a function to FunctionProvider.
type FunctionsFunc func(ctx context.Context) ([]string, error)

func (f FunctionsFunc) FunctionNames(ctx context.Context) ([]string, error) { return f(ctx) }

// StaticSnapshot is an in-memory SnapshotProvider. It hands out the same
// pointer until Set is called.
type StaticSnapshot struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewStaticSnapshot returns a provider holding classes.
func NewStaticSnapshot(classes ...ClassDescriptor) *StaticSnapshot {
	return &StaticSnapshot{snap: &Snapshot{Classes: classes}}
}

// Set replaces the held classes with a new snapshot.
func (s *StaticSnapshot) Set(classes ...ClassDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &Snapshot{Classes: classes}
}

func (s *StaticSnapshot) Snapshot(context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

// StaticConfig is an in-memory ConfigProvider.
type StaticConfig struct {
	mu  sync.RWMutex
	cfg *SchemaConfig
}

// NewStaticConfig returns a provider holding cfg. A nil cfg is served as an
// empty configuration.
func NewStaticConfig(cfg *SchemaConfig) *StaticConfig {
	if cfg == nil {
		cfg = &SchemaConfig{}
	}
	return &StaticConfig{cfg: cfg}
}

// Set replaces the held configuration.
func (s *StaticConfig) Set(cfg *SchemaConfig) {
	if cfg == nil {
		cfg = &SchemaConfig{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *StaticConfig) Config(context.Context) (*SchemaConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, nil
}

// StaticFunctions is an in-memory FunctionProvider.
type StaticFunctions struct {
	mu    sync.RWMutex
	names []string
}

func NewStaticFunctions(names ...string) *StaticFunctions {
	return &StaticFunctions{names: names}
}

// Set replaces the held function names.
func (s *StaticFunctions) Set(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = names
}

func (s *StaticFunctions) FunctionNames(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...), nil
}
