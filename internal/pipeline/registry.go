//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]*Pipeline)
	mu       sync.RWMutex
)

// Register adds a pipeline to the registry.
func Register(p *Pipeline) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Name] = p
}

// Get retrieves a pipeline by name.
func Get(name string) (*Pipeline, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline: %s", name)
	}
	return p, nil
}

// List returns all registered pipeline names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
