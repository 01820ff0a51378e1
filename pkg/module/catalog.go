package module

import (
	"fmt"
	"slices"
	"sync"
)

// Catalog maps module type names to contracts. Safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	contracts map[string]Contract
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{contracts: make(map[string]Contract)}
}

// Register validates c and adds it under c.TypeName.
func (cat *Catalog) Register(c Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if _, exists := cat.contracts[c.TypeName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateContract, c.TypeName)
	}
	cat.contracts[c.TypeName] = c
	return nil
}

// Get returns the contract for typeName.
func (cat *Catalog) Get(typeName string) (Contract, error) {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	c, ok := cat.contracts[typeName]
	if !ok {
		return Contract{}, fmt.Errorf("%w: %s", ErrUnknownContract, typeName)
	}
	return c, nil
}

// TypeNames returns the registered type names in sorted order.
func (cat *Catalog) TypeNames() []string {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	names := make([]string, 0, len(cat.contracts))
	for n := range cat.contracts {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
