package framework

import (
	dErrors "certus/pkg/domain-errors"
)

// Catalog holds the immutable framework definitions. It is pure data with no
// store behind it; the seed is compiled in and lookups are id-indexed.
type Catalog struct {
	frameworks map[string]ComplianceFramework
	ordered    []string
}

// NewCatalog builds a catalog from the given frameworks, preserving order
// for listing.
func NewCatalog(frameworks []ComplianceFramework) *Catalog {
	c := &Catalog{frameworks: make(map[string]ComplianceFramework, len(frameworks))}
	for _, f := range frameworks {
		if _, exists := c.frameworks[f.ID]; exists {
			continue
		}
		c.frameworks[f.ID] = f
		c.ordered = append(c.ordered, f.ID)
	}
	return c
}

// Get returns the framework with the given id.
func (c *Catalog) Get(id string) (ComplianceFramework, error) {
	f, ok := c.frameworks[id]
	if !ok {
		return ComplianceFramework{}, dErrors.New(dErrors.CodeFrameworkNotFound, "unknown framework: "+id)
	}
	return f, nil
}

// Exists reports whether a framework id is known.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.frameworks[id]
	return ok
}

// List returns all frameworks in seed order.
func (c *Catalog) List() []ComplianceFramework {
	out := make([]ComplianceFramework, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, c.frameworks[id])
	}
	return out
}
