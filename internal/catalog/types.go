package catalog

import (
	"sort"
	"time"

	"github.com/star/rsky/internal/orbit"
)

// System is a named planet with validated orbital elements in radians.
type System struct {
	Name   string       `json:"name"`
	Host   string       `json:"host,omitempty"`
	Params orbit.Params `json:"params"`
}

// Catalog is an immutable set of systems loaded from one source.
type Catalog struct {
	Source   string
	LoadedAt time.Time
	Systems  []System

	byName map[string]int
}

// New builds a catalog, indexing systems by name. Later duplicates are
// expected to have been dropped by the parser.
func New(source string, loadedAt time.Time, systems []System) *Catalog {
	byName := make(map[string]int, len(systems))
	for i, s := range systems {
		byName[s.Name] = i
	}
	return &Catalog{
		Source:   source,
		LoadedAt: loadedAt,
		Systems:  systems,
		byName:   byName,
	}
}

// Lookup returns the named system.
func (c *Catalog) Lookup(name string) (System, bool) {
	i, ok := c.byName[name]
	if !ok {
		return System{}, false
	}
	return c.Systems[i], true
}

// Names returns the system names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Systems))
	for _, s := range c.Systems {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
