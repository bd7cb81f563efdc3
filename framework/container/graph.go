package container

import (
	stderrors "errors"
	"slices"
	"sort"
)

// Node describes one binding for inspection.
type Node struct {
	Name    string   `json:"name" yaml:"name"`
	Kind    string   `json:"kind" yaml:"kind"`
	Shared  bool     `json:"shared,omitempty" yaml:"shared,omitempty"`
	Deps    []string `json:"deps,omitempty" yaml:"deps,omitempty"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Describe returns every binding with its declared dependencies, sorted by
// name. Deferred names that have not been loaded yet are reported with kind
// "deferred".
func (c *Container) Describe() []Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	aliases := make(map[string][]string)
	for alias, target := range c.aliases {
		aliases[target] = append(aliases[target], alias)
	}

	nodes := make([]Node, 0, len(c.bindings)+len(c.deferred))
	for name, b := range c.bindings {
		nodes = append(nodes, Node{
			Name:    name,
			Kind:    b.kind(),
			Shared:  b.slot != nil,
			Deps:    slices.Clone(b.deps()),
			Aliases: sorted(aliases[name]),
		})
	}
	for name := range c.deferred {
		if _, bound := c.bindings[name]; bound {
			continue
		}
		nodes = append(nodes, Node{Name: name, Kind: "deferred", Aliases: sorted(aliases[name])})
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

// Validate plans every registered binding without building anything and
// returns all unknown-dependency and cycle errors found, joined. Deferred
// names count as known and are not loaded.
func (c *Container) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for _, name := range c.Bindings() {
		if _, err := c.plan(name, "", nil, true); err != nil {
			if msg := err.Error(); !seen[msg] {
				seen[msg] = true
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}

func sorted(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := slices.Clone(ss)
	sort.Strings(out)
	return out
}
