package asset

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/matext/material"
)

// Manifest describes a composite asset: a named set of base materials and a
// tree of nodes that reference them by name.
//
//	name = "ship"
//
//	[materials.hull]
//	base_color = "gray"
//	roughness = 0.6
//
//	[[nodes]]
//	name = "hull"
//	material = "hull"
//
//	[[nodes.children]]
//	name = "turret"
//	material = "hull"
type Manifest struct {
	Name      string                   `toml:"name"`
	Materials map[string]material.Base `toml:"materials"`
	Nodes     []Node                   `toml:"nodes"`
}

// Node is one entity of the asset tree. Material is empty for pure
// transform nodes.
type Node struct {
	Name     string `toml:"name"`
	Material string `toml:"material"`
	Children []Node `toml:"children"`
}

// DecodeManifest reads a TOML manifest. Unknown keys are rejected.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Validate checks that every node has a name and names a known material.
func (m *Manifest) Validate() error {
	var walk func(path string, nodes []Node) error
	walk = func(path string, nodes []Node) error {
		for i, n := range nodes {
			p := fmt.Sprintf("%s/%s", path, n.Name)
			if n.Name == "" {
				return fmt.Errorf("%w: node %d under %q has no name", ErrInvalidManifest, i, path)
			}
			if n.Material != "" {
				if _, ok := m.Materials[n.Material]; !ok {
					return fmt.Errorf("%w: %q at %s", ErrUnknownMaterial, n.Material, p)
				}
			}
			if err := walk(p, n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(m.Name, m.Nodes)
}

// Count returns the number of nodes in the manifest tree.
func (m *Manifest) Count() int {
	var count func([]Node) int
	count = func(nodes []Node) int {
		n := len(nodes)
		for _, c := range nodes {
			n += count(c.Children)
		}
		return n
	}
	return count(m.Nodes)
}

// Key returns the lookup key for an asset name: trimmed, NFC-normalized and
// case-folded. Names differing only in case or normalization share a key.
func Key(name string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}
