// Package depgraph holds the dependency-graph representation consumed by
// remediation tooling: a flat graph of package@version nodes hanging off a
// single root.
package depgraph

import "fmt"

// PkgInfo identifies a package node.
type PkgInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PkgManager describes the ecosystem a graph belongs to.
type PkgManager struct {
	Name string `json:"name"`
}

// Node is a package and its outgoing dependency edges.
type Node struct {
	ID   string   `json:"nodeId"`
	Info PkgInfo  `json:"pkgInfo"`
	Deps []string `json:"deps"`
}

// Graph is a finalized dependency graph. Nodes preserve insertion order,
// with the root first.
type Graph struct {
	PkgManager PkgManager `json:"pkgManager"`
	Nodes      []*Node    `json:"graph"`
}

// Root returns the graph's root node.
func (g *Graph) Root() *Node {
	return g.Nodes[0]
}

// rootNodeID is the predefined identifier of the root node.
const rootNodeID = "root-node"

// Builder accumulates nodes and edges and produces an immutable Graph.
type Builder struct {
	pkgManager PkgManager
	nodes      []*Node
	index      map[string]*Node
}

// NewBuilder returns a Builder whose root node carries rootInfo.
func NewBuilder(pm PkgManager, rootInfo PkgInfo) *Builder {
	b := &Builder{
		pkgManager: pm,
		index:      make(map[string]*Node),
	}
	b.AddPkgNode(rootInfo, rootNodeID)
	return b
}

// RootNodeID returns the predefined root identifier.
func (b *Builder) RootNodeID() string {
	return rootNodeID
}

// AddPkgNode records a package node under the given id. Adding an existing
// id updates its package info and keeps its position and edges.
func (b *Builder) AddPkgNode(info PkgInfo, id string) {
	if n, ok := b.index[id]; ok {
		n.Info = info
		return
	}
	n := &Node{ID: id, Info: info}
	b.nodes = append(b.nodes, n)
	b.index[id] = n
}

// ConnectDep adds a dependency edge between two existing nodes.
func (b *Builder) ConnectDep(fromID, toID string) error {
	from, ok := b.index[fromID]
	if !ok {
		return fmt.Errorf("connecting dep: unknown node %q", fromID)
	}
	if _, ok := b.index[toID]; !ok {
		return fmt.Errorf("connecting dep: unknown node %q", toID)
	}
	from.Deps = append(from.Deps, toID)
	return nil
}

// Build finalizes the graph.
func (b *Builder) Build() *Graph {
	return &Graph{PkgManager: b.pkgManager, Nodes: b.nodes}
}
