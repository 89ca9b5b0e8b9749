// Package forest holds the in-memory model of a parsed directory tree.
//
// Nodes live in an arena owned by the Forest and refer to each other by NodeID,
// so parents and children never hold pointers to one another.
package forest

import (
	"errors"
	"fmt"
)

// PathSeparator joins node names into forest paths.
const PathSeparator = "/"

// NoParent marks a root node.
const NoParent NodeID = -1

// NodeID identifies a node inside its Forest.
type NodeID int

// Kind distinguishes directories from files.
type Kind uint8

const (
	// KindDirectory is a directory node; only directories carry children.
	KindDirectory Kind = iota + 1
	// KindFile is a regular file node.
	KindFile
)

// String returns the lowercase kind label.
func (kind Kind) String() string {
	switch kind {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// IsDirectory reports whether the kind is KindDirectory.
func (kind Kind) IsDirectory() bool {
	return kind == KindDirectory
}

var (
	errChildOfFile = errors.New("files cannot hold children")
	errEmptyName   = errors.New("empty name")
)

// directoryData carries the fields that only directories have.
type directoryData struct {
	children []NodeID
}

// Node is a single file or directory.
type Node struct {
	ID      NodeID
	Name    string
	Kind    Kind
	Depth   int
	Path    string
	Comment string
	Parent  NodeID

	directory *directoryData
}

// IsDirectory reports whether the node is a directory.
func (node Node) IsDirectory() bool {
	return node.Kind.IsDirectory()
}

// IsRoot reports whether the node has no parent.
func (node Node) IsRoot() bool {
	return node.Parent == NoParent
}

// Forest is an ordered collection of root nodes and their descendants.
type Forest struct {
	nodes []Node
	roots []NodeID
}

// New returns an empty forest.
func New() *Forest {
	return &Forest{}
}

// Len returns the number of nodes in the forest.
func (forest *Forest) Len() int {
	return len(forest.nodes)
}

// IsEmpty reports whether the forest has no nodes.
func (forest *Forest) IsEmpty() bool {
	return len(forest.nodes) == 0
}

// Roots returns the root identifiers in source order.
func (forest *Forest) Roots() []NodeID {
	return append([]NodeID(nil), forest.roots...)
}

// Node returns a copy of the node with the given identifier.
func (forest *Forest) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(forest.nodes) {
		return Node{}, false
	}
	return forest.nodes[id], true
}

// Children returns the ordered children of a directory. Files have none.
func (forest *Forest) Children(id NodeID) []NodeID {
	node, ok := forest.Node(id)
	if !ok || node.directory == nil {
		return nil
	}
	return append([]NodeID(nil), node.directory.children...)
}

// Parent returns the parent of a node, if any.
func (forest *Forest) Parent(id NodeID) (Node, bool) {
	node, ok := forest.Node(id)
	if !ok || node.Parent == NoParent {
		return Node{}, false
	}
	return forest.Node(node.Parent)
}

// add appends a node under parent (or as a root when parent is NoParent) and
// derives its depth and path from the parent chain.
func (forest *Forest) add(parent NodeID, name string, kind Kind, comment string) (NodeID, error) {
	node := Node{
		ID:      NodeID(len(forest.nodes)),
		Name:    name,
		Kind:    kind,
		Comment: comment,
		Parent:  parent,
		Path:    name,
	}
	if kind == KindDirectory {
		node.directory = &directoryData{}
	}
	if parent == NoParent {
		forest.nodes = append(forest.nodes, node)
		forest.roots = append(forest.roots, node.ID)
		return node.ID, nil
	}
	parentNode, ok := forest.Node(parent)
	if !ok {
		return NoParent, fmt.Errorf("unknown parent %d for %q", parent, name)
	}
	if parentNode.directory == nil {
		return NoParent, fmt.Errorf("attach %q under %q: %w", name, parentNode.Path, errChildOfFile)
	}
	node.Depth = parentNode.Depth + 1
	node.Path = parentNode.Path + PathSeparator + name
	forest.nodes = append(forest.nodes, node)
	parentNode.directory.children = append(parentNode.directory.children, node.ID)
	return node.ID, nil
}

// Walk visits every node in pre-order (parent before children, siblings in
// source order). It stops at the first error returned by visit.
func (forest *Forest) Walk(visit func(Node) error) error {
	stack := make([]NodeID, 0, len(forest.roots))
	for index := len(forest.roots) - 1; index >= 0; index-- {
		stack = append(stack, forest.roots[index])
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := forest.nodes[current]
		if err := visit(node); err != nil {
			return err
		}
		if node.directory == nil {
			continue
		}
		children := node.directory.children
		for index := len(children) - 1; index >= 0; index-- {
			stack = append(stack, children[index])
		}
	}
	return nil
}

// Subtree returns the node and all of its descendants in pre-order.
func (forest *Forest) Subtree(id NodeID) []Node {
	if _, ok := forest.Node(id); !ok {
		return nil
	}
	var result []Node
	stack := []NodeID{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := forest.nodes[current]
		result = append(result, node)
		if node.directory == nil {
			continue
		}
		children := node.directory.children
		for index := len(children) - 1; index >= 0; index-- {
			stack = append(stack, children[index])
		}
	}
	return result
}

// Nodes returns every node in pre-order.
func (forest *Forest) Nodes() []Node {
	result := make([]Node, 0, len(forest.nodes))
	_ = forest.Walk(func(node Node) error {
		result = append(result, node)
		return nil
	})
	return result
}

// Stats counts nodes by kind.
type Stats struct {
	Roots       int `json:"roots" xml:"roots" yaml:"roots"`
	Directories int `json:"directories" xml:"directories" yaml:"directories"`
	Files       int `json:"files" xml:"files" yaml:"files"`
}

// Stats returns node counts for the forest.
func (forest *Forest) Stats() Stats {
	stats := Stats{Roots: len(forest.roots)}
	for _, node := range forest.nodes {
		if node.IsDirectory() {
			stats.Directories++
		} else {
			stats.Files++
		}
	}
	return stats
}
