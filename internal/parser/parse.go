package parser

import "github.com/tyemirov/treeforge/internal/forest"

// Parse normalizes, classifies and builds raw tree text into a forest.
// Text without any entry yields an empty forest.
func Parse(raw string) *forest.Forest {
	return forest.Build(ClassifyAll(Normalize(raw)))
}
