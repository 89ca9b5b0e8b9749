package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	xmlHeader = xml.Header

	errorUnsupportedFormat = "unsupported output format %q"
)

// BuildTreeDocument converts a forest into its structured output form.
func BuildTreeDocument(source *forest.Forest, includeSummary bool) types.TreeDocument {
	document := types.TreeDocument{Roots: []*types.TreeOutputNode{}}
	if source == nil {
		return document
	}
	if includeSummary {
		stats := source.Stats()
		document.Summary = &types.OutputSummary{
			Roots:       stats.Roots,
			Directories: stats.Directories,
			Files:       stats.Files,
		}
	}
	for _, rootID := range source.Roots() {
		document.Roots = append(document.Roots, buildTreeNode(source, rootID))
	}
	return document
}

func buildTreeNode(source *forest.Forest, id forest.NodeID) *types.TreeOutputNode {
	node, _ := source.Node(id)
	outputNode := &types.TreeOutputNode{
		Path:    node.Path,
		Name:    node.Name,
		Type:    nodeType(node.Kind),
		Depth:   node.Depth,
		Comment: node.Comment,
	}
	for _, childID := range source.Children(id) {
		outputNode.Children = append(outputNode.Children, buildTreeNode(source, childID))
	}
	return outputNode
}

func nodeType(kind forest.Kind) string {
	if kind.IsDirectory() {
		return types.NodeTypeDirectory
	}
	return types.NodeTypeFile
}

// RenderDocument marshals a structured document in the requested format.
func RenderDocument(document interface{}, format string) (string, error) {
	switch format {
	case types.FormatJSON:
		return RenderJSON(document)
	case types.FormatXML:
		return RenderXML(document)
	case types.FormatYAML:
		return RenderYAML(document)
	default:
		return "", fmt.Errorf(errorUnsupportedFormat, format)
	}
}

// RenderJSON marshals a document as indented JSON.
func RenderJSON(document interface{}) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// RenderXML marshals a document as an indented XML document.
func RenderXML(document interface{}) (string, error) {
	encoded, xmlMarshalError := xml.MarshalIndent(document, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// RenderYAML marshals a document as YAML.
func RenderYAML(document interface{}) (string, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndent)
	if yamlEncodeError := encoder.Encode(document); yamlEncodeError != nil {
		return "", yamlEncodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return "", closeError
	}
	return buffer.String(), nil
}
