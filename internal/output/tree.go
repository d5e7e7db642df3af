package output

import (
	"strings"
)

const (
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "

	// annotationColumn aligns node annotations.
	annotationColumn = 40
)

// TreeNode is one node of a rendered hierarchy. Children keep insertion order.
type TreeNode struct {
	Name       string
	Annotation string
	Children   []*TreeNode
}

// Add appends a child node and returns it.
func (n *TreeNode) Add(name, annotation string) *TreeNode {
	child := &TreeNode{Name: name, Annotation: annotation}
	n.Children = append(n.Children, child)
	return child
}

// RenderTree renders root and its descendants with box-drawing connectors.
func RenderTree(root *TreeNode) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleSummary.Render(root.Name))
	if root.Annotation != "" {
		sb.WriteString("  ")
		sb.WriteString(StyleDim.Render(root.Annotation))
	}
	sb.WriteString("\n")
	for i, child := range root.Children {
		renderNode(&sb, child, "", i == len(root.Children)-1)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, node *TreeNode, prefix string, isLast bool) {
	connector := treeEdge
	childPrefix := prefix + treeVert
	if isLast {
		connector = treeLast
		childPrefix = prefix + treeSpace
	}

	line := prefix + connector + node.Name
	if node.Annotation != "" {
		padding := annotationColumn - len([]rune(line))
		if padding < 2 {
			padding = 2
		}
		line += strings.Repeat(" ", padding) + StyleDim.Render(node.Annotation)
	}
	sb.WriteString(line)
	sb.WriteString("\n")

	for i, child := range node.Children {
		renderNode(sb, child, childPrefix, i == len(node.Children)-1)
	}
}
