package codemeta

import "fmt"

// NodeKind distinguishes the two node shapes when walking a tree.
type NodeKind string

const (
	KindStruct   NodeKind = "struct"
	KindFunction NodeKind = "function"
)

// NodeRef describes one visited node.
type NodeRef struct {
	Path    string
	Kind    NodeKind
	Name    string
	Content *string
}

// RootPath is the path of the i-th root of a batch.
func RootPath(i int) string {
	return fmt.Sprintf("batch[%d]", i)
}

// FunctionPath is the path of the i-th function under parent.
func FunctionPath(parent string, i int) string {
	return fmt.Sprintf("%s.Functions[%d]", parent, i)
}

// InnerPath is the path of the i-th inner structure under parent.
func InnerPath(parent string, i int) string {
	return fmt.Sprintf("%s.InnerStructures[%d]", parent, i)
}

// Walk visits every non-nil node of the batch in pre-order: a struct, then its
// functions, then its inner structures. Returning false from visit stops
// descent into that struct's children.
func Walk(batch []*DataStruct, visit func(NodeRef) bool) {
	for i, root := range batch {
		walkStruct(root, RootPath(i), visit)
	}
}

func walkStruct(d *DataStruct, path string, visit func(NodeRef) bool) {
	if d == nil {
		return
	}

	if !visit(NodeRef{Path: path, Kind: KindStruct, Name: d.NodeName, Content: d.Content}) {
		return
	}

	for i, fn := range d.Functions {
		if fn == nil {
			continue
		}
		visit(NodeRef{Path: FunctionPath(path, i), Kind: KindFunction, Name: fn.Name, Content: fn.Content})
	}

	for i, inner := range d.InnerStructures {
		walkStruct(inner, InnerPath(path, i), visit)
	}
}

// CountNodes returns the number of non-nil nodes in the batch.
func CountNodes(batch []*DataStruct) int {
	n := 0
	Walk(batch, func(NodeRef) bool {
		n++
		return true
	})
	return n
}
