package comments

import (
	"bytes"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// commentSeparator joins the comments of one snippet.
const commentSeparator = "\n"

// syntaxExtractor parses a snippet with the tree-sitter grammar of its
// language and collects the comment nodes of the resulting tree.
type syntaxExtractor struct {
	lang Language
	spec languageSpec
}

func newSyntaxExtractor(lang Language, spec languageSpec) *syntaxExtractor {
	return &syntaxExtractor{lang: lang, spec: spec}
}

func (e *syntaxExtractor) Language() Language { return e.lang }
func (e *syntaxExtractor) Strategy() Strategy { return Syntax }

// Extract tries each source rewrite of the language in turn. The first one
// that parses without errors wins; if none does, the result is a Failure.
func (e *syntaxExtractor) Extract(source string) Result {
	for _, a := range e.spec.attempts {
		text, ok := e.extractFrom([]byte(a.rewrite(source)), a.header)
		if ok {
			return Success(text)
		}
	}
	return Failure(fmt.Errorf("%w as %s", ErrParse, e.lang))
}

// extractFrom parses one candidate source. Parsers are not safe for
// concurrent use, so each call owns its own.
func (e *syntaxExtractor) extractFrom(source []byte, header string) (string, bool) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(e.spec.grammar()); err != nil {
		return "", false
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return "", false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return "", false
	}
	if header != "" && !containerSpansSource(root, source, header) {
		return "", false
	}

	var found []string
	walkTree(root, func(n *sitter.Node) bool {
		if e.isComment(n) {
			if text := cleanComment(extractNodeText(n, source)); text != "" {
				found = append(found, text)
			}
			return false
		}
		return true
	})

	return strings.Join(found, commentSeparator), true
}

// containerSpansSource reports whether the synthetic container is the only
// top-level declaration and closes at the very end of the source. A snippet
// with unbalanced braces can borrow the container's closing brace and still
// parse, which leaves the container ending early or a sibling next to it.
func containerSpansSource(root *sitter.Node, source []byte, header string) bool {
	start := bytes.Index(source, []byte(header))
	if start < 0 {
		return false
	}

	var container *sitter.Node
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Kind() == "php_tag" {
			continue
		}
		if container != nil {
			return false
		}
		container = child
	}

	return container != nil &&
		container.StartByte() == uint(start) &&
		container.EndByte() == uint(len(source))
}

func (e *syntaxExtractor) isComment(n *sitter.Node) bool {
	if e.spec.commentKinds[n.Kind()] {
		return true
	}
	return e.spec.docstrings && isDocstring(n)
}

// isDocstring reports whether n is a string literal that forms the first
// statement of a module, class or function body.
func isDocstring(n *sitter.Node) bool {
	if n.Kind() != "string" {
		return false
	}

	stmt := n.Parent()
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}

	body := stmt.Parent()
	if body == nil || (body.Kind() != "module" && body.Kind() != "block") {
		return false
	}

	first := body.NamedChild(0)
	return first != nil && first.StartByte() == stmt.StartByte()
}

// walkTree recursively walks a tree-sitter tree in source order and calls the
// visitor for each node. Returning false skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
