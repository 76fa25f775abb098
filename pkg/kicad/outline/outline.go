// Package outline summarizes the statement structure of any KiCad
// S-expression file, including files the typed board grammar rejects.
package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/sexp"
)

// Node is one statement keyword. Sibling statements sharing a keyword are
// merged into a single node and counted.
type Node struct {
	Keyword  string
	Count    int
	Children []*Node
}

// Outline reads every top-level expression from r and returns the keyword
// tree down to depth levels. A depth of zero or less means no limit.
func Outline(r io.Reader, depth int) ([]*Node, error) {
	exprs, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	var roots []*Node
	for _, e := range exprs {
		if n := build(e, depth); n != nil {
			roots = merge(roots, n)
		}
	}
	return roots, nil
}

// String parses src and returns its outline.
func String(src string, depth int) ([]*Node, error) {
	return Outline(strings.NewReader(src), depth)
}

func build(e sexp.Sexp, depth int) *Node {
	if e == nil || e.IsLeaf() {
		return nil
	}
	items := listItems(e)
	n := &Node{Count: 1}
	if len(items) > 0 && items[0] != nil && items[0].IsLeaf() {
		n.Keyword = fmt.Sprint(items[0])
	}
	if depth == 1 || len(items) < 2 {
		return n
	}
	for _, it := range items[1:] {
		if child := build(it, depth-1); child != nil {
			n.Children = merge(n.Children, child)
		}
	}
	return n
}

// merge adds n to nodes, folding it into an existing node with the same
// keyword.
func merge(nodes []*Node, n *Node) []*Node {
	for _, existing := range nodes {
		if existing.Keyword == n.Keyword {
			existing.Count += n.Count
			for _, c := range n.Children {
				existing.Children = merge(existing.Children, c)
			}
			return nodes
		}
	}
	return append(nodes, n)
}

// listItems returns the elements of a list expression.
func listItems(s sexp.Sexp) []sexp.Sexp {
	var items []sexp.Sexp
	for s != nil && !s.IsLeaf() {
		n := s.LeafCount()
		if n == 0 {
			break
		}
		if head := s.Head(); head != nil {
			items = append(items, head)
		}
		if n <= 1 {
			break
		}
		s = s.Tail()
	}
	return items
}

// Find returns the first node on the path of keywords, or nil.
func Find(nodes []*Node, path ...string) *Node {
	var found *Node
	for _, kw := range path {
		found = nil
		for _, n := range nodes {
			if n.Keyword == kw {
				found = n
				break
			}
		}
		if found == nil {
			return nil
		}
		nodes = found.Children
	}
	return found
}

// Fprint writes the tree, one keyword per line indented two spaces per
// level, with a count suffix for repeated statements.
func Fprint(w io.Writer, nodes []*Node) error {
	return fprint(w, nodes, 0)
}

func fprint(w io.Writer, nodes []*Node, level int) error {
	for _, n := range nodes {
		kw := n.Keyword
		if kw == "" {
			kw = "()"
		}
		line := strings.Repeat("  ", level) + kw
		if n.Count > 1 {
			line += fmt.Sprintf(" x%d", n.Count)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := fprint(w, n.Children, level+1); err != nil {
			return err
		}
	}
	return nil
}
