package entities

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []ComponentType
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op Operation, components []ComponentType) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   make([]QueryNode, 0),
		components: components,
	}
}

// nodeMask builds the mask of the node's components that some layout of em
// uses. Components no layout uses are reported through missing.
func (n *compositeNode) nodeMask(em *EntityManager) (m mask.Mask, missing bool) {
	for _, ct := range n.components {
		row, ok := em.rowOf(ct)
		if !ok {
			missing = true
			continue
		}
		m.Mark(row)
	}
	return m, missing
}

func (n *compositeNode) Evaluate(layout *Layout, em *EntityManager) bool {
	nodeMask, missing := n.nodeMask(em)
	layoutMask := layout.mask

	switch n.op {
	case OpAnd:
		if missing || !layoutMask.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(layout, em) {
				return false
			}
		}
		return true

	case OpOr:
		if layoutMask.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(layout, em) {
				return true
			}
		}
		return false

	case OpNot:
		if len(n.children) == 0 {
			return layoutMask.ContainsNone(nodeMask)
		}
		for _, child := range n.children {
			if child.Evaluate(layout, em) {
				return false
			}
		}
		return !layoutMask.ContainsAny(nodeMask)
	}
	return false
}

func (q *query) And(items ...any) QueryNode {
	return q.node(OpAnd, items)
}

func (q *query) Or(items ...any) QueryNode {
	return q.node(OpOr, items)
}

func (q *query) Not(items ...any) QueryNode {
	return q.node(OpNot, items)
}

func (q *query) node(op Operation, items []any) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(op, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) processItems(items ...any) ([]ComponentType, []QueryNode) {
	components := make([]ComponentType, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case ComponentType:
			components = append(components, v)
		case []ComponentType:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (q *query) Evaluate(layout *Layout, em *EntityManager) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(layout, em)
}
