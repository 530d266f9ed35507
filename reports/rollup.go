/*
Package reports turns flat account postings into nested, multi-column
financial statements.

PURPOSE:

	This package contains the shared hierarchical rollup engine and its
	two callers: the Profit & Loss builder (period columns) and the
	Balance Sheet builder (as-of columns, with the derived Retained
	Earnings and Net Income lines).

KEY CONCEPTS IN THIS FILE (rollup.go):
  - Tree: Accumulates (path, column, amount) tuples into nodes keyed by
    path segment, each holding a per-column "direct" vector
  - Rollup: Post-order pass making every node's "total" equal to its
    direct amounts plus everything beneath it
  - Flatten: Pre-order emission of report rows in lexicographic segment
    order, with a synthetic "Total <name>" row after each group

INVARIANT:

	For every node: total == direct + Σ children.total, element-wise,
	across all columns. Exactly - amounts accumulate at full decimal
	precision and are only rounded at the serialization boundary.

DETERMINISM:

	Children flatten in lexicographic order of segment name, so two runs
	over the same tuples produce identical row order and values no matter
	the insertion order.
*/
package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RowKind tags a flattened report row.
type RowKind string

const (
	// KindAccount is a leaf line with no children.
	KindAccount RowKind = "account"
	// KindGroup is a line that has children (possibly also postable itself).
	KindGroup RowKind = "group"
	// KindTotal is the synthetic "Total <name>" subtotal emitted after a
	// group's children.
	KindTotal RowKind = "total"
)

// Row is one flattened report line.
type Row struct {
	Label   string
	Path    string // full colon-joined path
	Level   int    // nesting depth, top-level = 0
	Kind    RowKind
	Amounts []decimal.Decimal // one per report column
	Total   decimal.Decimal   // sum across columns
}

type node struct {
	direct   []decimal.Decimal
	total    []decimal.Decimal
	children map[string]*node
}

func newNode(columns int) *node {
	return &node{
		direct:   zeroVector(columns),
		total:    zeroVector(columns),
		children: make(map[string]*node),
	}
}

// Tree accumulates postings grouped by an arbitrary hierarchy and
// flattens them into report rows. Built fresh per report request and
// discarded after flattening.
type Tree struct {
	columns int
	root    *node
}

// NewTree creates a rollup tree with the given number of report columns.
func NewTree(columns int) *Tree {
	return &Tree{columns: columns, root: newNode(columns)}
}

// Columns returns the column count.
func (t *Tree) Columns() int { return t.columns }

// Add walks/creates nodes along path and adds amount into the leaf
// node's direct vector at the column index.
func (t *Tree) Add(path []string, column int, amount decimal.Decimal) {
	if len(path) == 0 || column < 0 || column >= t.columns {
		return
	}
	n := t.root
	for _, segment := range path {
		child, ok := n.children[segment]
		if !ok {
			child = newNode(t.columns)
			n.children[segment] = child
		}
		n = child
	}
	n.direct[column] = n.direct[column].Add(amount)
}

// Totals rolls the tree up and returns the grand total vector: the sum
// of everything in the tree, per column.
func (t *Tree) Totals() []decimal.Decimal {
	t.rollup(t.root)
	out := make([]decimal.Decimal, t.columns)
	copy(out, t.root.total)
	return out
}

// Flatten rolls the tree up and emits rows for every top-level child
// (the invisible root is not emitted), pre-order, children in
// lexicographic segment order. A synthetic total row follows each
// group's children.
func (t *Tree) Flatten() []Row {
	t.rollup(t.root)
	var rows []Row
	for _, name := range sortedKeys(t.root.children) {
		rows = t.flattenNode(rows, name, nil, t.root.children[name], 0)
	}
	return rows
}

// rollup makes n.total = n.direct + Σ children.total, post-order.
func (t *Tree) rollup(n *node) {
	total := make([]decimal.Decimal, t.columns)
	copy(total, n.direct)
	for _, child := range n.children {
		t.rollup(child)
		for i := range total {
			total[i] = total[i].Add(child.total[i])
		}
	}
	n.total = total
}

func (t *Tree) flattenNode(rows []Row, name string, parentPath []string, n *node, level int) []Row {
	path := append(append([]string(nil), parentPath...), name)
	kind := KindAccount
	if len(n.children) > 0 {
		kind = KindGroup
	}

	rows = append(rows, Row{
		Label:   name,
		Path:    strings.Join(path, ":"),
		Level:   level,
		Kind:    kind,
		Amounts: copyVector(n.total),
		Total:   sumVector(n.total),
	})

	if len(n.children) == 0 {
		return rows
	}

	for _, childName := range sortedKeys(n.children) {
		rows = t.flattenNode(rows, childName, path, n.children[childName], level+1)
	}

	// Classic indented layout: group line, nested children, then a
	// bolded subtotal carrying the same amounts as the group row.
	rows = append(rows, Row{
		Label:   "Total " + name,
		Path:    strings.Join(path, ":"),
		Level:   level,
		Kind:    KindTotal,
		Amounts: copyVector(n.total),
		Total:   sumVector(n.total),
	})

	return rows
}

func sortedKeys(m map[string]*node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func zeroVector(n int) []decimal.Decimal {
	v := make([]decimal.Decimal, n)
	for i := range v {
		v[i] = decimal.Zero
	}
	return v
}

func copyVector(v []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(v))
	copy(out, v)
	return out
}

func sumVector(v []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range v {
		total = total.Add(d)
	}
	return total
}

// addVectors returns a + b element-wise.
func addVectors(a, b []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out
}

// subVectors returns a - b element-wise.
func subVectors(a, b []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a))
	for i := range a {
		out[i] = a[i].Sub(b[i])
	}
	return out
}
