package reports_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/bookkeeper/reports"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func rowAmounts(r reports.Row) []float64 {
	out := make([]float64, len(r.Amounts))
	for i, d := range r.Amounts {
		out[i], _ = d.Float64()
	}
	return out
}

// findRow returns the first row matching label and kind.
func findRow(t *testing.T, rows []reports.Row, label string, kind reports.RowKind) reports.Row {
	t.Helper()
	for _, r := range rows {
		if r.Label == label && r.Kind == kind {
			return r
		}
	}
	t.Fatalf("no %s row with label %q", kind, label)
	return reports.Row{}
}

// =============================================================================
// ROLLUP INVARIANT TESTS
// =============================================================================

func TestTree_GroupTotalEqualsDirectPlusChildren(t *testing.T) {
	// GIVEN: A group with a directly-postable parent and two children
	tree := reports.NewTree(1)
	tree.Add([]string{"Fees"}, 0, dec(100))
	tree.Add([]string{"Fees", "Accounting"}, 0, dec(650))
	tree.Add([]string{"Fees", "Legal"}, 0, dec(250))

	// THEN: The group row carries direct + children
	rows := tree.Flatten()
	group := findRow(t, rows, "Fees", reports.KindGroup)
	assert.Equal(t, []float64{1000}, rowAmounts(group))

	total := findRow(t, rows, "Total Fees", reports.KindTotal)
	assert.Equal(t, []float64{1000}, rowAmounts(total))

	grand := tree.Totals()
	assert.True(t, grand[0].Equal(dec(1000)))
}

func TestTree_DeepNestingRollsUpEachLevel(t *testing.T) {
	tree := reports.NewTree(1)
	tree.Add([]string{"A", "B", "C"}, 0, dec(5))
	tree.Add([]string{"A", "B", "D"}, 0, dec(7))
	tree.Add([]string{"A", "E"}, 0, dec(1))

	rows := tree.Flatten()
	assert.Equal(t, []float64{13}, rowAmounts(findRow(t, rows, "A", reports.KindGroup)))
	assert.Equal(t, []float64{12}, rowAmounts(findRow(t, rows, "B", reports.KindGroup)))
	assert.Equal(t, []float64{5}, rowAmounts(findRow(t, rows, "C", reports.KindAccount)))
	assert.Equal(t, []float64{1}, rowAmounts(findRow(t, rows, "E", reports.KindAccount)))
}

func TestTree_InsertionOrderDoesNotMatter(t *testing.T) {
	// GIVEN: The same tuples added in two different orders
	forward := reports.NewTree(2)
	forward.Add([]string{"Rent"}, 0, dec(1500))
	forward.Add([]string{"Fees", "Legal"}, 1, dec(200))
	forward.Add([]string{"Fees", "Accounting"}, 0, dec(650))

	backward := reports.NewTree(2)
	backward.Add([]string{"Fees", "Accounting"}, 0, dec(650))
	backward.Add([]string{"Fees", "Legal"}, 1, dec(200))
	backward.Add([]string{"Rent"}, 0, dec(1500))

	// THEN: Flattened rows are identical in order and values
	a, b := forward.Flatten(), backward.Flatten()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Label, b[i].Label)
		assert.Equal(t, a[i].Kind, b[i].Kind)
		assert.Equal(t, rowAmounts(a[i]), rowAmounts(b[i]))
	}
}

func TestTree_FlattenOrderIsLexicographicPreOrder(t *testing.T) {
	tree := reports.NewTree(1)
	tree.Add([]string{"Zulu"}, 0, dec(1))
	tree.Add([]string{"Alpha", "Nested"}, 0, dec(2))
	tree.Add([]string{"Mike"}, 0, dec(3))

	rows := tree.Flatten()
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"Alpha", "Nested", "Total Alpha", "Mike", "Zulu"}, labels)
}

func TestTree_LevelsAndPaths(t *testing.T) {
	tree := reports.NewTree(1)
	tree.Add([]string{"Fees", "Accounting"}, 0, dec(650))

	rows := tree.Flatten()
	group := findRow(t, rows, "Fees", reports.KindGroup)
	leaf := findRow(t, rows, "Accounting", reports.KindAccount)
	total := findRow(t, rows, "Total Fees", reports.KindTotal)

	assert.Equal(t, 0, group.Level)
	assert.Equal(t, "Fees", group.Path)
	assert.Equal(t, 1, leaf.Level)
	assert.Equal(t, "Fees:Accounting", leaf.Path)
	// The total row sits at the group's level with the group's path.
	assert.Equal(t, 0, total.Level)
	assert.Equal(t, "Fees", total.Path)
}

func TestTree_LeafHasNoTotalRow(t *testing.T) {
	tree := reports.NewTree(1)
	tree.Add([]string{"Rent"}, 0, dec(1500))

	rows := tree.Flatten()
	require.Len(t, rows, 1)
	assert.Equal(t, reports.KindAccount, rows[0].Kind)
}

func TestTree_MultiColumnAccumulation(t *testing.T) {
	// GIVEN: Amounts landing in different columns, with repeats
	tree := reports.NewTree(3)
	tree.Add([]string{"Sales"}, 0, dec(100))
	tree.Add([]string{"Sales"}, 0, dec(50))
	tree.Add([]string{"Sales"}, 2, dec(25))

	rows := tree.Flatten()
	require.Len(t, rows, 1)
	assert.Equal(t, []float64{150, 0, 25}, rowAmounts(rows[0]))

	f, _ := rows[0].Total.Float64()
	assert.Equal(t, 175.0, f)
}

func TestTree_NegativeAmountsSumThrough(t *testing.T) {
	// Contra accounts net against their siblings.
	tree := reports.NewTree(1)
	tree.Add([]string{"Sales", "Gross"}, 0, dec(1000))
	tree.Add([]string{"Sales", "Refunds"}, 0, dec(-120))

	rows := tree.Flatten()
	assert.Equal(t, []float64{880}, rowAmounts(findRow(t, rows, "Sales", reports.KindGroup)))
}

func TestTree_EmptyTreeFlattensToNothing(t *testing.T) {
	tree := reports.NewTree(2)
	assert.Empty(t, tree.Flatten())

	totals := tree.Totals()
	require.Len(t, totals, 2)
	assert.True(t, totals[0].IsZero())
	assert.True(t, totals[1].IsZero())
}
