// Package dataset holds the numeric training tables consumed by the network.
//
// A table is a header plus fixed-width float64 rows. The upstream search-tree
// flattener writes one row per explored node: objective value, node age,
// per-variable coefficients, reduced costs, values and bounds, then
// per-constraint cosine similarity, tightness and dual value. The binary
// decision indicators ("var j value") are the targets.
package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Table is an in-memory numeric table with named columns.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Indices resolves several column names at once.
func (t *Table) Indices(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, err := t.Index(name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	return idx, nil
}

// ColumnsMatching returns, in header order, the indices of every column
// whose name starts with prefix and ends with suffix. With prefix "var " and
// suffix " value" this selects the per-variable solution values used as
// targets.
func (t *Table) ColumnsMatching(prefix, suffix string) []int {
	var idx []int
	for i, c := range t.Columns {
		if strings.HasPrefix(c, prefix) && strings.HasSuffix(c, suffix) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Complement returns, in header order, the indices not present in cols.
func (t *Table) Complement(cols []int) []int {
	skip := make(map[int]bool, len(cols))
	for _, c := range cols {
		skip[c] = true
	}
	rest := make([]int, 0, t.Width())
	for i := range t.Columns {
		if !skip[i] {
			rest = append(rest, i)
		}
	}
	return rest
}

// Project returns a new table holding only cols, in the given order.
// Row data is copied.
func (t *Table) Project(cols []int) (*Table, error) {
	for _, c := range cols {
		if c < 0 || c >= t.Width() {
			return nil, fmt.Errorf("%w: index %d (width %d)", ErrUnknownColumn, c, t.Width())
		}
	}

	out := &Table{
		Columns: make([]string, len(cols)),
		Rows:    make([][]float64, len(t.Rows)),
	}
	for i, c := range cols {
		out.Columns[i] = t.Columns[c]
	}
	for r, row := range t.Rows {
		projected := make([]float64, len(cols))
		for i, c := range cols {
			projected[i] = row[c]
		}
		out.Rows[r] = projected
	}
	return out, nil
}

// ValidateTargets checks that every value in cols is exactly 0 or 1.
func (t *Table) ValidateTargets(cols []int) error {
	if len(t.Rows) == 0 {
		return ErrEmpty
	}
	for _, c := range cols {
		if c < 0 || c >= t.Width() {
			return fmt.Errorf("%w: index %d (width %d)", ErrUnknownColumn, c, t.Width())
		}
	}
	for r, row := range t.Rows {
		for _, c := range cols {
			if v := row[c]; v != 0 && v != 1 {
				return fmt.Errorf("%w: row %d, column %q has value %v", ErrNotBinary, r+1, t.Columns[c], v)
			}
		}
	}
	return nil
}

// ReplaceNonFinite overwrites NaN and ±Inf cells in cols with v and reports
// how many were replaced. A nil cols covers every column. Cosine similarity
// of an all-zero constraint row is NaN upstream, so real tables do contain them.
func (t *Table) ReplaceNonFinite(v float64, cols []int) int {
	if cols == nil {
		cols = make([]int, t.Width())
		for i := range cols {
			cols[i] = i
		}
	}
	n := 0
	for _, row := range t.Rows {
		for _, c := range cols {
			if c < 0 || c >= len(row) {
				continue
			}
			if x := row[c]; math.IsNaN(x) || math.IsInf(x, 0) {
				row[c] = v
				n++
			}
		}
	}
	return n
}

// Split shuffles the rows with rng and returns (train, heldOut) where
// heldOut has round(frac * Len()) rows. The tables share row slices with t.
// A nil rng keeps the original order.
func (t *Table) Split(frac float64, rng *rand.Rand) (*Table, *Table) {
	frac = math.Max(0, math.Min(1, frac))

	order := make([]int, len(t.Rows))
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	nHeld := int(math.Round(frac * float64(len(order))))
	nTrain := len(order) - nHeld

	train := &Table{Columns: t.Columns, Rows: make([][]float64, 0, nTrain)}
	held := &Table{Columns: t.Columns, Rows: make([][]float64, 0, nHeld)}
	for i, r := range order {
		if i < nTrain {
			train.Rows = append(train.Rows, t.Rows[r])
		} else {
			held.Rows = append(held.Rows, t.Rows[r])
		}
	}
	return train, held
}
