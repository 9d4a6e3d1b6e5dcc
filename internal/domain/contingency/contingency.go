// Package contingency builds reference × system co-occurrence tables from
// paired frame labels.
package contingency

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a contingency matrix: cell (i, j) counts the frames labeled with
// the i-th reference class and the j-th system class. Counts are stored as
// float64, which is exact for any realistic frame count.
type Matrix struct {
	counts *mat.Dense
}

// Table is a Matrix together with the sorted classes indexing its rows and
// columns.
type Table[L cmp.Ordered] struct {
	*Matrix
	RefClasses []L
	SysClasses []L
}

// Build counts co-occurrences of ref[k] and sys[k]. Row and column classes
// are the sorted distinct values of ref and sys.
func Build[L cmp.Ordered](ref, sys []L) (Table[L], error) {
	if len(ref) != len(sys) {
		return Table[L]{}, fmt.Errorf("%w: %d reference vs %d system labels", ErrLengthMismatch, len(ref), len(sys))
	}
	if len(ref) == 0 {
		return Table[L]{}, ErrEmpty
	}

	refClasses, refIndex := classes(ref)
	sysClasses, sysIndex := classes(sys)
	cols := len(sysClasses)
	data := make([]float64, len(refClasses)*cols)
	for k := range ref {
		data[refIndex[ref[k]]*cols+sysIndex[sys[k]]]++
	}

	return Table[L]{
		Matrix:     &Matrix{counts: mat.NewDense(len(refClasses), cols, data)},
		RefClasses: refClasses,
		SysClasses: sysClasses,
	}, nil
}

func classes[L cmp.Ordered](labels []L) ([]L, map[L]int) {
	uniq := slices.Clone(labels)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)
	index := make(map[L]int, len(uniq))
	for i, l := range uniq {
		index[l] = i
	}
	return uniq, index
}

// New wraps pre-computed counts. Rows must be non-empty, of equal length,
// and hold non-negative counts with a positive total.
func New(counts [][]float64) (*Matrix, error) {
	if len(counts) == 0 || len(counts[0]) == 0 {
		return nil, ErrEmpty
	}
	cols := len(counts[0])
	data := make([]float64, 0, len(counts)*cols)
	for i, row := range counts {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidCounts, i, len(row), cols)
		}
		for _, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("%w: negative count %v in row %d", ErrInvalidCounts, v, i)
			}
		}
		data = append(data, row...)
	}
	if floats.Sum(data) == 0 {
		return nil, fmt.Errorf("%w: all counts are zero", ErrInvalidCounts)
	}
	return &Matrix{counts: mat.NewDense(len(counts), cols, data)}, nil
}

// Dims returns the number of reference and system classes.
func (m *Matrix) Dims() (int, int) { return m.counts.Dims() }

// At returns the count of cell (i, j).
func (m *Matrix) At(i, j int) float64 { return m.counts.At(i, j) }

// Total returns the sum of all cells, the number of frames.
func (m *Matrix) Total() float64 { return mat.Sum(m.counts) }

// RowSums returns the reference class marginals.
func (m *Matrix) RowSums() []float64 {
	r, _ := m.counts.Dims()
	sums := make([]float64, r)
	for i := range sums {
		sums[i] = floats.Sum(m.counts.RawRowView(i))
	}
	return sums
}

// ColSums returns the system class marginals.
func (m *Matrix) ColSums() []float64 {
	r, c := m.counts.Dims()
	sums := make([]float64, c)
	for i := 0; i < r; i++ {
		floats.Add(sums, m.counts.RawRowView(i))
	}
	return sums
}

// NonZero calls fn for every non-zero cell in row-major order. Metric sums
// run in this order, which makes them reproducible across platforms.
func (m *Matrix) NonZero(fn func(i, j int, v float64)) {
	r, _ := m.counts.Dims()
	for i := 0; i < r; i++ {
		for j, v := range m.counts.RawRowView(i) {
			if v != 0 {
				fn(i, j, v)
			}
		}
	}
}

// RowNormalized returns a copy of the counts with each row scaled to sum to
// one. All-zero rows are left at zero.
func (m *Matrix) RowNormalized() *mat.Dense {
	var out mat.Dense
	out.CloneFrom(m.counts)
	for i, s := range m.RowSums() {
		if s == 0 {
			continue
		}
		floats.Scale(1/s, out.RawRowView(i))
	}
	return &out
}

// Counts returns a copy of the counts as nested slices.
func (m *Matrix) Counts() [][]float64 {
	r, _ := m.counts.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = slices.Clone(m.counts.RawRowView(i))
	}
	return out
}
