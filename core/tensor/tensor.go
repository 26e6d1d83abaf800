// Package tensor provides the numeric containers accepted by fitkit's
// input validation: helpers around gonum's dense matrices and a minimal
// compressed-sparse-row matrix for sparse-layout ingestion.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/pkg/errors"
)

// CSR is a compressed sparse row matrix implementing mat.Matrix.
// Only explicitly stored entries are non-zero.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// NewCSR builds a CSR matrix from triplet form. Entries must be within
// bounds; duplicate positions are summed.
func NewCSR(rows, cols int, rowIdx, colIdx []int, values []float64) (*CSR, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("NewCSR", "all dimensions must be positive")
	}
	if len(rowIdx) != len(colIdx) || len(rowIdx) != len(values) {
		return nil, errors.NewValueError("NewCSR", "triplet slices must have equal length")
	}

	counts := make([]int, rows+1)
	for k, i := range rowIdx {
		j := colIdx[k]
		if i < 0 || i >= rows || j < 0 || j >= cols {
			return nil, errors.NewValueError("NewCSR", "triplet entry out of bounds")
		}
		counts[i+1]++
	}
	for i := 0; i < rows; i++ {
		counts[i+1] += counts[i]
	}

	c := &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  counts,
		indices: make([]int, len(rowIdx)),
		data:    make([]float64, len(rowIdx)),
	}
	next := make([]int, rows)
	copy(next, counts[:rows])
	for k, i := range rowIdx {
		p := next[i]
		c.indices[p] = colIdx[k]
		c.data[p] = values[k]
		next[i] = p + 1
	}
	return c, nil
}

// Dims returns the matrix dimensions.
func (c *CSR) Dims() (int, int) { return c.rows, c.cols }

// At returns the value at (i, j), summing duplicate stored entries.
func (c *CSR) At(i, j int) float64 {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic("tensor: CSR index out of range")
	}
	v := 0.0
	for p := c.indptr[i]; p < c.indptr[i+1]; p++ {
		if c.indices[p] == j {
			v += c.data[p]
		}
	}
	return v
}

// T returns the transpose as a mat.Matrix view.
func (c *CSR) T() mat.Matrix { return mat.Transpose{Matrix: c} }

// NNZ returns the number of stored entries.
func (c *CSR) NNZ() int { return len(c.data) }

// ToDense materializes the sparse matrix as a dense one.
func (c *CSR) ToDense() *mat.Dense {
	d := mat.NewDense(c.rows, c.cols, nil)
	for i := 0; i < c.rows; i++ {
		for p := c.indptr[i]; p < c.indptr[i+1]; p++ {
			j := c.indices[p]
			d.Set(i, j, d.At(i, j)+c.data[p])
		}
	}
	return d
}

// DenseCopy returns a fresh dense copy of m, never aliasing the
// caller's storage.
func DenseCopy(m mat.Matrix) *mat.Dense {
	if c, ok := m.(*CSR); ok {
		return c.ToDense()
	}
	var out mat.Dense
	out.CloneFrom(m)
	return &out
}

// Column extracts column j of m as a slice.
func Column(m mat.Matrix, j int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = m.At(i, j)
	}
	return out
}
