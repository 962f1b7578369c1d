// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major matrix of float64 values.
// r is rows, c is columns, and data holds r*c elements in row-major order.
type Dense struct {
	r, c int
	data []float64
}

// NewDense creates an r x c Dense matrix initialized to zeros.
// Returns ErrInvalidDimensions unless rows and cols are both positive.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseData creates an r x c Dense from a row-major slice, copying it.
// Returns ErrInvalidDimensions for non-positive shape and
// ErrDimensionMismatch when len(data) != rows*cols.
func NewDenseData(rows, cols int, data []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != rows*cols {
		return nil, ErrDimensionMismatch
	}
	d := make([]float64, len(data))
	copy(d, data)

	return &Dense{r: rows, c: cols, data: d}, nil
}

// Identity creates the n x n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}

	return m, nil
}

// Rows returns the number of rows in the matrix.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns in the matrix.
func (m *Dense) Cols() int { return m.c }

// indexOf computes the flat index for (row, col) or returns ErrOutOfRange.
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}
	if col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns value v at (row, col).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v

	return nil
}

// ResizeTo reshapes the matrix to rows x cols, discarding all content.
// Existing backing storage is reused when large enough.
func (m *Dense) ResizeTo(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return ErrInvalidDimensions
	}
	n := rows * cols
	if cap(m.data) >= n {
		m.data = m.data[:n]
		for i := range m.data {
			m.data[i] = 0
		}
	} else {
		m.data = make([]float64, n)
	}
	m.r, m.c = rows, cols

	return nil
}

// Clone returns a deep copy of the Dense matrix.
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Diag returns a copy of the main diagonal (length min(r,c)).
func (m *Dense) Diag() []float64 {
	n := m.r
	if m.c < n {
		n = m.c
	}
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = m.data[i*m.c+i]
	}

	return d
}

// Equal reports whether m and o have the same shape and all elements agree
// within eps. A nil operand never equals a non-nil one.
func (m *Dense) Equal(o *Dense, eps float64) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.r != o.r || m.c != o.c {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-o.data[i]) > eps {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer for easy debugging.
func (m *Dense) String() string {
	var s string
	for i := 0; i < m.r; i++ {
		s += "["
		for j := 0; j < m.c; j++ {
			s += fmt.Sprintf("%g", m.data[i*m.c+j])
			if j < m.c-1 {
				s += ", "
			}
		}
		s += "]\n"
	}

	return s
}
