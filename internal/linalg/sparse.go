package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type coord struct{ row, col int }

// BlockMatrix is a sparse matrix of 3×3 blocks. Slots 0..n-1 are the
// diagonal blocks of the n points, in point order. Further slots are added
// with Push and are never removed, so a slot index stays valid for the
// lifetime of the matrix. Duplicate coordinates are allowed and sum.
type BlockMatrix struct {
	n      int
	blocks []Mat3
	coords []coord
}

// NewBlockMatrix returns an n×n (in blocks) matrix holding only its
// diagonal blocks, all zero.
func NewBlockMatrix(n int) *BlockMatrix {
	m := &BlockMatrix{
		n:      n,
		blocks: make([]Mat3, n, n*4),
		coords: make([]coord, n, n*4),
	}
	for i := 0; i < n; i++ {
		m.coords[i] = coord{i, i}
	}
	return m
}

// Dim returns the number of block rows.
func (m *BlockMatrix) Dim() int { return m.n }

// Size returns the number of stored blocks.
func (m *BlockMatrix) Size() int { return len(m.blocks) }

// Push appends a zero block at (row, col) and returns its slot.
func (m *BlockMatrix) Push(row, col int) int {
	if row < 0 || row >= m.n || col < 0 || col >= m.n {
		panic("linalg: block coordinate out of range")
	}
	m.blocks = append(m.blocks, Mat3{})
	m.coords = append(m.coords, coord{row, col})
	return len(m.blocks) - 1
}

func (m *BlockMatrix) Block(slot int) *Mat3 { return &m.blocks[slot] }

func (m *BlockMatrix) Coord(slot int) (row, col int) {
	c := m.coords[slot]
	return c.row, c.col
}

// Zero clears every block value, keeping the pattern.
func (m *BlockMatrix) Zero() {
	for i := range m.blocks {
		m.blocks[i] = Mat3{}
	}
}

// InitDiag sets every diagonal block to f·I and every other block to zero.
func (m *BlockMatrix) InitDiag(f float64) {
	d := Identity().Scale(f)
	for i, c := range m.coords {
		if c.row == c.col {
			m.blocks[i] = d
		} else {
			m.blocks[i] = Mat3{}
		}
	}
}

// MulVec computes out = m·v. out must not alias v.
func (m *BlockMatrix) MulVec(out, v *BigVec3) {
	out.Zero()
	o, x := out.data, v.data
	for i := range m.blocks {
		b := &m.blocks[i]
		r, c := m.coords[i].row*3, m.coords[i].col*3
		vx, vy, vz := x[c], x[c+1], x[c+2]
		o[r] += b[0]*vx + b[1]*vy + b[2]*vz
		o[r+1] += b[3]*vx + b[4]*vy + b[5]*vz
		o[r+2] += b[6]*vx + b[7]*vy + b[8]*vz
	}
}

func (m *BlockMatrix) Finite() bool {
	for i := range m.blocks {
		for _, x := range m.blocks[i] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

// Dense expands m into a 3n×3n dense matrix. Intended for inspection of
// small systems.
func (m *BlockMatrix) Dense() *mat.Dense {
	d := mat.NewDense(m.n*3, m.n*3, nil)
	for i := range m.blocks {
		r, c := m.coords[i].row*3, m.coords[i].col*3
		for br := 0; br < 3; br++ {
			for bc := 0; bc < 3; bc++ {
				d.Set(r+br, c+bc, d.At(r+br, c+bc)+m.blocks[i][br*3+bc])
			}
		}
	}
	return d
}
