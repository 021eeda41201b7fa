package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// BigVec3 is a contiguous array of n 3-vectors. The math is that of a
// single 3n vector; the grouping only makes point access convenient.
type BigVec3 struct {
	data []float64
}

func NewBigVec3(n int) *BigVec3 {
	return &BigVec3{data: make([]float64, n*3)}
}

// Len returns the number of 3-vectors.
func (v *BigVec3) Len() int { return len(v.data) / 3 }

// Raw exposes the backing storage. Callers must not change its length.
func (v *BigVec3) Raw() []float64 { return v.data }

func (v *BigVec3) At(i int) r3.Vec {
	j := i * 3
	return r3.Vec{X: v.data[j], Y: v.data[j+1], Z: v.data[j+2]}
}

func (v *BigVec3) Set(i int, p r3.Vec) {
	j := i * 3
	v.data[j], v.data[j+1], v.data[j+2] = p.X, p.Y, p.Z
}

func (v *BigVec3) AddAt(i int, p r3.Vec) {
	j := i * 3
	v.data[j] += p.X
	v.data[j+1] += p.Y
	v.data[j+2] += p.Z
}

// Fill sets every element to p.
func (v *BigVec3) Fill(p r3.Vec) {
	for j := 0; j < len(v.data); j += 3 {
		v.data[j], v.data[j+1], v.data[j+2] = p.X, p.Y, p.Z
	}
}

func (v *BigVec3) Zero() {
	for i := range v.data {
		v.data[i] = 0
	}
}

func (v *BigVec3) CopyFrom(src *BigVec3) {
	if len(src.data) != len(v.data) {
		panic("linalg: length mismatch")
	}
	copy(v.data, src.data)
}

// Finite reports whether no component is NaN or Inf.
func (v *BigVec3) Finite() bool {
	for _, x := range v.data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Dot returns the full 3n inner product of a and b.
func Dot(a, b *BigVec3) float64 {
	return floats.Dot(a.data, b.data)
}

// AddScaled performs dst += alpha*src.
func AddScaled(dst *BigVec3, alpha float64, src *BigVec3) {
	floats.AddScaled(dst.data, alpha, src.data)
}

// SubTo performs dst = a - b.
func SubTo(dst, a, b *BigVec3) {
	floats.SubTo(dst.data, a.data, b.data)
}
