package linalg

import "gonum.org/v1/gonum/spatial/r3"

// Mat3 is a row-major 3×3 block.
type Mat3 [9]float64

func Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Outer returns d dᵀ.
func Outer(d r3.Vec) Mat3 {
	return Mat3{
		d.X * d.X, d.X * d.Y, d.X * d.Z,
		d.Y * d.X, d.Y * d.Y, d.Y * d.Z,
		d.Z * d.X, d.Z * d.Y, d.Z * d.Z,
	}
}

func (m Mat3) Scale(f float64) Mat3 {
	for i := range m {
		m[i] *= f
	}
	return m
}

func (m Mat3) Plus(o Mat3) Mat3 {
	for i := range m {
		m[i] += o[i]
	}
	return m
}

func (m Mat3) Minus(o Mat3) Mat3 {
	for i := range m {
		m[i] -= o[i]
	}
	return m
}

// Add accumulates o into m in place.
func (m *Mat3) Add(o Mat3) {
	for i := range m {
		m[i] += o[i]
	}
}

// Sub subtracts o from m in place.
func (m *Mat3) Sub(o Mat3) {
	for i := range m {
		m[i] -= o[i]
	}
}

func (m Mat3) MulVec(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}
