package cloth

import (
	"fmt"
	"math"
)

type finiteChecker interface{ Finite() bool }

// CheckFinite scans every state, matrix and scratch buffer and names the
// first one holding a NaN or Inf.
func (c *Cloth) CheckFinite() error {
	buffers := []struct {
		name string
		buf  finiteChecker
	}{
		{"position", c.x},
		{"velocity", c.v},
		{"normal", c.n},
		{"force", c.f},
		{"velocity delta", c.dv},
		{"rhs", c.rhs},
		{"dFdX*V", c.dfdxv},
		{"system matrix", c.a},
		{"dFdX", c.dfdx},
		{"dFdV", c.dfdv},
		{"solver q", c.solver.q},
		{"solver d", c.solver.d},
		{"solver t", c.solver.t},
		{"solver r", c.solver.r},
	}
	for _, b := range buffers {
		if !b.buf.Finite() {
			return fmt.Errorf("%w: %s", ErrNonFinite, b.name)
		}
	}
	for i, m := range c.mass {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: mass of point %d", ErrNonFinite, i)
		}
	}
	return nil
}
