package cloth

import (
	"math"

	"github.com/san-kum/clothsim/internal/linalg"
)

// SolveResult describes one conjugate-gradient solve.
type SolveResult struct {
	Iterations int
	Converged  bool
	Residual   float64 // |r| at exit
}

// Solver is a conjugate-gradient solver restricted to the free subspace of
// a ConstraintSet. Its scratch vectors are allocated once and reused.
type Solver struct {
	Tolerance     float64 // relative to the initial residual
	MaxIterations int
	Refresh       int // recompute r = b - A·x every Refresh iterations

	q, d, t, r *linalg.BigVec3
}

func NewSolver(n int, tolerance float64, maxIter, refresh int) *Solver {
	return &Solver{
		Tolerance:     tolerance,
		MaxIterations: maxIter,
		Refresh:       refresh,
		q:             linalg.NewBigVec3(n),
		d:             linalg.NewBigVec3(n),
		t:             linalg.NewBigVec3(n),
		r:             linalg.NewBigVec3(n),
	}
}

// Solve improves x towards A·x = b with every member of s held at its
// current value. Convergence is |r|² ≤ tol²·|r₀|². A non-converged result
// still leaves the best iterate in x. A non-finite residual stops the solve
// and is never reported as converged.
func (sv *Solver) Solve(x *linalg.BigVec3, a *linalg.BlockMatrix, b *linalg.BigVec3, s *linalg.ConstraintSet) SolveResult {
	q, d, r := sv.q, sv.d, sv.r

	sv.residual(x, a, b, s)
	d.CopyFrom(r)
	rr := linalg.Dot(r, r)
	target := rr * sv.Tolerance * sv.Tolerance

	iter := 0
	for finite(rr) && rr > target && iter < sv.MaxIterations {
		iter++

		a.MulVec(q, d)
		s.Filter(q)
		dq := linalg.Dot(d, q)
		if dq == 0 {
			break
		}
		alpha := rr / dq
		linalg.AddScaled(x, alpha, d)

		if sv.Refresh > 0 && iter%sv.Refresh == 0 {
			sv.residual(x, a, b, s)
		} else {
			linalg.AddScaled(r, -alpha, q)
		}

		last := rr
		rr = linalg.Dot(r, r)
		beta := rr / last
		dd, rd := d.Raw(), r.Raw()
		for i := range dd {
			dd[i] = rd[i] + dd[i]*beta
		}
		s.Filter(d)
	}

	return SolveResult{
		Iterations: iter,
		Converged:  finite(rr) && rr <= target,
		Residual:   math.Sqrt(rr),
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// residual sets r = filter(b - A·x).
func (sv *Solver) residual(x *linalg.BigVec3, a *linalg.BlockMatrix, b *linalg.BigVec3, s *linalg.ConstraintSet) {
	a.MulVec(sv.t, x)
	linalg.SubTo(sv.r, b, sv.t)
	s.Filter(sv.r)
}
