// Package cloth implements an implicit mass-spring cloth simulator.
//
// A [Cloth] is a regular grid of points joined by structural, shear and
// bend springs. Each call to [Cloth.Step] assembles the force vector and
// the force Jacobians over a fixed sparse block pattern, solves the
// backward-Euler system for the velocity change with a constraint-filtered
// conjugate gradient, and integrates velocity and position:
//
//	(M - h·∂f/∂v - h²·∂f/∂x) Δv = h·(f + h·∂f/∂x·v)
//
// Pinned points are removed from the solve by projecting every solver
// vector onto the free subspace, so their velocity change is exactly zero.
//
// # Example
//
//	c, err := cloth.New(cloth.DefaultParams())
//	if err != nil { ... }
//	buf := make([]float32, c.PointCount()*cloth.VertexStride)
//	for {
//	    res, _ := c.Step(0.016)
//	    _ = c.PopulateVertexBuffer(buf)
//	    if !res.Converged { ... }
//	}
//
// # Thread Safety
//
// A Cloth owns all of its buffers and is NOT safe for concurrent use.
// Independent cloths may be stepped on separate goroutines.
package cloth
