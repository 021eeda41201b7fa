// Package linalg provides the fixed-block linear algebra used by the cloth
// solver.
//
// Every per-point quantity lives in a [BigVec3], a flat array of 3-vectors,
// and every matrix is a [BlockMatrix], an arena of 3×3 blocks addressed by
// integer slot. The sparsity pattern of a BlockMatrix is fixed once the mesh
// is built; each step only resets and accumulates block values.
//
//	v := linalg.NewBigVec3(n)
//	m := linalg.NewBlockMatrix(n)
//	ab := m.Push(a, b)
//	m.Block(ab).Add(linalg.Outer(dir))
//	m.MulVec(out, v)
//
// Pinned degrees of freedom are tracked by a [ConstraintSet], whose Filter
// projects a vector onto the free subspace.
package linalg
