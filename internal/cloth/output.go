package cloth

import "fmt"

// VertexStride is the number of float32s per vertex record:
// position (3), normal (3), texture coordinate (2).
const VertexStride = 8

// PopulateVertexBuffer writes one interleaved record per point into buf.
// Nothing in the cloth changes.
func (c *Cloth) PopulateVertexBuffer(buf []float32) error {
	n := c.PointCount()
	if len(buf) < n*VertexStride {
		return fmt.Errorf("%w: need %d floats, got %d", ErrBufferTooSmall, n*VertexStride, len(buf))
	}
	x, nor, uvs := c.x.Raw(), c.n.Raw(), c.grid.UVs
	for i, i3, i8 := 0, 0, 0; i < n; i, i3, i8 = i+1, i3+3, i8+VertexStride {
		buf[i8+0] = float32(x[i3+0])
		buf[i8+1] = float32(x[i3+1])
		buf[i8+2] = float32(x[i3+2])
		buf[i8+3] = float32(nor[i3+0])
		buf[i8+4] = float32(nor[i3+1])
		buf[i8+5] = float32(nor[i3+2])
		buf[i8+6] = float32(uvs[i][0])
		buf[i8+7] = float32(uvs[i][1])
	}
	return nil
}

// VertexBuffer returns a freshly allocated interleaved buffer.
func (c *Cloth) VertexBuffer() []float32 {
	buf := make([]float32, c.PointCount()*VertexStride)
	_ = c.PopulateVertexBuffer(buf)
	return buf
}

// TriangleIndices returns a copy of the triangle list. It never changes
// after construction.
func (c *Cloth) TriangleIndices() []uint32 {
	return append([]uint32(nil), c.tris...)
}
