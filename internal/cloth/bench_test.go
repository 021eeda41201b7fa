package cloth

import "testing"

func benchmarkStep(b *testing.B, size int) {
	p := DefaultParams()
	p.Width, p.Height = size, size
	c, err := New(p)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Step(DefaultTimeStep); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStep16(b *testing.B) { benchmarkStep(b, 16) }
func BenchmarkStep32(b *testing.B) { benchmarkStep(b, 32) }

func BenchmarkPopulateVertexBuffer(b *testing.B) {
	c, err := New(DefaultParams())
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]float32, c.PointCount()*VertexStride)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.PopulateVertexBuffer(buf)
	}
}
