package sim

import (
	"sync"

	"github.com/san-kum/clothsim/internal/cloth"
)

// FramePool recycles vertex buffers for one cloth size.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(points int) *FramePool {
	size := points * cloth.VertexStride
	return &FramePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float32, size)
			},
		},
	}
}

func (p *FramePool) Get() []float32 {
	return p.pool.Get().([]float32)
}

func (p *FramePool) Put(buf []float32) {
	if len(buf) == p.size {
		p.pool.Put(buf)
	}
}

// Capture fills a pooled buffer from c.
func (p *FramePool) Capture(c *cloth.Cloth) ([]float32, error) {
	buf := p.Get()
	if err := c.PopulateVertexBuffer(buf); err != nil {
		p.Put(buf)
		return nil, err
	}
	return buf, nil
}
