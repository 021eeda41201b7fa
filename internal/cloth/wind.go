package cloth

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SetWind sets the wind vector. It is replaced every step while the wind
// mode is dynamic.
func (c *Cloth) SetWind(w r3.Vec) { c.wind = w }

func (c *Cloth) SetWindMode(m WindMode) { c.windMode = m }

func dynamicWind(t float64) r3.Vec {
	return r3.Vec{X: math.Sin(t), Y: 1, Z: math.Cos(t)}
}
