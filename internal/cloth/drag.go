package cloth

import "gonum.org/v1/gonum/spatial/r3"

// drag is the single point currently held at an external target.
type drag struct {
	index   int
	target  r3.Vec
	restore bool // pin state to return to on release
}

// SetDraggedPoint moves point i to target and holds it there, pinned,
// until ReleaseDraggedPoint. Calling it again for the same point updates
// the target. Only one point may be dragged at a time.
func (c *Cloth) SetDraggedPoint(i int, target r3.Vec) error {
	if err := c.checkIndex("drag", i); err != nil {
		return err
	}
	if c.drag != nil && c.drag.index != i {
		return &PointError{Op: "drag", Index: i, Count: c.PointCount(), Wrapped: ErrDragInProgress}
	}
	if c.drag == nil {
		c.drag = &drag{index: i, restore: c.s.Contains(i)}
		c.setPin(i, Pin)
	}
	c.drag.target = target
	c.x.Set(i, target)
	return nil
}

// ReleaseDraggedPoint ends the drag of point i and restores the pin state
// it had when grabbed, as modified by SetPointConstraint during the drag.
func (c *Cloth) ReleaseDraggedPoint(i int) error {
	if err := c.checkIndex("release", i); err != nil {
		return err
	}
	if c.drag == nil || c.drag.index != i {
		return &PointError{Op: "release", Index: i, Count: c.PointCount(), Wrapped: ErrNotDragged}
	}
	restore := c.drag.restore
	c.drag = nil
	if !restore {
		c.setPin(i, Unpin)
	}
	return nil
}

// DraggedPoint returns the dragged index and its target.
func (c *Cloth) DraggedPoint() (int, r3.Vec, bool) {
	if c.drag == nil {
		return -1, r3.Vec{}, false
	}
	return c.drag.index, c.drag.target, true
}

func (c *Cloth) applyDrag() {
	if c.drag != nil {
		c.x.Set(c.drag.index, c.drag.target)
	}
}

// Pick returns the point seen closest to the view ray dir from the origin,
// measured by the angle between dir and the point's position.
func (c *Cloth) Pick(dir r3.Vec) (int, error) {
	if r3.Norm2(dir) == 0 {
		return -1, ErrDegenerateRay
	}
	dir = r3.Unit(dir)
	best, bestCos := -1, -2.0
	for i := 0; i < c.PointCount(); i++ {
		p := c.x.At(i)
		l := r3.Norm(p)
		if l == 0 {
			continue
		}
		if cos := r3.Dot(dir, p) / l; cos > bestCos {
			best, bestCos = i, cos
		}
	}
	if best < 0 {
		return -1, ErrDegenerateRay
	}
	return best, nil
}

// DragAlongRay drags point i to the projection of its current position
// onto the view ray dir from the origin.
func (c *Cloth) DragAlongRay(i int, dir r3.Vec) error {
	if err := c.checkIndex("drag", i); err != nil {
		return err
	}
	dd := r3.Norm2(dir)
	if dd == 0 {
		return ErrDegenerateRay
	}
	p := c.x.At(i)
	return c.SetDraggedPoint(i, r3.Scale(r3.Dot(dir, p)/dd, dir))
}
