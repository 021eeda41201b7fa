package cloth

import "gonum.org/v1/gonum/spatial/r3"

// PinOp is a pin-state change request.
type PinOp uint8

const (
	Unpin PinOp = iota
	Pin
	Toggle
)

func (op PinOp) String() string {
	switch op {
	case Unpin:
		return "unpin"
	case Pin:
		return "pin"
	case Toggle:
		return "toggle"
	}
	return "unknown"
}

// PointState is the constraint state of a single point.
type PointState uint8

const (
	Free PointState = iota
	Pinned
	// Dragged points are pinned and follow an external target.
	Dragged
)

func (s PointState) String() string {
	switch s {
	case Free:
		return "free"
	case Pinned:
		return "pinned"
	case Dragged:
		return "dragged"
	}
	return "unknown"
}

// SetPointConstraint applies op to point i and reports whether the point is
// pinned afterwards. A pinned point has zero mass and zero velocity; a free
// point has the nominal mass.
//
// While i is being dragged it stays pinned; op then changes the state the
// point returns to when released.
func (c *Cloth) SetPointConstraint(i int, op PinOp) (bool, error) {
	if err := c.checkIndex(op.String(), i); err != nil {
		return false, err
	}
	if c.drag != nil && c.drag.index == i {
		c.drag.restore = apply(c.drag.restore, op)
		return c.drag.restore, nil
	}
	return c.setPin(i, op), nil
}

func apply(pinned bool, op PinOp) bool {
	switch op {
	case Pin:
		return true
	case Unpin:
		return false
	case Toggle:
		return !pinned
	}
	return pinned
}

func (c *Cloth) setPin(i int, op PinOp) bool {
	pinned := apply(c.s.Contains(i), op)
	if pinned {
		c.s.Add(i)
		c.v.Set(i, r3.Vec{})
		c.mass[i] = 0
	} else {
		c.s.Remove(i)
		c.mass[i] = c.params.Mass
	}
	return pinned
}

// IsPinned reports whether i is currently excluded from the solve. Dragged
// points count as pinned. Out of range indices are never pinned.
func (c *Cloth) IsPinned(i int) bool {
	return i >= 0 && i < c.PointCount() && c.s.Contains(i)
}

func (c *Cloth) State(i int) PointState {
	switch {
	case c.drag != nil && c.drag.index == i:
		return Dragged
	case c.IsPinned(i):
		return Pinned
	}
	return Free
}

// PinnedPoints returns a copy of the pinned indices in no particular order.
func (c *Cloth) PinnedPoints() []int {
	return append([]int(nil), c.s.Indices()...)
}
