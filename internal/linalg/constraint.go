package linalg

// ConstraintSet is the set of pinned points. Membership is O(1) through a
// per-point slot table; removal swaps the last member into the freed slot.
type ConstraintSet struct {
	members []int
	slot    []int
}

func NewConstraintSet(n int) *ConstraintSet {
	s := &ConstraintSet{slot: make([]int, n)}
	for i := range s.slot {
		s.slot[i] = -1
	}
	return s
}

func (s *ConstraintSet) Len() int { return len(s.members) }

func (s *ConstraintSet) Contains(i int) bool { return s.slot[i] >= 0 }

// Indices returns the members in no particular order. The slice is owned
// by the set.
func (s *ConstraintSet) Indices() []int { return s.members }

// Add inserts i and reports whether it was absent.
func (s *ConstraintSet) Add(i int) bool {
	if s.slot[i] >= 0 {
		return false
	}
	s.slot[i] = len(s.members)
	s.members = append(s.members, i)
	return true
}

// Remove deletes i and reports whether it was present.
func (s *ConstraintSet) Remove(i int) bool {
	k := s.slot[i]
	if k < 0 {
		return false
	}
	last := len(s.members) - 1
	moved := s.members[last]
	s.members[k] = moved
	s.slot[moved] = k
	s.members = s.members[:last]
	s.slot[i] = -1
	return true
}

// Filter zeroes the entry of every constrained point in v.
func (s *ConstraintSet) Filter(v *BigVec3) {
	d := v.data
	for _, i := range s.members {
		j := i * 3
		d[j], d[j+1], d[j+2] = 0, 0, 0
	}
}
