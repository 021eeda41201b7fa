package cloth

import "sort"

// release unpins points once simulated time reaches at.
type release struct {
	at     float64
	points []int
	done   bool
}

// ScheduleRelease unpins points when the simulated time first reaches at.
// Each stage fires once; pinning a released point again is not undone.
func (c *Cloth) ScheduleRelease(at float64, points ...int) error {
	for _, i := range points {
		if err := c.checkIndex("schedule", i); err != nil {
			return err
		}
	}
	c.releases = append(c.releases, release{at: at, points: append([]int(nil), points...)})
	sort.SliceStable(c.releases, func(a, b int) bool { return c.releases[a].at < c.releases[b].at })
	return nil
}

// PendingReleases returns the number of stages that have not fired.
func (c *Cloth) PendingReleases() int {
	n := 0
	for _, r := range c.releases {
		if !r.done {
			n++
		}
	}
	return n
}

func (c *Cloth) applyReleases() {
	for k := range c.releases {
		r := &c.releases[k]
		if r.done || c.time < r.at {
			continue
		}
		for _, i := range r.points {
			// indices were validated when scheduled
			_, _ = c.SetPointConstraint(i, Unpin)
		}
		r.done = true
	}
}
