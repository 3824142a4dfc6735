package behavior

import "math"

const (
	searchPointCount  = 4
	searchPointRadius = 3.0
	searchWaitTime    = 1.0
	// searchFreshSight: a sighting within this window aborts the circuit.
	searchFreshSight = 1.0
	// searchStaleSight: arriving while the target has been unseen longer
	// than this starts a search.
	searchStaleSight = 2.0
	// searchGiveUpAfter: unseen for longer than this once the circuit
	// completes means full disengage.
	searchGiveUpAfter = 5.0
)

type searchPhase uint8

const (
	searchMoving searchPhase = iota
	searchWaiting
)

// searchTask is the resumable lost-target investigation: visit up to four
// points in quarter-turn increments around the last-known position, pausing
// at each. It is a small sub-state machine driven by the per-tick update
// rather than a suspended control-flow construct, so any state transition can
// cancel it by dropping the pointer.
type searchTask struct {
	points  []Vec2
	next    int
	phase   searchPhase
	wait    float64
	arrived bool
}

// startSearch replaces any pending search with a fresh circuit around the
// last-known target position. Unreachable points are skipped up front.
func (c *Controller) startSearch() {
	if !c.perception.everSeen {
		return
	}
	loco := c.deps.Locomotion

	center := c.perception.lastKnown
	points := make([]Vec2, 0, searchPointCount)
	for i := 0; i < searchPointCount; i++ {
		angle := float64(i) * math.Pi / 2
		point := center.Add(Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(searchPointRadius))
		if loco != nil && !loco.IsReachable(point) {
			continue
		}
		points = append(points, point)
	}

	task := &searchTask{points: points}
	c.search = task
	if !c.issueNextSearchPoint(task) {
		c.finishSearch()
	}
}

// arrive records that the host reported a completed move while searching.
func (t *searchTask) arrive() {
	if t != nil {
		t.arrived = true
	}
}

// tickSearch advances the pending search task by one tick.
func (c *Controller) tickSearch(dt float64) {
	task := c.search
	if task == nil {
		return
	}

	// A fresh sighting means the sensor already re-engaged; abandon the
	// circuit immediately.
	if c.clock-c.perception.lastSeen <= searchFreshSight {
		c.search = nil
		return
	}

	switch task.phase {
	case searchMoving:
		if task.arrived || !c.isMoving() {
			task.arrived = false
			task.phase = searchWaiting
			task.wait = 0
		}
	case searchWaiting:
		task.wait += dt
		if task.wait < searchWaitTime {
			return
		}
		if !c.issueNextSearchPoint(task) {
			c.finishSearch()
		}
	}
}

// issueNextSearchPoint moves toward the next circuit point, reporting false
// once the circuit is exhausted.
func (c *Controller) issueNextSearchPoint(task *searchTask) bool {
	if task.next >= len(task.points) {
		return false
	}
	point := task.points[task.next]
	task.next++
	task.phase = searchMoving
	task.arrived = false
	c.moveTo(point)
	return true
}

// finishSearch ends the circuit without a reacquisition. Long-unseen targets
// are forgotten entirely; otherwise the chase resumes against the stale
// last-known position.
func (c *Controller) finishSearch() {
	c.search = nil
	if c.clock-c.perception.lastSeen > searchGiveUpAfter {
		c.ExitCombat()
	}
}
