package billboard

// syntheticClick is a single injected click. Display coordinates are used
// (matching what is seen in screenshots) unless media is set, in which case
// the point is mapped through the layout current when it is consumed.
type syntheticClick struct {
	x, y  float64
	media bool
}

// InjectClick queues a click at display coordinates. The click is consumed
// on the next Pump, one click per frame, exactly like real input.
func (s *Session) InjectClick(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticClick{x: x, y: y})
}

// InjectMediaClick queues a click at media pixel coordinates.
func (s *Session) InjectMediaClick(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticClick{x: x, y: y, media: true})
}

// InjectQuad queues four clicks at the corners of q, in display space.
// Consumes four frames.
func (s *Session) InjectQuad(q [4]Vec2) {
	for _, p := range q {
		s.InjectClick(p.X, p.Y)
	}
}

// PendingInjections returns the number of queued synthetic clicks.
func (s *Session) PendingInjections() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one click from the inject queue and feeds it
// through HandleClick. Returns true if a click was consumed.
func (s *Session) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	p := Vec2{X: evt.x, Y: evt.y}
	if evt.media {
		p = MapMediaPointToDisplay(p, s.layout)
	}
	s.HandleClick(p.X, p.Y)
	return true
}
