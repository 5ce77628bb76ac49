package billboard

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SchedulerState is the render loop state. It only ever moves forward.
type SchedulerState uint8

const (
	StateIdle SchedulerState = iota
	StateRunning
)

func (s SchedulerState) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// LoopKind is the cadence the render loop runs at.
type LoopKind uint8

const (
	// LoopNone means the loop has not started.
	LoopNone LoopKind = iota
	// LoopFrameCallback renders once per presented media frame.
	LoopFrameCallback
	// LoopRefresh renders once per display refresh; the host calls Tick.
	LoopRefresh
)

func (k LoopKind) String() string {
	switch k {
	case LoopFrameCallback:
		return "frame-callback"
	case LoopRefresh:
		return "refresh"
	}
	return "-"
}

// Scheduler drives a Session. Hosts call Pump every display refresh (it
// delivers posted messages, injected input, test steps and the ad timer) and,
// in LoopRefresh mode, Tick as well. In LoopFrameCallback mode the media
// calls Tick itself.
type Scheduler struct {
	session *Session
	state   SchedulerState
	loop    LoopKind

	rotationStarted bool
	lastTick        time.Duration
}

// NewScheduler creates an idle scheduler for s.
func NewScheduler(s *Session) *Scheduler {
	return &Scheduler{session: s}
}

// State returns the scheduler state.
func (sc *Scheduler) State() SchedulerState { return sc.state }

// Loop returns the loop kind chosen by Start.
func (sc *Scheduler) Loop() LoopKind { return sc.loop }

// Session returns the driven session.
func (sc *Scheduler) Session() *Session { return sc.session }

// Start begins rendering once the media size is known and reports whether
// the loop is running. Media implementing FrameNotifier gets a frame
// callback loop; anything else relies on the host calling Tick every
// refresh. Hosts keep calling Start until it succeeds; later calls have no
// effect.
func (sc *Scheduler) Start() bool {
	if sc.state == StateRunning {
		return true
	}
	if w, h := sc.session.media.Size(); w <= 0 || h <= 0 {
		return false
	}
	sc.state = StateRunning
	if fn, ok := sc.session.media.(FrameNotifier); ok {
		sc.loop = LoopFrameCallback
		fn.OnNextFrame(sc.onFrame)
	} else {
		sc.loop = LoopRefresh
	}
	sc.session.loop = sc.loop
	sc.session.log.WithFields(logrus.Fields{
		"function": "Start",
		"loop":     sc.loop.String(),
	}).Info("render loop started")
	return true
}

func (sc *Scheduler) onFrame(ts time.Duration) {
	sc.Tick(ts)
	if fn, ok := sc.session.media.(FrameNotifier); ok {
		fn.OnNextFrame(sc.onFrame)
	}
}

// Pump runs the non-render work that must happen every refresh regardless
// of loop kind: posted messages, one injected click, the test runner step
// and the ad rotation timer.
func (sc *Scheduler) Pump(now time.Duration) {
	s := sc.session
	s.now = now
	s.drain()
	if !sc.rotationStarted {
		sc.rotationStarted = true
		s.rotator.SetMode(s.rotator.Mode(), now)
	}
	if s.testRunner != nil {
		s.testRunner.step(sc, now)
	}
	s.processInjectedInput()
	s.rotator.Poll(now)
}

// Tick renders one frame at ts. It does nothing until Start was called.
func (sc *Scheduler) Tick(ts time.Duration) {
	if sc.state != StateRunning {
		return
	}
	sc.lastTick = ts
	sc.session.renderFrame(ts, false)
}

// Resize applies a new container width and pixel density and redraws at
// once, outside the normal cadence.
func (sc *Scheduler) Resize(containerW, density float64) {
	s := sc.session
	s.SetContainer(containerW, density)
	if !s.updateLayout(true) {
		return
	}
	if sc.state == StateRunning {
		s.renderFrame(max(sc.lastTick, s.now), false)
	}
}
