package billboard

import (
	"math/rand/v2"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RotationMode selects how the active ad slot changes.
type RotationMode uint8

const (
	RotateInterval RotationMode = iota // switch after a random delay, repeatedly
	RotatePerFrame                     // pick a random slot every frame
	RotateManual                       // only Force changes the slot
)

func (m RotationMode) String() string {
	switch m {
	case RotateInterval:
		return "interval"
	case RotatePerFrame:
		return "frame"
	case RotateManual:
		return "manual"
	}
	return "unknown"
}

// ParseRotationMode parses the String form of a RotationMode.
func ParseRotationMode(s string) (RotationMode, bool) {
	switch s {
	case "interval", "":
		return RotateInterval, true
	case "frame":
		return RotatePerFrame, true
	case "manual":
		return RotateManual, true
	}
	return RotateInterval, false
}

// Default rotation timing.
const (
	DefaultMinSwitchDelay = 2000 * time.Millisecond
	DefaultMaxSwitchDelay = 5000 * time.Millisecond
	DefaultFadeDuration   = 250 * time.Millisecond
)

// RotationState is a read-only view of the rotator.
type RotationState struct {
	Active     int
	LastSwitch time.Duration
	Pending    bool
	Deadline   time.Duration
	Mode       RotationMode
}

// Rotator picks which of the ad slots is shown. It is a timer state machine
// polled from the render loop: Start arms a one-shot switch after a random
// delay in [MinDelay, MaxDelay); Poll fires it when due, picks a slot
// uniformly at random, records the time and re-arms.
//
// There is no goroutine or runtime timer; whoever calls Poll owns the state.
type Rotator struct {
	MinDelay, MaxDelay time.Duration
	// FadeDuration is the opacity ramp applied after the slot changes. Zero
	// disables fading.
	FadeDuration time.Duration
	// OnSwitch, when set, is called after every change of the active slot.
	OnSwitch func(from, to int, now time.Duration)

	slots      int
	mode       RotationMode
	active     int
	lastSwitch time.Duration
	armed      bool
	deadline   time.Duration
	lastDelay  time.Duration
	rng        *rand.Rand

	fade     *gween.Tween
	opacity  float64
	lastPoll time.Duration
}

// NewRotator creates an interval-mode rotator over slots slots whose random
// choices are fully determined by seed.
func NewRotator(slots int, seed uint64) *Rotator {
	if slots < 1 {
		slots = 1
	}
	return &Rotator{
		MinDelay:     DefaultMinSwitchDelay,
		MaxDelay:     DefaultMaxSwitchDelay,
		FadeDuration: DefaultFadeDuration,
		slots:        slots,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		opacity:      1,
	}
}

// Mode returns the rotation mode.
func (r *Rotator) Mode() RotationMode {
	return r.mode
}

// SetMode cancels any pending switch and re-arms according to the new mode.
func (r *Rotator) SetMode(m RotationMode, now time.Duration) {
	r.mode = m
	r.Cancel()
	if m == RotateInterval {
		r.Start(now)
	}
}

// Start arms the next switch. Calling Start again replaces the pending switch.
func (r *Rotator) Start(now time.Duration) {
	r.lastPoll = now
	r.schedule(now)
}

func (r *Rotator) schedule(now time.Duration) {
	span := r.MaxDelay - r.MinDelay
	delay := r.MinDelay
	if span > 0 {
		delay += time.Duration(r.rng.Int64N(int64(span)))
	}
	r.lastDelay = delay
	r.deadline = now + delay
	r.armed = true
}

// Cancel clears the pending switch, if any.
func (r *Rotator) Cancel() {
	r.armed = false
	r.deadline = 0
}

// Pending reports whether a switch is armed.
func (r *Rotator) Pending() bool {
	return r.armed
}

// Deadline returns the time of the pending switch.
func (r *Rotator) Deadline() time.Duration {
	return r.deadline
}

// LastDelay returns the delay drawn for the most recent scheduling.
func (r *Rotator) LastDelay() time.Duration {
	return r.lastDelay
}

// Active returns the active slot index.
func (r *Rotator) Active() int {
	return r.active
}

// LastSwitch returns the time of the most recent switch.
func (r *Rotator) LastSwitch() time.Duration {
	return r.lastSwitch
}

// State returns a snapshot of the rotator.
func (r *Rotator) State() RotationState {
	return RotationState{
		Active:     r.active,
		LastSwitch: r.lastSwitch,
		Pending:    r.armed,
		Deadline:   r.deadline,
		Mode:       r.mode,
	}
}

// Poll advances the rotator to now: it steps the fade and fires the pending
// switch when due. It reports whether the timer fired.
func (r *Rotator) Poll(now time.Duration) bool {
	r.stepFade(now)
	if !r.armed || now < r.deadline {
		return false
	}
	r.armed = false
	r.lastSwitch = now
	r.switchTo(r.rng.IntN(r.slots), now)
	if r.mode == RotateInterval {
		r.schedule(now)
	}
	return true
}

// FrameTick is called once per rendered frame. In per-frame mode it picks a
// random slot.
func (r *Rotator) FrameTick(now time.Duration) {
	if r.mode != RotatePerFrame {
		return
	}
	next := r.rng.IntN(r.slots)
	if next != r.active {
		r.lastSwitch = now
		r.switchTo(next, now)
	}
}

// Force makes slot i active. The switch time is only recorded when the slot
// actually changes.
func (r *Rotator) Force(i int, now time.Duration) {
	if i < 0 || i >= r.slots || i == r.active {
		return
	}
	r.lastSwitch = now
	r.switchTo(i, now)
}

func (r *Rotator) switchTo(i int, now time.Duration) {
	if i == r.active {
		return
	}
	from := r.active
	r.active = i
	if r.FadeDuration > 0 {
		r.fade = gween.New(0, 1, float32(r.FadeDuration.Seconds()), ease.OutQuad)
		r.opacity = 0
		r.lastPoll = now
	}
	if r.OnSwitch != nil {
		r.OnSwitch(from, i, now)
	}
}

func (r *Rotator) stepFade(now time.Duration) {
	dt := now - r.lastPoll
	r.lastPoll = now
	if r.fade == nil || dt <= 0 {
		return
	}
	v, done := r.fade.Update(float32(dt.Seconds()))
	r.opacity = clamp01(float64(v))
	if done {
		r.fade = nil
		r.opacity = 1
	}
}

// Opacity returns the current ad opacity in [0, 1]; it ramps from 0 to 1
// over FadeDuration after each change of slot.
func (r *Rotator) Opacity() float64 {
	return r.opacity
}
