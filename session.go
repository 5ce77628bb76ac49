package billboard

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Status line messages.
const (
	StatusLoading     = "Loading OpenCV..."
	StatusDetecting   = "Detecting..."
	StatusNotReady    = "Video not ready"
	StatusUnavailable = "OpenCV failed to load"
	StatusNoQuad      = "No quad found"
	StatusQuadAdded   = "Quad added"
	StatusReady       = "Ready"
)

const defaultMailboxSize = 64

// Options configures a Session. Zero values select the defaults.
type Options struct {
	// Ads are the rotated ad slots. Slots that are not Loaded are never drawn.
	Ads []AdSlot
	// Detector proposes quads for AutoDetect. Nil disables detection.
	Detector        Detector
	DetectorTimeout time.Duration

	ContainerWidth float64
	PixelDensity   float64

	Scoring ScoreConfig

	Rotation RotationMode
	MinDelay time.Duration
	MaxDelay time.Duration
	// FadeDuration is the ad cross-fade; negative disables it.
	FadeDuration time.Duration
	Seed         uint64

	// EditMode starts the session with click-to-add enabled.
	EditMode bool
	// HideOverlay disables the outline overlay.
	HideOverlay bool

	Sink   EventSink
	Logger *logrus.Logger

	ScreenshotDir string
}

// Session is the compositor. It owns the layout, the stored quads, the point
// buffer, the frame buffer and the ad rotator. It is not safe for concurrent
// use: every method must be called from the goroutine that drives the
// Scheduler. Other goroutines hand work over with Post.
type Session struct {
	ID  string
	log *logrus.Entry

	media    Media
	surface  Surface
	detector Detector

	detectorTimeout time.Duration

	layout     Layout
	containerW float64
	density    float64
	filter     FilterMode

	quads  QuadStore
	points PointBuffer
	frame  FrameBuffer

	ads     []AdSlot
	rotator *Rotator
	warp    *WarpRenderer
	overlay *Overlay
	scoring ScoreConfig

	editMode  bool
	status    string
	selection Selection
	triangles int
	frameNo   uint64
	now       time.Duration

	sink    EventSink
	mailbox chan func(*Session)

	injectQueue []syntheticClick
	testRunner  *TestRunner

	screenshotQueue []string
	// ScreenshotDir is the directory where screenshot PNGs are saved.
	ScreenshotDir string

	fps       FPSCounter
	loop      LoopKind
	telemetry atomic.Pointer[Telemetry]

	debug bool
	stats debugStats
}

// NewSession creates a session that composites media onto surface.
func NewSession(media Media, surface Surface, opts Options) *Session {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	scoring := opts.Scoring
	if scoring == (ScoreConfig{}) {
		scoring = DefaultScoreConfig()
	}
	timeout := opts.DetectorTimeout
	if timeout <= 0 {
		timeout = DefaultDetectorTimeout
	}
	density := opts.PixelDensity
	if density <= 0 {
		density = 1
	}

	slots := len(opts.Ads)
	r := NewRotator(max(slots, 1), opts.Seed)
	if opts.MinDelay > 0 {
		r.MinDelay = opts.MinDelay
	}
	if opts.MaxDelay > 0 {
		r.MaxDelay = opts.MaxDelay
	}
	if opts.FadeDuration != 0 {
		r.FadeDuration = max(opts.FadeDuration, 0)
	}
	r.mode = opts.Rotation

	s := &Session{
		ID:              id,
		log:             logger.WithField("session", id),
		media:           media,
		surface:         surface,
		detector:        opts.Detector,
		detectorTimeout: timeout,
		containerW:      opts.ContainerWidth,
		density:         density,
		ads:             append([]AdSlot(nil), opts.Ads...),
		rotator:         r,
		warp:            NewWarpRenderer(),
		overlay:         NewOverlay(),
		scoring:         scoring,
		editMode:        opts.EditMode,
		status:          StatusReady,
		selection:       Selection{Index: -1},
		sink:            opts.Sink,
		mailbox:         make(chan func(*Session), defaultMailboxSize),
		ScreenshotDir:   opts.ScreenshotDir,
	}
	if s.ScreenshotDir == "" {
		s.ScreenshotDir = "screenshots"
	}
	s.overlay.Enabled = !opts.HideOverlay
	if opts.Detector == nil {
		s.status = StatusUnavailable
	}
	r.OnSwitch = s.onAdSwitch
	s.publishTelemetry()
	return s
}

// --- Accessors ---

// Layout returns the current layout.
func (s *Session) Layout() Layout { return s.layout }

// Quads returns the stored quads. The slice must not be mutated.
func (s *Session) Quads() []Quad { return s.quads.All() }

// PendingPoints returns the in-progress points. The slice must not be mutated.
func (s *Session) PendingPoints() []Vec2 { return s.points.Points() }

// Selection returns the result of the most recent scoring pass.
func (s *Session) Selection() Selection { return s.selection }

// Status returns the detection status line.
func (s *Session) Status() string { return s.status }

// EditMode reports whether clicks add points.
func (s *Session) EditMode() bool { return s.editMode }

// Rotator returns the ad rotator.
func (s *Session) Rotator() *Rotator { return s.rotator }

// Overlay returns the outline overlay settings.
func (s *Session) Overlay() *Overlay { return s.overlay }

// Frame returns the frame buffer. It is only valid once a frame was captured.
func (s *Session) Frame() *FrameBuffer { return &s.frame }

// Surface returns the drawing surface.
func (s *Session) Surface() Surface { return s.surface }

// Logger returns the session's log entry.
func (s *Session) Logger() *logrus.Entry { return s.log }

// SetEventSink sets the optional event consumer.
func (s *Session) SetEventSink(sink EventSink) { s.sink = sink }

// SetDetector replaces the detector.
func (s *Session) SetDetector(d Detector) { s.detector = d }

// SetDebugMode enables per-frame stage timing logs.
func (s *Session) SetDebugMode(enabled bool) { s.debug = enabled }

// SetContainer records a new container width and pixel density. The layout
// picks them up on the next frame.
func (s *Session) SetContainer(width, density float64) {
	if density <= 0 {
		density = 1
	}
	s.containerW = width
	s.density = density
}

// Telemetry returns the most recently published snapshot. It is safe to call
// from any goroutine.
func (s *Session) Telemetry() Telemetry {
	if t := s.telemetry.Load(); t != nil {
		return *t
	}
	return Telemetry{SessionID: s.ID, Selected: -1}
}

// --- Mailbox ---

// Post queues fn to run on the session's goroutine at the start of the next
// tick. It is safe to call from any goroutine. Post reports false if the
// mailbox is full.
func (s *Session) Post(fn func(*Session)) bool {
	select {
	case s.mailbox <- fn:
		return true
	default:
		s.log.WithFields(logrus.Fields{
			"function": "Post",
		}).Warn("mailbox full, dropping message")
		return false
	}
}

// drain runs every queued message.
func (s *Session) drain() {
	for {
		select {
		case fn := <-s.mailbox:
			fn(s)
		default:
			return
		}
	}
}

// --- Editing ---

// HandleClick adds a display-space point while edit mode is on. The fourth
// point completes a quad, which is normalized and stored. It reports whether
// a quad was added.
func (s *Session) HandleClick(x, y float64) bool {
	if !s.editMode {
		return false
	}
	q, ok := s.points.Push(Vec2{X: x, Y: y})
	if !ok {
		return false
	}
	s.addQuad(q)
	return true
}

func (s *Session) addQuad(q Quad) {
	s.quads.Add(q)
	s.log.WithFields(logrus.Fields{
		"function": "addQuad",
		"quads":    s.quads.Len(),
		"tl":       q[TopLeft],
		"br":       q[BottomRight],
	}).Debug("quad added")
	s.emit(Event{Type: EventQuadAdded, Quad: q, Index: s.quads.Len() - 1, Count: s.quads.Len()})
}

// ToggleEdit flips edit mode and returns the new state.
func (s *Session) ToggleEdit() bool {
	s.SetEditMode(!s.editMode)
	return s.editMode
}

// SetEditMode enables or disables click-to-add.
func (s *Session) SetEditMode(on bool) {
	s.editMode = on
}

// ClearCurrent discards the in-progress points.
func (s *Session) ClearCurrent() {
	s.points.Clear()
}

// UndoQuad removes the most recently stored quad.
func (s *Session) UndoQuad() bool {
	q, ok := s.quads.Pop()
	if !ok {
		return false
	}
	s.emit(Event{Type: EventQuadRemoved, Quad: q, Index: s.quads.Len(), Count: s.quads.Len()})
	return true
}

// ClearAll removes every stored quad and the in-progress points.
func (s *Session) ClearAll() {
	s.quads.Clear()
	s.points.Clear()
	s.emit(Event{Type: EventQuadsCleared})
}

// --- Ads ---

// ForceAd makes slot i active immediately.
func (s *Session) ForceAd(i int) {
	s.rotator.Force(i, s.now)
}

// SetRotationMode changes how ads rotate.
func (s *Session) SetRotationMode(m RotationMode) {
	s.rotator.SetMode(m, s.now)
}

// ActiveAd returns the slot currently drawn into the selected quad.
func (s *Session) ActiveAd() (AdSlot, bool) {
	i := s.rotator.Active()
	if i < 0 || i >= len(s.ads) {
		return AdSlot{}, false
	}
	return s.ads[i], s.ads[i].Loaded
}

// SetAd replaces slot i, for example once an asynchronous load finishes.
func (s *Session) SetAd(i int, ad AdSlot) {
	if i < 0 || i >= len(s.ads) {
		return
	}
	s.ads[i] = ad
}

func (s *Session) onAdSwitch(from, to int, now time.Duration) {
	s.log.WithFields(logrus.Fields{
		"function": "onAdSwitch",
		"from":     from,
		"to":       to,
	}).Debug("ad switched")
	s.emit(Event{Type: EventAdSwitched, From: from, To: to, Time: now})
}

// --- Detection ---

// detectJob is one detection request. It is prepared on the session's
// goroutine and may run on any goroutine.
type detectJob struct {
	detector Detector
	timeout  time.Duration
	frame    image.Image
}

// DetectResult is the outcome of one detection.
type DetectResult struct {
	Points [4]Vec2
	Found  bool
	Err    error
}

func (s *Session) prepareDetection() detectJob {
	s.status = StatusDetecting
	job := detectJob{detector: s.detector, timeout: s.detectorTimeout}
	w, h := s.media.Size()
	if w == 0 || h == 0 {
		return job
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if s.frame.Valid() {
		draw.Draw(dst, dst.Rect, s.frame.RGBA, s.frame.Rect.Min, draw.Src)
	} else {
		s.media.Snapshot(dst)
	}
	job.frame = dst
	return job
}

func (j detectJob) run(ctx context.Context) DetectResult {
	if !WaitReady(ctx, j.detector, j.timeout, detectorPollInterval) {
		return DetectResult{Err: ErrDetectorUnavailable}
	}
	if j.frame == nil {
		return DetectResult{Err: ErrMediaNotReady}
	}
	pts, ok, err := j.detector.Detect(ctx, j.frame)
	if err != nil {
		return DetectResult{Err: fmt.Errorf("detect: %w", err)}
	}
	return DetectResult{Points: pts, Found: ok}
}

// finishDetection maps a detection from media space into display space and
// stores it.
func (s *Session) finishDetection(res DetectResult) error {
	err := res.Err
	switch {
	case errors.Is(err, ErrDetectorUnavailable):
		s.status = StatusUnavailable
	case errors.Is(err, ErrMediaNotReady):
		s.status = StatusNotReady
	case err != nil:
		s.log.WithFields(logrus.Fields{
			"function": "finishDetection",
			"error":    err.Error(),
		}).Warn("detector failed")
		s.status = StatusNoQuad
	case !res.Found:
		s.status = StatusNoQuad
		err = ErrNoQuad
	case !s.updateLayout(false):
		s.status = StatusNotReady
		err = ErrMediaNotReady
	default:
		var mapped [4]Vec2
		for i, p := range res.Points {
			mapped[i] = MapMediaPointToDisplay(p, s.layout)
		}
		s.addQuad(NormalizeQuad(mapped))
		s.status = StatusQuadAdded
	}
	ev := Event{Type: EventDetectionFinished, Found: err == nil, Status: s.status, Count: s.quads.Len()}
	if err == nil {
		ev.Index = s.quads.Len() - 1
		ev.Quad = s.quads.At(ev.Index)
	}
	s.emit(ev)
	s.publishTelemetry()
	return err
}

// AutoDetect runs the detector on the last buffered frame (or a fresh
// snapshot when none was captured yet) and stores at most one quad. It blocks
// for up to the detector readiness timeout.
func (s *Session) AutoDetect(ctx context.Context) error {
	job := s.prepareDetection()
	return s.finishDetection(job.run(ctx))
}

// StartAutoDetect is the non-blocking AutoDetect: the frame is captured
// now, detection runs on its own goroutine and the result is posted back.
// done, if non-nil, is called on the session's goroutine with the result.
func (s *Session) StartAutoDetect(ctx context.Context, done func(error)) {
	job := s.prepareDetection()
	go func() {
		res := job.run(ctx)
		s.Post(func(s *Session) {
			err := s.finishDetection(res)
			if done != nil {
				done(err)
			}
		})
	}()
}

// WarmUpDetector waits in the background for the detector to become ready
// and posts the resulting status.
func (s *Session) WarmUpDetector(ctx context.Context) {
	if s.detector == nil {
		s.status = StatusUnavailable
		return
	}
	s.status = StatusLoading
	d, timeout := s.detector, s.detectorTimeout
	go func() {
		ready := WaitReady(ctx, d, timeout, detectorPollInterval)
		s.Post(func(s *Session) {
			if ready {
				s.status = StatusReady
			} else {
				s.status = StatusUnavailable
			}
		})
	}()
}

// --- Frame ---

// updateLayout recomputes the layout and applies it to the surface when it
// changed. It reports whether a layout is available.
func (s *Session) updateLayout(force bool) bool {
	w, h := s.media.Size()
	l, changed := ComputeLayout(w, h, s.containerW, s.density, s.layout, force)
	if changed {
		s.layout = l
		l.ApplyTo(s.surface)
		bw, bh := l.SurfaceSize()
		s.log.WithFields(logrus.Fields{
			"function": "updateLayout",
			"media":    fmt.Sprintf("%dx%d", w, h),
			"display":  fmt.Sprintf("%.0fx%.0f", l.DisplayWidth, l.DisplayHeight),
			"backing":  fmt.Sprintf("%dx%d", bw, bh),
			"scale":    l.Scale,
		}).Debug("layout changed")
	}
	return s.layout.Ready()
}

// renderFrame runs one pass of the pipeline. Nothing is drawn until the
// media size is known.
func (s *Session) renderFrame(now time.Duration, force bool) {
	s.now = now
	var st debugStats
	t0 := time.Now()
	if !s.updateLayout(force) {
		return
	}
	s.filter = s.layout.Filter()
	s.surface.SetFilter(s.filter)
	st.layoutTime = time.Since(t0)

	t0 = time.Now()
	if s.media.Advancing() {
		s.frame.capture(s.media, s.layout.MediaWidth, s.layout.MediaHeight)
	}
	st.snapshotTime = time.Since(t0)

	t0 = time.Now()
	if s.frame.Valid() {
		s.surface.Clear()
		s.surface.DrawImage(&s.frame, s.frame.Rect, s.layout.DrawRect())
	}
	st.compositeTime = time.Since(t0)

	t0 = time.Now()
	s.rotator.FrameTick(now)
	s.selection = SelectBest(&s.quads, s.layout, s.scoring)
	s.triangles = 0
	if s.selection.Index >= 0 {
		if ad, ok := s.ActiveAd(); ok {
			s.triangles = s.warp.DrawWarped(s.surface, ad.Image, s.quads.At(s.selection.Index), s.rotator.Opacity())
		}
	}
	st.warpTime = time.Since(t0)
	st.triangles = s.triangles

	t0 = time.Now()
	s.overlay.Draw(s.surface, s.layout, s.quads.All(), s.selection.Index, s.points.Points())
	st.overlayTime = time.Since(t0)

	s.fps.Tick(now)
	s.frameNo++
	s.stats = st
	s.debugLog(st)
	s.debugCheckFrameTime(st)
	s.flushScreenshots()
	s.publishTelemetry()
}

func (s *Session) publishTelemetry() {
	t := &Telemetry{
		SessionID:     s.ID,
		FPS:           s.fps.FPS(),
		QuadCount:     s.quads.Len(),
		Selected:      s.selection.Index,
		SelectedScore: s.selection.Score,
		Scores:        append([]float64(nil), s.selection.Scores...),
		PendingPoints: s.points.Len(),
		EditMode:      s.editMode,
		Status:        s.status,
		Loop:          s.loop.String(),
		MediaWidth:    s.layout.MediaWidth,
		MediaHeight:   s.layout.MediaHeight,
		Layout:        s.layout,
		Filter:        s.filter.String(),
		ActiveAd:      s.rotator.Active(),
		AdOpacity:     s.rotator.Opacity(),
		Rotation:      s.rotator.Mode().String(),
		LastSwitch:    s.rotator.LastSwitch(),
		Triangles:     s.triangles,
		FrameNumber:   s.frameNo,
	}
	if s.surface != nil {
		t.BackingW, t.BackingH = s.surface.Size()
	}
	switch {
	case s.selection.Index >= 0 && s.selection.Index < s.quads.Len():
		t.Points = s.quads.At(s.selection.Index).Points()
	case s.points.Len() > 0:
		t.Points = append([]Vec2(nil), s.points.Points()...)
	}
	s.telemetry.Store(t)
}

func (s *Session) emit(e Event) {
	if s.sink == nil {
		return
	}
	if e.Time == 0 {
		e.Time = s.now
	}
	s.sink.EmitEvent(e)
}
