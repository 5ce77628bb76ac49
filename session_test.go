package billboard

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// solidMedia is a Media that presents a single solid frame. It does not
// implement FrameNotifier, so it runs on the refresh loop.
type solidMedia struct {
	w, h      int
	c         color.RGBA
	advancing bool
	snapshots int
}

func (m *solidMedia) Size() (int, int) { return m.w, m.h }
func (m *solidMedia) Advancing() bool  { return m.advancing }
func (m *solidMedia) Snapshot(dst draw.Image) {
	m.snapshots++
	draw.Draw(dst, dst.Bounds(), image.NewUniform(m.c), image.Point{}, draw.Src)
}

type staticDetector struct {
	pts   [4]Vec2
	found bool
	err   error
	calls atomic.Int32
}

func (d *staticDetector) Detect(ctx context.Context, frame image.Image) ([4]Vec2, bool, error) {
	d.calls.Add(1)
	return d.pts, d.found, d.err
}

type slowDetector struct {
	staticDetector
	ready atomic.Bool
}

func (d *slowDetector) Ready() bool { return d.ready.Load() }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSession(t *testing.T, media Media, opts Options) *Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.ContainerWidth == 0 {
		opts.ContainerWidth = 640
	}
	opts.ScreenshotDir = t.TempDir()
	return NewSession(media, NewSoftwareSurface(1, 1), opts)
}

func hdMedia() *solidMedia {
	return &solidMedia{w: 1280, h: 720, c: color.RGBA{B: 255, A: 255}, advancing: true}
}

func redAd() AdSlot {
	return AdSlot{Image: solidImage(600, 200, color.RGBA{R: 255, A: 255}), Loaded: true, Name: "red"}
}

func clickQuad(s *Session, q Quad) {
	for _, p := range q {
		s.HandleClick(p.X, p.Y)
	}
}

func TestNewSessionStatus(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{})
	if s.Status() != StatusUnavailable {
		t.Errorf("status without detector = %q", s.Status())
	}
	s = newTestSession(t, hdMedia(), Options{Detector: &staticDetector{}})
	if s.Status() != StatusReady {
		t.Errorf("status with detector = %q", s.Status())
	}
	if s.ID == "" {
		t.Error("session has no ID")
	}
	if tel := s.Telemetry(); tel.SessionID != s.ID || tel.Selected != -1 {
		t.Errorf("initial telemetry = %+v", tel)
	}
}

func TestHandleClickBuildsQuad(t *testing.T) {
	var events []Event
	s := newTestSession(t, hdMedia(), Options{EditMode: true, Sink: EventSinkFunc(func(e Event) {
		events = append(events, e)
	})})
	pts := []Vec2{{400, 170}, {100, 50}, {400, 50}}
	for _, p := range pts {
		if s.HandleClick(p.X, p.Y) {
			t.Fatal("quad completed before the fourth point")
		}
	}
	if len(s.PendingPoints()) != 3 {
		t.Fatalf("pending = %d, want 3", len(s.PendingPoints()))
	}
	if !s.HandleClick(100, 170) {
		t.Fatal("fourth point did not add a quad")
	}
	if got, want := s.Quads()[0], rectQuad(100, 50, 400, 170); got != want {
		t.Errorf("quad = %v, want %v", got, want)
	}
	if len(s.PendingPoints()) != 0 {
		t.Error("pending points not cleared")
	}
	if len(events) != 1 || events[0].Type != EventQuadAdded || events[0].Count != 1 || events[0].Index != 0 {
		t.Errorf("events = %+v", events)
	}
}

func TestHandleClickIgnoredOutsideEditMode(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{})
	s.HandleClick(10, 10)
	if len(s.PendingPoints()) != 0 {
		t.Error("click recorded with edit mode off")
	}
	if !s.ToggleEdit() || !s.EditMode() {
		t.Fatal("ToggleEdit did not enable edit mode")
	}
	s.HandleClick(10, 10)
	if len(s.PendingPoints()) != 1 {
		t.Error("click not recorded after enabling edit mode")
	}
	s.SetEditMode(false)
	// Turning edit mode off keeps the pending points.
	if len(s.PendingPoints()) != 1 {
		t.Error("pending points dropped by SetEditMode")
	}
}

func TestUndoAndClear(t *testing.T) {
	var types []EventType
	s := newTestSession(t, hdMedia(), Options{EditMode: true})
	s.SetEventSink(EventSinkFunc(func(e Event) { types = append(types, e.Type) }))
	clickQuad(s, rectQuad(0, 0, 10, 10))
	clickQuad(s, rectQuad(20, 20, 40, 40))
	s.HandleClick(1, 1)

	if !s.UndoQuad() || len(s.Quads()) != 1 {
		t.Fatalf("after undo: %d quads", len(s.Quads()))
	}
	if len(s.PendingPoints()) != 1 {
		t.Error("undo touched the pending points")
	}
	s.ClearCurrent()
	if len(s.PendingPoints()) != 0 || len(s.Quads()) != 1 {
		t.Error("ClearCurrent must only drop pending points")
	}
	s.HandleClick(1, 1)
	s.ClearAll()
	if len(s.Quads()) != 0 || len(s.PendingPoints()) != 0 {
		t.Error("ClearAll left state behind")
	}
	if s.UndoQuad() {
		t.Error("undo on an empty store succeeded")
	}
	want := []EventType{EventQuadAdded, EventQuadAdded, EventQuadRemoved, EventQuadsCleared}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, types[i], want[i])
		}
	}
}

func TestRenderFrameComposites(t *testing.T) {
	media := hdMedia()
	s := newTestSession(t, media, Options{EditMode: true, Ads: []AdSlot{redAd()}})
	clickQuad(s, rectQuad(100, 50, 400, 170))
	s.renderFrame(time.Second, false)

	if w, h := s.Surface().Size(); w != 640 || h != 360 {
		t.Fatalf("surface = %dx%d, want 640x360", w, h)
	}
	sel := s.Selection()
	if sel.Index != 0 {
		t.Fatalf("selected = %d, want 0", sel.Index)
	}
	img := s.Surface().(*SoftwareSurface).Image()
	if got := img.RGBAAt(250, 110); got.R < 150 {
		t.Errorf("quad center = %v, want ad red", got)
	}
	if got := img.RGBAAt(600, 300); got.B != 255 || got.R != 0 {
		t.Errorf("background = %v, want media blue", got)
	}

	tel := s.Telemetry()
	if tel.QuadCount != 1 || tel.Selected != 0 || tel.Triangles != 240 || tel.FrameNumber != 1 {
		t.Errorf("telemetry = %+v", tel)
	}
	if tel.BackingW != 640 || tel.BackingH != 360 || tel.MediaWidth != 1280 {
		t.Errorf("telemetry sizes = %dx%d media %d", tel.BackingW, tel.BackingH, tel.MediaWidth)
	}
	if tel.Filter != "smooth" {
		t.Errorf("filter = %q, want smooth when minifying", tel.Filter)
	}
	if len(tel.Points) != 4 {
		t.Errorf("telemetry points = %v, want the selected quad", tel.Points)
	}
}

func TestRenderFrameUnknownMediaSize(t *testing.T) {
	media := &solidMedia{advancing: true}
	s := newTestSession(t, media, Options{})
	s.renderFrame(0, false)
	if media.snapshots != 0 || s.Telemetry().FrameNumber != 0 {
		t.Error("rendered before the media size was known")
	}
}

func TestRenderFrameSnapshotsOnlyWhileAdvancing(t *testing.T) {
	media := hdMedia()
	media.advancing = false
	s := newTestSession(t, media, Options{})
	s.renderFrame(0, false)
	if media.snapshots != 0 || s.Frame().Valid() {
		t.Error("paused media was snapshotted")
	}
	media.advancing = true
	s.renderFrame(time.Millisecond, false)
	if media.snapshots != 1 || !s.Frame().Valid() {
		t.Errorf("snapshots = %d, want 1", media.snapshots)
	}
	gen := s.Frame().Generation()
	media.advancing = false
	s.renderFrame(2*time.Millisecond, false)
	if s.Frame().Generation() != gen {
		t.Error("frame buffer replaced while paused")
	}
}

func TestRenderFrameSkipsUnloadedAd(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{EditMode: true, Ads: []AdSlot{{Name: "missing"}}})
	clickQuad(s, rectQuad(100, 50, 400, 170))
	s.renderFrame(0, false)
	if s.Telemetry().Triangles != 0 {
		t.Error("warped an unloaded ad")
	}
	if s.Selection().Index != 0 {
		t.Error("selection still runs without an ad")
	}
	s.SetAd(0, redAd())
	s.renderFrame(time.Millisecond, false)
	if s.Telemetry().Triangles != 240 {
		t.Errorf("triangles = %d after SetAd", s.Telemetry().Triangles)
	}
}

func TestPostAndDrain(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{})
	ran := 0
	for i := 0; i < defaultMailboxSize; i++ {
		if !s.Post(func(*Session) { ran++ }) {
			t.Fatalf("Post %d rejected", i)
		}
	}
	if s.Post(func(*Session) { ran++ }) {
		t.Error("Post accepted a message into a full mailbox")
	}
	s.drain()
	if ran != defaultMailboxSize {
		t.Errorf("ran %d messages, want %d", ran, defaultMailboxSize)
	}
}

func TestForceAdEmitsSwitch(t *testing.T) {
	var ev []Event
	s := newTestSession(t, hdMedia(), Options{Ads: []AdSlot{redAd(), redAd()}})
	s.SetEventSink(EventSinkFunc(func(e Event) { ev = append(ev, e) }))
	s.ForceAd(1)
	if s.Rotator().Active() != 1 {
		t.Fatal("ForceAd did not switch")
	}
	if len(ev) != 1 || ev[0].Type != EventAdSwitched || ev[0].From != 0 || ev[0].To != 1 {
		t.Errorf("events = %+v", ev)
	}
	s.SetRotationMode(RotateManual)
	if s.Rotator().Pending() {
		t.Error("manual rotation left a timer armed")
	}
}

// --- Detection ---

func detectSession(t *testing.T, d Detector, media *solidMedia) *Session {
	t.Helper()
	s := newTestSession(t, media, Options{Detector: d, DetectorTimeout: 50 * time.Millisecond})
	s.updateLayout(false)
	return s
}

func TestAutoDetectFound(t *testing.T) {
	d := &staticDetector{found: true, pts: [4]Vec2{{800, 340}, {200, 100}, {800, 100}, {200, 340}}}
	var ev []Event
	s := detectSession(t, d, hdMedia())
	s.SetEventSink(EventSinkFunc(func(e Event) { ev = append(ev, e) }))
	if err := s.AutoDetect(context.Background()); err != nil {
		t.Fatalf("AutoDetect: %v", err)
	}
	if s.Status() != StatusQuadAdded {
		t.Errorf("status = %q", s.Status())
	}
	// Media points are halved into the 640-wide display.
	if got, want := s.Quads()[0], rectQuad(100, 50, 400, 170); got != want {
		t.Errorf("quad = %v, want %v", got, want)
	}
	if len(ev) != 2 || ev[0].Type != EventQuadAdded || ev[1].Type != EventDetectionFinished || !ev[1].Found {
		t.Errorf("events = %+v", ev)
	}
}

func TestAutoDetectOutcomes(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		detector   Detector
		media      *solidMedia
		wantErr    error
		wantStatus string
	}{
		{"no detector", nil, hdMedia(), ErrDetectorUnavailable, StatusUnavailable},
		{"never ready", &slowDetector{}, hdMedia(), ErrDetectorUnavailable, StatusUnavailable},
		{"media not ready", &staticDetector{}, &solidMedia{}, ErrMediaNotReady, StatusNotReady},
		{"nothing found", &staticDetector{}, hdMedia(), ErrNoQuad, StatusNoQuad},
		{"detector error", &staticDetector{err: boom}, hdMedia(), boom, StatusNoQuad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := detectSession(t, tt.detector, tt.media)
			err := s.AutoDetect(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if s.Status() != tt.wantStatus {
				t.Errorf("status = %q, want %q", s.Status(), tt.wantStatus)
			}
			if len(s.Quads()) != 0 {
				t.Error("failed detection stored a quad")
			}
		})
	}
}

func TestAutoDetectBeforeFirstTick(t *testing.T) {
	d := &staticDetector{found: true, pts: [4]Vec2{{200, 100}, {800, 100}, {800, 340}, {200, 340}}}
	s := newTestSession(t, hdMedia(), Options{Detector: d, DetectorTimeout: 50 * time.Millisecond})
	if err := s.AutoDetect(context.Background()); err != nil {
		t.Fatalf("AutoDetect: %v", err)
	}
	if got, want := s.Quads()[0], rectQuad(100, 50, 400, 170); got != want {
		t.Errorf("quad = %v, want %v", got, want)
	}
}

func TestFinishDetectionWithoutLayout(t *testing.T) {
	var ev []Event
	s := newTestSession(t, &solidMedia{}, Options{Sink: EventSinkFunc(func(e Event) { ev = append(ev, e) })})
	err := s.finishDetection(DetectResult{Found: true, Points: [4]Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}})
	if !errors.Is(err, ErrMediaNotReady) {
		t.Fatalf("err = %v, want ErrMediaNotReady", err)
	}
	if s.Status() != StatusNotReady || len(s.Quads()) != 0 {
		t.Errorf("status %q, quads %v", s.Status(), s.Quads())
	}
	if len(ev) != 1 || ev[0].Found {
		t.Errorf("events = %+v", ev)
	}
}

func TestAutoDetectUsesBufferedFrame(t *testing.T) {
	media := hdMedia()
	var seen color.RGBA
	d := DetectorFunc(func(ctx context.Context, frame image.Image) ([4]Vec2, bool, error) {
		seen = frame.(*image.RGBA).RGBAAt(5, 5)
		return [4]Vec2{}, false, nil
	})
	s := detectSession(t, d, media)
	s.renderFrame(0, false)
	media.c = color.RGBA{G: 255, A: 255}
	media.advancing = false
	_ = s.AutoDetect(context.Background())
	if seen.B != 255 || seen.G != 0 {
		t.Errorf("detector saw %v, want the buffered blue frame", seen)
	}
}

func TestStartAutoDetect(t *testing.T) {
	d := &staticDetector{found: true, pts: [4]Vec2{{200, 100}, {800, 100}, {800, 340}, {200, 340}}}
	s := detectSession(t, d, hdMedia())
	done := make(chan error, 1)
	s.StartAutoDetect(context.Background(), func(err error) { done <- err })
	if s.Status() != StatusDetecting {
		t.Errorf("status = %q, want %q", s.Status(), StatusDetecting)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.drain()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("detection failed: %v", err)
			}
			if len(s.Quads()) != 1 || s.Status() != StatusQuadAdded {
				t.Errorf("quads %d status %q", len(s.Quads()), s.Status())
			}
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("detection result never posted")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWarmUpDetector(t *testing.T) {
	d := &slowDetector{}
	s := newTestSession(t, hdMedia(), Options{Detector: d, DetectorTimeout: time.Second})
	s.WarmUpDetector(context.Background())
	if s.Status() != StatusLoading {
		t.Fatalf("status = %q, want %q", s.Status(), StatusLoading)
	}
	d.ready.Store(true)
	deadline := time.Now().Add(2 * time.Second)
	for s.Status() != StatusReady {
		if time.Now().After(deadline) {
			t.Fatalf("status stuck at %q", s.Status())
		}
		time.Sleep(5 * time.Millisecond)
		s.drain()
	}
}

func TestWaitReady(t *testing.T) {
	ctx := context.Background()
	if WaitReady(ctx, nil, time.Second, time.Millisecond) {
		t.Error("nil detector reported ready")
	}
	if !WaitReady(ctx, &staticDetector{}, 0, 0) {
		t.Error("plain detector must be ready immediately")
	}
	start := time.Now()
	if WaitReady(ctx, &slowDetector{}, 30*time.Millisecond, 5*time.Millisecond) {
		t.Error("never-ready detector reported ready")
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not honored")
	}
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if WaitReady(cctx, &slowDetector{}, time.Hour, time.Millisecond) {
		t.Error("canceled wait reported ready")
	}
}
