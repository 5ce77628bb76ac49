package ebitenbackend

import (
	"context"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/billboard"
	"github.com/sirupsen/logrus"
)

// Advancer is media that the host steps with its clock, such as
// billboard.ImageSequence.
type Advancer interface {
	Advance(now time.Duration)
}

// Game is an ebiten.Game that hosts a billboard session. The window's
// logical width is the container width; the screen is sized in device
// pixels so the session surface is drawn 1:1.
//
// Keys: E edit mode, C clear points, U undo, X clear all, D detect,
// 1-9 force ad, R cycle rotation mode, O toggle overlay, P screenshot.
type Game struct {
	sched   *billboard.Scheduler
	session *billboard.Session
	surface *Surface
	media   Advancer

	// FixedDensity overrides the monitor's device scale factor when > 0.
	FixedDensity float64
	// DetectContext is the parent context of detections started with D.
	DetectContext context.Context

	start      time.Time
	outsideW   float64
	density    float64
	laidOut    bool
	prevLayout [2]float64
	log        *logrus.Entry
}

// NewGame wraps a session whose surface must be surface. media, if it
// implements Advancer, is stepped every update.
func NewGame(sched *billboard.Scheduler, surface *Surface) *Game {
	s := sched.Session()
	g := &Game{
		sched:         sched,
		session:       s,
		surface:       surface,
		DetectContext: context.Background(),
		start:         time.Now(),
		log:           s.Logger().WithField("component", "ebitenbackend"),
	}
	return g
}

// SetMedia sets the media stepped every update.
func (g *Game) SetMedia(m Advancer) { g.media = m }

func (g *Game) now() time.Duration { return time.Since(g.start) }

// Update handles input, pumps the scheduler and advances the media.
func (g *Game) Update() error {
	now := g.now()
	if g.laidOut && (g.prevLayout != [2]float64{g.outsideW, g.density}) {
		g.prevLayout = [2]float64{g.outsideW, g.density}
		g.sched.Resize(g.outsideW, g.density)
	}
	// Start is a no-op until the media reports its size.
	if g.sched.State() == billboard.StateIdle {
		g.sched.Start()
	}
	g.handleInput()
	g.sched.Pump(now)
	if g.media != nil {
		g.media.Advance(now)
	}
	if g.sched.Loop() == billboard.LoopRefresh {
		g.sched.Tick(now)
	}
	return nil
}

func (g *Game) handleInput() {
	s := g.session
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		d := g.density
		if d <= 0 {
			d = 1
		}
		s.HandleClick(float64(mx)/d, float64(my)/d)
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		on := s.ToggleEdit()
		g.log.WithField("edit", on).Info("edit mode toggled")
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		s.ClearCurrent()
	case inpututil.IsKeyJustPressed(ebiten.KeyU):
		s.UndoQuad()
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		s.ClearAll()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		s.StartAutoDetect(g.DetectContext, func(err error) {
			g.log.WithField("status", s.Status()).Info("detection finished")
		})
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		s.Overlay().Enabled = !s.Overlay().Enabled
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		next := (s.Rotator().Mode() + 1) % 3
		s.SetRotationMode(next)
		g.log.WithField("mode", next.String()).Info("rotation mode changed")
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		s.Screenshot("manual")
	}
	for k := ebiten.Key1; k <= ebiten.Key9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			s.ForceAd(int(k - ebiten.Key1))
		}
	}
}

// Draw copies the composited surface to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	if img := g.surface.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
}

// Layout implements ebiten.Game. Ebitengine calls LayoutF instead when it
// is present.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.LayoutF(float64(outsideWidth), float64(outsideHeight))
	return int(w), int(h)
}

// LayoutF records the window width as the container width and returns the
// screen size in device pixels.
func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	d := g.FixedDensity
	if d <= 0 {
		d = ebiten.Monitor().DeviceScaleFactor()
	}
	if d <= 0 {
		d = 1
	}
	g.outsideW, g.density, g.laidOut = outsideWidth, d, true
	return math.Ceil(outsideWidth * d), math.Ceil(outsideHeight * d)
}

// Run opens a window sized for the session's media and runs g until the
// window is closed.
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
