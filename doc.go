// Package billboard composites a rectangular advertisement onto a
// quadrilateral region of a playing video, keeping it perspective-correct
// and frame-accurate while the video plays and the display resizes.
//
// # Quick start
//
// Build a [Session] over a [Media] and a [Surface], then drive it with a
// [Scheduler]:
//
//	seq, _ := billboard.LoadImageSequence("frames", 30, true)
//	surface := billboard.NewSoftwareSurface(1, 1)
//	session := billboard.NewSession(seq, surface, billboard.Options{
//		Ads:            ads,
//		ContainerWidth: 640,
//		EditMode:       true,
//	})
//	sched := billboard.NewScheduler(session)
//	sched.Start()
//
//	// every display refresh:
//	sched.Pump(now)
//	seq.Advance(now) // media with a frame callback ticks the scheduler itself
//
// For a window, use the ebitenbackend package, which provides a GPU
// [Surface] and an [ebiten.Game] host.
//
// # Coordinate spaces
//
// Media space is the pixel grid of the decoded video frame. Display space is
// the on-screen drawing surface after letterbox scaling, in device-independent
// units. A [Layout] maps between the two; the drawing surface is sized at
// display size × pixel density and its base transform scales by the density,
// so every draw call is issued in display units. Stored quads live in display
// space; detector output is mapped in from media space.
//
// # Pipeline
//
// Every frame runs layout → filter → snapshot (only while the media is
// advancing) → draw frame → score quads → warp the active ad into the best
// quad → overlay → FPS. Scoring ([SelectBest]) is a weighted heuristic of
// area, aspect, skew and position. Warping ([WarpRenderer]) subdivides the
// quad into a 20×6 grid and draws each of the 240 triangles through its own
// affine transform.
//
// # Concurrency
//
// A Session has a single owner. Input and detection results produced on
// other goroutines are handed over with [Session.Post]; telemetry is
// published through an atomic pointer and readable from anywhere.
//
// [ebiten.Game]: https://pkg.go.dev/github.com/hajimehoshi/ebiten/v2#Game
package billboard
