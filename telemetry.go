package billboard

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Telemetry is a read-only snapshot of the session's debug state, published
// once per frame. It is safe to share between goroutines once published.
type Telemetry struct {
	SessionID string `json:"session_id"`

	FPS           float64   `json:"fps"`
	QuadCount     int       `json:"quad_count"`
	Selected      int       `json:"selected"` // -1 when nothing is selected
	SelectedScore float64   `json:"selected_score"`
	Scores        []float64 `json:"scores"`
	Points        []Vec2    `json:"points"`
	PendingPoints int       `json:"pending_points"`
	EditMode      bool      `json:"edit_mode"`
	Status        string    `json:"status"`

	Loop        string        `json:"loop"`
	MediaWidth  int           `json:"media_width"`
	MediaHeight int           `json:"media_height"`
	Layout      Layout        `json:"layout"`
	Filter      string        `json:"filter"`
	BackingW    int           `json:"backing_width"`
	BackingH    int           `json:"backing_height"`
	ActiveAd    int           `json:"active_ad"`
	AdOpacity   float64       `json:"ad_opacity"`
	Rotation    string        `json:"rotation"`
	LastSwitch  time.Duration `json:"last_switch"`
	Triangles   int           `json:"triangles"`
	FrameNumber uint64        `json:"frame"`
}

// String renders the debug panel as text.
func (t Telemetry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video: %s\n", sizeOrDash(t.MediaWidth, t.MediaHeight))
	fmt.Fprintf(&b, "Canvas backing: %d x %d\n", t.BackingW, t.BackingH)
	fmt.Fprintf(&b, "Canvas CSS: %d x %d\n",
		int(math.Round(t.Layout.DisplayWidth)), int(math.Round(t.Layout.DisplayHeight)))
	fmt.Fprintf(&b, "DPR: %.2f\n", t.Layout.PixelDensity)
	fmt.Fprintf(&b, "Render loop: %s\n", t.Loop)
	fmt.Fprintf(&b, "FPS: %.1f\n", t.FPS)
	fmt.Fprintf(&b, "Quads: %d\n", t.QuadCount)
	if t.Selected >= 0 {
		fmt.Fprintf(&b, "Selected: %d\n", t.Selected+1)
		fmt.Fprintf(&b, "Score: %.3f\n", t.SelectedScore)
	} else {
		b.WriteString("Selected: -\nScore: -\n")
	}
	b.WriteString("Scores: ")
	if len(t.Scores) == 0 {
		b.WriteString("-")
	}
	for i, s := range t.Scores {
		if i > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprintf(&b, "#%d: %.3f", i+1, s)
	}
	b.WriteString("\nPoints: ")
	if len(t.Points) == 0 {
		b.WriteString("-")
	}
	for i, p := range t.Points {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d(%.1f, %.1f)", i+1, p.X, p.Y)
	}
	fmt.Fprintf(&b, "\nAd: %d (%s)\n", t.ActiveAd+1, t.Rotation)
	fmt.Fprintf(&b, "Status: %s\n", t.Status)
	return b.String()
}

func sizeOrDash(w, h int) string {
	if w == 0 || h == 0 {
		return "-"
	}
	return fmt.Sprintf("%d x %d", w, h)
}
