package billboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	// Space is "display" (default) or "media" for click coordinates.
	Space  string `json:"space,omitempty"`
	Frames int    `json:"frames,omitempty"`
	Index  int    `json:"index,omitempty"`
	// On sets edit mode for "edit"; absent toggles it.
	On *bool `json:"on,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"click": true, "wait": true, "tick": true, "undo": true, "clear": true,
	"clearCurrent": true, "edit": true, "detect": true, "screenshot": true,
	"ad": true,
}

// TestRunner sequences injected clicks, editing commands, detection and
// screenshots across frames for automated visual testing. Attach to a
// Session via SetTestRunner; the Scheduler advances it from Pump.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Session via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the session.
func (s *Session) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Errors returns the errors of "detect" steps, in order.
func (r *TestRunner) Errors() []error {
	return r.errs
}

// step advances the test runner by one frame. Called from Scheduler.Pump.
func (r *TestRunner) step(sc *Scheduler, now time.Duration) {
	if r.done {
		return
	}
	s := sc.session
	// Wait for pending injections to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		if st.Space == "media" {
			s.InjectMediaClick(st.X, st.Y)
		} else {
			s.InjectClick(st.X, st.Y)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "tick":
		sc.Tick(now)
	case "undo":
		s.UndoQuad()
	case "clear":
		s.ClearAll()
	case "clearCurrent":
		s.ClearCurrent()
	case "edit":
		if st.On != nil {
			s.SetEditMode(*st.On)
		} else {
			s.ToggleEdit()
		}
	case "detect":
		if err := s.AutoDetect(context.Background()); err != nil {
			s.log.WithFields(logrus.Fields{
				"function": "TestRunner.step",
				"error":    err.Error(),
			}).Debug("detect step finished without a quad")
			r.errs = append(r.errs, err)
		}
	case "ad":
		s.ForceAd(st.Index)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
