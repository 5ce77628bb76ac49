package billboard

import (
	"time"

	"github.com/sirupsen/logrus"
)

// debugStats holds per-frame stage timings and the warp triangle count.
// Only logged when the session is in debug mode.
type debugStats struct {
	layoutTime    time.Duration
	snapshotTime  time.Duration
	compositeTime time.Duration
	warpTime      time.Duration
	overlayTime   time.Duration
	triangles     int
}

func (d debugStats) total() time.Duration {
	return d.layoutTime + d.snapshotTime + d.compositeTime + d.warpTime + d.overlayTime
}

// debugLog writes the frame's stage timings at debug level.
func (s *Session) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.log.WithFields(logrus.Fields{
		"function":  "renderFrame",
		"frame":     s.frameNo,
		"layout":    stats.layoutTime,
		"snapshot":  stats.snapshotTime,
		"composite": stats.compositeTime,
		"warp":      stats.warpTime,
		"overlay":   stats.overlayTime,
		"total":     stats.total(),
		"triangles": stats.triangles,
		"quads":     s.quads.Len(),
		"selected":  s.selection.Index,
	}).Debug("frame stats")
}

// debugWarnSlowFrame is the total above which a frame is reported even
// outside debug mode.
const debugWarnSlowFrame = 50 * time.Millisecond

func (s *Session) debugCheckFrameTime(stats debugStats) {
	if t := stats.total(); t > debugWarnSlowFrame {
		s.log.WithFields(logrus.Fields{
			"function":  "renderFrame",
			"total":     t,
			"threshold": debugWarnSlowFrame,
		}).Warn("slow frame")
	}
}
