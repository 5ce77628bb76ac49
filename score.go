package billboard

import "math"

// ScoreConfig holds the weights and bands of the ad-slot fitness heuristic.
// The defaults were tuned by eye on sample footage; they are configuration,
// not derived values.
type ScoreConfig struct {
	AreaWeight     float64 `yaml:"area_weight"`
	AspectWeight   float64 `yaml:"aspect_weight"`
	SkewWeight     float64 `yaml:"skew_weight"`
	PositionWeight float64 `yaml:"position_weight"`

	// Area ratio (quad area / drawable area) band that scores 1.
	AreaMin float64 `yaml:"area_min"`
	AreaMax float64 `yaml:"area_max"`
	// AreaZero is the ratio at which the area score reaches 0 above the band.
	AreaZero float64 `yaml:"area_zero"`

	// TargetAspect is the ideal bounding-box width/height ratio.
	TargetAspect float64 `yaml:"target_aspect"`
	// AspectTolerance is the absolute log-ratio deviation that scores 0.
	AspectTolerance float64 `yaml:"aspect_tolerance"`

	// AnchorX and AnchorY are the preferred centroid position, normalized
	// to the drawable rectangle.
	AnchorX float64 `yaml:"anchor_x"`
	AnchorY float64 `yaml:"anchor_y"`
	// PositionFalloff is the normalized distance from the anchor that scores 0.
	PositionFalloff float64 `yaml:"position_falloff"`
	// EdgeMargin is the normalized border width in which EdgePenalty applies.
	EdgeMargin  float64 `yaml:"edge_margin"`
	EdgePenalty float64 `yaml:"edge_penalty"`
}

// DefaultScoreConfig returns the stock heuristic.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		AreaWeight:      0.35,
		AspectWeight:    0.25,
		SkewWeight:      0.20,
		PositionWeight:  0.20,
		AreaMin:         0.05,
		AreaMax:         0.30,
		AreaZero:        0.60,
		TargetAspect:    3.0,
		AspectTolerance: 1.2,
		AnchorX:         0.5,
		AnchorY:         0.35,
		PositionFalloff: 0.6,
		EdgeMargin:      0.1,
		EdgePenalty:     0.6,
	}
}

// Breakdown is a quad's score with its four sub-scores, each in [0, 1].
type Breakdown struct {
	Area     float64
	Aspect   float64
	Skew     float64
	Position float64
	Total    float64
	Convex   bool
}

// Score returns the fitness of q as an ad slot under the default heuristic.
func Score(q Quad, l Layout) float64 {
	return ScoreBreakdown(q, l, DefaultScoreConfig()).Total
}

// ScoreBreakdown scores q against layout l. Non-convex quads score exactly 0.
func ScoreBreakdown(q Quad, l Layout, cfg ScoreConfig) Breakdown {
	if !q.IsConvex() {
		return Breakdown{}
	}
	b := Breakdown{Convex: true}

	totalArea := l.DrawWidth * l.DrawHeight
	if totalArea == 0 {
		totalArea = 1
	}
	b.Area = areaScore(q.Area()/totalArea, cfg)

	box := q.Bounds()
	b.Aspect = aspectScore(box.Width/box.Height, cfg)

	b.Skew = skewScore(q.EdgeLengths())

	c := q.Centroid()
	var nx, ny float64
	if l.DrawWidth > 0 && l.DrawHeight > 0 {
		nx = (c.X - l.OffsetX) / l.DrawWidth
		ny = (c.Y - l.OffsetY) / l.DrawHeight
	}
	b.Position = positionScore(nx, ny, cfg)

	b.Total = b.Area*cfg.AreaWeight +
		b.Aspect*cfg.AspectWeight +
		b.Skew*cfg.SkewWeight +
		b.Position*cfg.PositionWeight
	return b
}

// areaScore maps an area ratio onto [0, 1]: 1 inside [AreaMin, AreaMax],
// ramping linearly up from 0 at ratio 0 and down to 0 at AreaZero.
func areaScore(ratio float64, cfg ScoreConfig) float64 {
	switch {
	case ratio >= cfg.AreaMin && ratio <= cfg.AreaMax:
		return 1
	case ratio < cfg.AreaMin:
		if cfg.AreaMin <= 0 {
			return 0
		}
		return math.Max(0, ratio/cfg.AreaMin)
	default:
		span := cfg.AreaZero - cfg.AreaMax
		if span <= 0 {
			return 0
		}
		return math.Max(0, 1-(ratio-cfg.AreaMax)/span)
	}
}

func aspectScore(ratio float64, cfg ScoreConfig) float64 {
	if ratio <= 0 || cfg.TargetAspect <= 0 || cfg.AspectTolerance <= 0 {
		return 0
	}
	deviation := math.Abs(math.Log(ratio / cfg.TargetAspect))
	return math.Max(0, 1-deviation/cfg.AspectTolerance)
}

// skewScore compares opposite edges: 1 for a parallelogram-like quad,
// falling linearly with the mean relative length difference.
func skewScore(edges [4]float64) float64 {
	top, right, bottom, left := edges[0], edges[1], edges[2], edges[3]
	topBottom := math.Abs(top-bottom) / math.Max(math.Max(top, bottom), 1)
	leftRight := math.Abs(right-left) / math.Max(math.Max(right, left), 1)
	return math.Max(0, 1-(topBottom+leftRight)/2)
}

func positionScore(nx, ny float64, cfg ScoreConfig) float64 {
	if cfg.PositionFalloff <= 0 {
		return 0
	}
	dist := math.Hypot(nx-cfg.AnchorX, ny-cfg.AnchorY)
	s := math.Max(0, 1-dist/cfg.PositionFalloff)
	lo, hi := cfg.EdgeMargin, 1-cfg.EdgeMargin
	if nx < lo || nx > hi || ny < lo || ny > hi {
		s *= cfg.EdgePenalty
	}
	return s
}

// Selection is the result of SelectBest.
type Selection struct {
	// Index of the winning quad, or -1 when the store is empty.
	Index int
	// Score of the winning quad, 0 when the store is empty.
	Score float64
	// Scores holds every quad's score in insertion order.
	Scores []float64
}

// SelectBest scores every quad in the store and returns the highest. The
// first quad wins ties since candidates are visited in insertion order.
func SelectBest(store *QuadStore, l Layout, cfg ScoreConfig) Selection {
	sel := Selection{Index: -1, Score: math.Inf(-1)}
	quads := store.All()
	sel.Scores = make([]float64, len(quads))
	for i, q := range quads {
		s := ScoreBreakdown(q, l, cfg).Total
		sel.Scores[i] = s
		if s > sel.Score {
			sel.Score = s
			sel.Index = i
		}
	}
	if len(quads) == 0 {
		sel.Score = 0
	}
	return sel
}
