// Package classify maps raw activity counters to ordered activity levels.
//
// Levels drive the status glyph and color shown next to each row. Thresholds
// come from configuration; the mapping from level to glyph is a static table.
package classify

// Level is an ordered activity classification. Higher means busier.
type Level int

const (
	// Connection activity levels.
	LevelQuiet Level = iota // no connections at all
	LevelIdle               // connections exist, none active
	LevelLight
	LevelModerate
	LevelBusy
	LevelSaturated
)

const (
	// Rate activity levels (query-rule hits/sec, QPS). LevelSilent aliases
	// the bottom of the scale; the middle tiers are shared with connections.
	LevelSilent = LevelQuiet
	LevelHot    = LevelSaturated
)

// Thresholds is an ascending list of band boundaries.
type Thresholds []float64

// Ascending reports whether t is strictly ascending. Zero-length is valid.
func (t Thresholds) Ascending() bool {
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return false
		}
	}
	return true
}

// rank returns how many boundaries the value has met or exceeded, i.e. the
// band index: 0 below the first boundary, len(t) at or above the last.
func (t Thresholds) rank(v float64) int {
	n := 0
	for _, b := range t {
		if v >= b {
			n++
		}
	}
	return n
}

// Scale pairs boundaries with the level each band maps to. Bands must hold
// exactly len(Thresholds)+1 entries in non-decreasing level order; the last
// band is open-ended, catching all values at or above the final boundary.
type Scale struct {
	Thresholds Thresholds
	Bands      []Level
}

// Classify maps a positive value to its band's level. Zero and negative
// values belong to the caller's floor state (Quiet/Idle/Silent), not to a
// band, so callers handle those before calling Classify.
func (s Scale) Classify(v float64) Level {
	r := s.Thresholds.rank(v)
	if r >= len(s.Bands) {
		r = len(s.Bands) - 1
	}
	return s.Bands[r]
}

// ConnectionScale builds the connection-activity scale from configured
// low/medium/high boundaries. The legend bands follow the medium and high
// boundaries: Light up to medium, Moderate up to high, Saturated beyond. The
// low boundary keeps its slot so the three configured values stay ordered,
// but the displayed tier does not change until medium.
func ConnectionScale(low, medium, high float64) Scale {
	return Scale{
		Thresholds: Thresholds{low, medium, high},
		Bands:      []Level{LevelLight, LevelLight, LevelModerate, LevelSaturated},
	}
}

// RateScale builds the hits-per-second scale: Light below low, Moderate
// below medium, Busy below high, Hot at or above high.
func RateScale(low, medium, high float64) Scale {
	return Scale{
		Thresholds: Thresholds{low, medium, high},
		Bands:      []Level{LevelLight, LevelModerate, LevelBusy, LevelHot},
	}
}

// Connections classifies connection counts. Quiet when there are no
// connections at all, Idle when none of them are active, otherwise the
// scale band for the active count.
func Connections(total, active float64, s Scale) Level {
	switch {
	case total <= 0:
		return LevelQuiet
	case active <= 0:
		return LevelIdle
	default:
		return s.Classify(active)
	}
}

// Rate classifies a per-second rate. Silent at zero, otherwise the band.
func Rate(perSec float64, s Scale) Level {
	if perSec <= 0 {
		return LevelSilent
	}
	return s.Classify(perSec)
}

// levelInfo is the static glyph/label table. Never computed.
type levelInfo struct {
	glyph string
	conn  string // label on the connection scale
	rate  string // label on the rate scale
}

var levels = [...]levelInfo{
	LevelQuiet:     {"○", "Quiet", "Silent"},
	LevelIdle:      {"◐", "Idle", "Idle"},
	LevelLight:     {"◑", "Light", "Light"},
	LevelModerate:  {"◕", "Moderate", "Moderate"},
	LevelBusy:      {"●", "Busy", "Busy"},
	LevelSaturated: {"●", "Saturated", "Hot"},
}

// Glyph returns the level's display symbol.
func (l Level) Glyph() string {
	if l < 0 || int(l) >= len(levels) {
		return "?"
	}
	return levels[l].glyph
}

// Label returns the level's name on the connection scale.
func (l Level) Label() string {
	if l < 0 || int(l) >= len(levels) {
		return "Unknown"
	}
	return levels[l].conn
}

// RateLabel returns the level's name on the rate scale (Silent/…/Hot).
func (l Level) RateLabel() string {
	if l < 0 || int(l) >= len(levels) {
		return "Unknown"
	}
	return levels[l].rate
}

// Badge renders the bracketed status cell, e.g. "[◕ Moderate]".
func (l Level) Badge() string {
	return "[" + l.Glyph() + " " + l.Label() + "]"
}

// RateBadge renders the bracketed status cell on the rate scale.
func (l Level) RateBadge() string {
	return "[" + l.Glyph() + " " + l.RateLabel() + "]"
}
