package scoring

import "github.com/poiesic/talentscout/core"

// Level is a career stage. The ordered levels are Junior < Mid < Senior < Principal.
type Level = core.Level

const (
	LevelUnset        = core.LevelUnset
	LevelJunior       = core.LevelJunior
	LevelMid          = core.LevelMid
	LevelSenior       = core.LevelSenior
	LevelPrincipal    = core.LevelPrincipal
	LevelUnrecognized = core.LevelUnrecognized
)

// tier thresholds, evaluated highest first
var tiers = []struct {
	level       Level
	yearsActive int
	hProxy      float64
	worksCount  int
}{
	{LevelPrincipal, 10, 25, 80},
	{LevelSenior, 6, 12, 40},
	{LevelMid, 3, 6, 15},
}

// Classify estimates a career stage. Meeting any one threshold of a tier
// is enough.
func Classify(yearsActive int, hProxy float64, worksCount int) Level {
	for _, t := range tiers {
		if yearsActive >= t.yearsActive || hProxy >= t.hProxy || worksCount >= t.worksCount {
			return t.level
		}
	}
	return LevelJunior
}

// ordinal returns the rank of an ordered level and whether it has one.
func ordinal(l Level) (int, bool) {
	switch l {
	case LevelJunior:
		return 0, true
	case LevelMid:
		return 1, true
	case LevelSenior:
		return 2, true
	case LevelPrincipal:
		return 3, true
	case LevelUnset, LevelUnrecognized:
		return 0, false
	}
	return 0, false
}

var distanceFit = [...]float64{1.0, 0.8, 0.5, 0.2}

// Fit scores how well a candidate level matches the desired one.
// An unset desired level always fits; an unrecognized level on either side
// scores 0.8.
func Fit(candidate, desired Level) float64 {
	if desired == LevelUnset {
		return 1.0
	}
	c, okC := ordinal(candidate)
	d, okD := ordinal(desired)
	if !okC || !okD {
		return 0.8
	}
	diff := c - d
	if diff < 0 {
		diff = -diff
	}
	return distanceFit[min(diff, len(distanceFit)-1)]
}

// YearsActive counts publication years from the earliest dated work through
// currentYear, inclusive. Undated work counts as currentYear; the result is
// at least 1.
func YearsActive(works []core.Work, currentYear int) int {
	first := currentYear
	for _, w := range works {
		if w.Year > 0 && w.Year < first {
			first = w.Year
		}
	}
	return max(1, currentYear-first+1)
}
