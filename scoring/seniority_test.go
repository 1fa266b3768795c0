package scoring

import (
	"testing"

	"github.com/poiesic/talentscout/core"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		years int
		h     float64
		works int
		want  Level
	}{
		{"nothing", 0, 0, 0, LevelJunior},
		{"mid by years", 3, 0, 0, LevelMid},
		{"mid by h", 0, 6, 0, LevelMid},
		{"mid by works", 0, 0, 15, LevelMid},
		{"senior by years", 6, 0, 0, LevelSenior},
		{"senior by works", 2, 1, 40, LevelSenior},
		{"principal by h", 1, 25, 1, LevelPrincipal},
		{"principal by years", 10, 0, 0, LevelPrincipal},
		{"just below mid", 2, 5.9, 14, LevelJunior},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.years, tt.h, tt.works))
		})
	}
}

func TestFit(t *testing.T) {
	assert.Equal(t, 1.0, Fit(LevelJunior, LevelUnset))
	assert.Equal(t, 1.0, Fit(LevelUnrecognized, LevelUnset))
	assert.Equal(t, 0.8, Fit(LevelSenior, LevelUnrecognized))
	assert.Equal(t, 0.8, Fit(LevelUnrecognized, LevelSenior))
	assert.Equal(t, 0.8, Fit(LevelMid, LevelSenior))
	assert.Equal(t, 0.5, Fit(LevelJunior, LevelSenior))
	assert.Equal(t, 0.2, Fit(LevelJunior, LevelPrincipal))
}

func TestFit_SymmetricAndReflexive(t *testing.T) {
	levels := []Level{LevelJunior, LevelMid, LevelSenior, LevelPrincipal}
	for _, a := range levels {
		assert.Equal(t, 1.0, Fit(a, a), "reflexive %s", a)
		for _, b := range levels {
			assert.Equal(t, Fit(a, b), Fit(b, a), "symmetric %s/%s", a, b)
		}
	}
}

func TestFit_ParsedLevels(t *testing.T) {
	assert.Equal(t, 0.8, Fit(LevelSenior, core.ParseLevel("staff")))
	assert.Equal(t, 1.0, Fit(LevelSenior, core.ParseLevel(" Senior ")))
}

func TestYearsActive(t *testing.T) {
	assert.Equal(t, 1, YearsActive(nil, 2025))
	assert.Equal(t, 7, YearsActive([]core.Work{{Year: 2021}, {Year: 2019}, {Year: 0}}, 2025))
	assert.Equal(t, 1, YearsActive([]core.Work{{Year: 2030}}, 2025))
}
