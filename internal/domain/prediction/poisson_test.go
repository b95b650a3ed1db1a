package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRates = []float64{0.05, 0.1, 0.4, 0.9, 1.3, 1.5, 2.5, 3.7, 5.2, 8.0}

func TestPoissonPMF_MatchesClosedForm(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, math.Exp(-2.5), PoissonPMF(0, 2.5), 1e-15)
	assert.InDelta(t, 2.5*math.Exp(-2.5), PoissonPMF(1, 2.5), 1e-15)
	assert.InDelta(t, 2.5*2.5*math.Exp(-2.5)/2, PoissonPMF(2, 2.5), 1e-15)
	assert.Zero(t, PoissonPMF(-1, 2.5))

	sum := 0.0
	for k := 0; k <= 60; k++ {
		sum += PoissonPMF(k, 3.7)
	}
	assert.InDelta(t, 1, sum, 1e-12)
}

func TestProbOverUnder_AreComplements(t *testing.T) {
	t.Parallel()

	for _, lambda := range sampleRates {
		for _, line := range []float64{0.5, 1.5, 2.5, 3.5, 4.5, 7.5} {
			over := ProbOver(line, lambda)
			under := ProbUnder(line, lambda)
			require.GreaterOrEqual(t, over, 0.0)
			require.LessOrEqual(t, over, 1.0)
			assert.InDelta(t, 1, over+under, 1e-9, "line=%v lambda=%v", line, lambda)
		}
	}
}

func TestProbOver_KnownValue(t *testing.T) {
	t.Parallel()

	// 1.5 home + 1.0 away.
	over := ProbOver(2.5, 2.5)
	under := ProbUnder(2.5, 2.5)
	assert.InDelta(t, 0.456, over, 1e-3)
	assert.InDelta(t, 0.544, under, 1e-3)
}

func TestProbOver_DecreasesWithLine(t *testing.T) {
	t.Parallel()

	prev := 1.0
	for _, line := range []float64{0.5, 1.5, 2.5, 3.5, 4.5} {
		got := ProbOver(line, 2.6)
		assert.Less(t, got, prev)
		prev = got
	}
}

func TestProbBTTS_FloorRates(t *testing.T) {
	t.Parallel()

	got := ProbBTTS(0.1, 0.05)
	want := 1 - math.Exp(-0.1) - math.Exp(-0.05) + math.Exp(-0.15)
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.0044, got, 3e-4)
}

func TestProbBTTS_IsMonotonic(t *testing.T) {
	t.Parallel()

	for _, fixed := range sampleRates {
		prevHome, prevAway := -1.0, -1.0
		for _, lambda := range sampleRates {
			home := ProbBTTS(lambda, fixed)
			away := ProbBTTS(fixed, lambda)
			assert.Greater(t, home, prevHome, "home lambda=%v fixed=%v", lambda, fixed)
			assert.Greater(t, away, prevAway, "away lambda=%v fixed=%v", lambda, fixed)
			prevHome, prevAway = home, away
		}
	}
}

func TestOutcomeProbabilities_SumToOne(t *testing.T) {
	t.Parallel()

	for _, home := range sampleRates {
		for _, away := range sampleRates {
			h, d, a := OutcomeProbabilities(home, away)
			assert.InDelta(t, 1, h+d+a, 1e-6, "home=%v away=%v", home, away)
			assert.GreaterOrEqual(t, h, 0.0)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.GreaterOrEqual(t, a, 0.0)
		}
	}
}

func TestOutcomeProbabilities_FavoursStrongerSide(t *testing.T) {
	t.Parallel()

	h, _, a := OutcomeProbabilities(2.4, 0.6)
	assert.Greater(t, h, a)

	h, d, a := OutcomeProbabilities(1.3, 1.3)
	assert.InDelta(t, h, a, 1e-12)
	assert.Greater(t, d, 0.2)
}
