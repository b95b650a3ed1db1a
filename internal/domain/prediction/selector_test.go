package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMarkets_ContainsEveryLineAndOutcome(t *testing.T) {
	t.Parallel()

	markets := ComputeMarkets(ExpectedGoals{Home: 1.5, Away: 1.0}, []float64{2.5, 0.5})
	require.Len(t, markets, 2*2+2+3)

	assert.Equal(t, KindOver, markets[0].Kind)
	assert.Equal(t, 0.5, markets[0].Line)
	assert.Equal(t, KindUnder, markets[3].Kind)
	assert.Equal(t, 2.5, markets[3].Line)
	assert.InDelta(t, 0.544, markets[3].Probability, 1e-3)

	for i := 0; i < 4; i += 2 {
		assert.InDelta(t, 1, markets[i].Probability+markets[i+1].Probability, 1e-9)
	}
}

func TestSelectStrong_NeverReturnsBothSides(t *testing.T) {
	t.Parallel()

	for _, threshold := range []float64{0.51, 0.6, 0.75, 0.85, 0.95} {
		for _, home := range sampleRates {
			for _, away := range sampleRates {
				markets := ComputeMarkets(ExpectedGoals{Home: home, Away: away}, nil)
				strong, err := SelectStrong(markets, threshold)
				require.NoError(t, err)

				seen := map[string]bool{}
				for _, m := range strong {
					assert.GreaterOrEqual(t, m.Probability, threshold)
					assert.False(t, seen[m.Group()], "group %s selected twice", m.Group())
					seen[m.Group()] = true
				}
			}
		}
	}
}

func TestSelectStrong_PicksQualifyingSide(t *testing.T) {
	t.Parallel()

	markets := []MarketProbability{
		{Kind: KindOver, Line: 0.5, Probability: 0.93},
		{Kind: KindUnder, Line: 0.5, Probability: 0.07},
		{Kind: KindOver, Line: 4.5, Probability: 0.10},
		{Kind: KindUnder, Line: 4.5, Probability: 0.90},
		{Kind: KindOver, Line: 2.5, Probability: 0.46},
		{Kind: KindUnder, Line: 2.5, Probability: 0.54},
	}

	strong, err := SelectStrong(markets, DefaultConfidence)
	require.NoError(t, err)
	require.Len(t, strong, 2)
	assert.Equal(t, "Over 0.5 goals", strong[0].Label())
	assert.Equal(t, "Under 4.5 goals", strong[1].Label())
}

func TestSelectStrong_TiePrefersOver(t *testing.T) {
	t.Parallel()

	markets := []MarketProbability{
		{Kind: KindOver, Line: 1.5, Probability: 0.9},
		{Kind: KindUnder, Line: 1.5, Probability: 0.9},
	}
	strong, err := SelectStrong(markets, 0.85)
	require.NoError(t, err)
	require.Len(t, strong, 1)
	assert.Equal(t, KindOver, strong[0].Kind)
}

func TestSelectStrong_NothingQualifies(t *testing.T) {
	t.Parallel()

	markets := ComputeMarkets(ExpectedGoals{Home: 1.3, Away: 1.3}, []float64{2.5})
	strong, err := SelectStrong(markets, DefaultConfidence)
	require.NoError(t, err)
	assert.Empty(t, strong)
}

func TestSelectStrong_RejectsLowThreshold(t *testing.T) {
	t.Parallel()

	for _, threshold := range []float64{0, 0.5, 1.01} {
		_, err := SelectStrong(nil, threshold)
		assert.ErrorIs(t, err, ErrInvalidConfidence)
	}
}
