package prediction

import "sort"

// DefaultGoalLines are the over/under thresholds evaluated when none are configured.
var DefaultGoalLines = []float64{0.5, 1.5, 2.5, 3.5, 4.5}

// ComputeMarkets evaluates every market for one fixture. Lines are evaluated in ascending order.
func ComputeMarkets(xg ExpectedGoals, lines []float64) []MarketProbability {
	if len(lines) == 0 {
		lines = DefaultGoalLines
	}
	sorted := append([]float64(nil), lines...)
	sort.Float64s(sorted)

	out := make([]MarketProbability, 0, len(sorted)*2+5)
	total := xg.Total()
	for _, line := range sorted {
		over := ProbOver(line, total)
		out = append(out,
			MarketProbability{Kind: KindOver, Line: line, Probability: over},
			MarketProbability{Kind: KindUnder, Line: line, Probability: 1 - over},
		)
	}

	btts := ProbBTTS(xg.Home, xg.Away)
	out = append(out,
		MarketProbability{Kind: KindBTTSYes, Probability: btts},
		MarketProbability{Kind: KindBTTSNo, Probability: 1 - btts},
	)

	home, draw, away := OutcomeProbabilities(xg.Home, xg.Away)
	out = append(out,
		MarketProbability{Kind: KindHomeWin, Probability: home},
		MarketProbability{Kind: KindDraw, Probability: draw},
		MarketProbability{Kind: KindAwayWin, Probability: away},
	)
	return out
}
