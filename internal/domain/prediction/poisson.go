package prediction

import "math"

const (
	minTailCap     = 20
	tailCapPadding = 10
	minGridBound   = 8
)

// PoissonPMF is λ^k·e^(−λ)/k!, evaluated in log space so large k stays finite.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if k == 0 {
		return math.Exp(-lambda)
	}
	lgammaK, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lgammaK)
}

// ProbOver returns P(total goals ≥ floor(threshold)+1) for a half-goal threshold.
func ProbOver(threshold, lambdaTotal float64) float64 {
	minGoals := int(math.Floor(threshold)) + 1
	if minGoals <= 0 {
		return 1
	}

	upper := tailCap(minGoals, lambdaTotal)
	sum := 0.0
	for k := minGoals; k <= upper; k++ {
		sum += PoissonPMF(k, lambdaTotal)
	}
	return clampProbability(sum)
}

// ProbUnder is the exact complement of ProbOver.
func ProbUnder(threshold, lambdaTotal float64) float64 {
	return 1 - ProbOver(threshold, lambdaTotal)
}

// ProbBTTS assumes the two sides score independently.
func ProbBTTS(lambdaHome, lambdaAway float64) float64 {
	homeBlank := PoissonPMF(0, lambdaHome)
	awayBlank := PoissonPMF(0, lambdaAway)
	return clampProbability(1 - homeBlank - awayBlank + homeBlank*awayBlank)
}

// OutcomeProbabilities sums the independent score grid into home win, draw and away win.
// The grid is renormalised so the three buckets add up to one.
func OutcomeProbabilities(lambdaHome, lambdaAway float64) (home, draw, away float64) {
	bound := gridBound(lambdaHome, lambdaAway)
	homeDist := distribution(lambdaHome, bound)
	awayDist := distribution(lambdaAway, bound)

	for h, ph := range homeDist {
		for a, pa := range awayDist {
			p := ph * pa
			switch {
			case h > a:
				home += p
			case h == a:
				draw += p
			default:
				away += p
			}
		}
	}

	total := home + draw + away
	if total <= 0 {
		return 0, 1, 0
	}
	return home / total, draw / total, away / total
}

func distribution(lambda float64, bound int) []float64 {
	out := make([]float64, bound+1)
	for k := range out {
		out[k] = PoissonPMF(k, lambda)
	}
	return out
}

func tailCap(minGoals int, lambda float64) int {
	upper := max(minTailCap, minGoals+tailCapPadding)
	if spread := int(math.Ceil(lambda + 10*math.Sqrt(lambda))); spread > upper {
		upper = spread
	}
	return upper
}

func gridBound(lambdaHome, lambdaAway float64) int {
	lambda := math.Max(lambdaHome, lambdaAway)
	return max(minGridBound, int(math.Ceil(lambda+8*math.Sqrt(lambda)))+2)
}

func clampProbability(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
