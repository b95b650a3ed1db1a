package prediction

import "errors"

const DefaultConfidence = 0.85

var ErrInvalidConfidence = errors.New("confidence threshold must be greater than 0.5 and at most 1")

func ValidateConfidence(threshold float64) error {
	if threshold <= 0.5 || threshold > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// SelectStrong keeps, per group of exclusive markets, the one side whose probability
// meets the threshold. On an exact tie the earlier market wins, so "over" beats "under".
func SelectStrong(markets []MarketProbability, threshold float64) ([]MarketProbability, error) {
	if err := ValidateConfidence(threshold); err != nil {
		return nil, err
	}

	order := make([]string, 0, len(markets))
	best := make(map[string]MarketProbability, len(markets))
	for _, market := range markets {
		if market.Probability < threshold {
			continue
		}
		group := market.Group()
		current, seen := best[group]
		if !seen {
			order = append(order, group)
			best[group] = market
			continue
		}
		if market.Probability > current.Probability {
			best[group] = market
		}
	}

	out := make([]MarketProbability, 0, len(order))
	for _, group := range order {
		out = append(out, best[group])
	}
	return out, nil
}
