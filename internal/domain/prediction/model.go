package prediction

import (
	"fmt"
	"strconv"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
)

// Basis says where an ExpectedGoals pair came from.
type Basis string

const (
	BasisRecentForm    Basis = "recent_form"
	BasisLeagueAverage Basis = "league_average"
)

// ExpectedGoals holds the Poisson rates for goals scored by each side. Both are > 0.
type ExpectedGoals struct {
	Home  float64
	Away  float64
	Basis Basis
}

func (x ExpectedGoals) Total() float64 {
	return x.Home + x.Away
}

type MarketKind string

const (
	KindOver    MarketKind = "over"
	KindUnder   MarketKind = "under"
	KindBTTSYes MarketKind = "btts_yes"
	KindBTTSNo  MarketKind = "btts_no"
	KindHomeWin MarketKind = "home_win"
	KindDraw    MarketKind = "draw"
	KindAwayWin MarketKind = "away_win"
)

// MarketProbability is one proposition evaluated for a fixture.
type MarketProbability struct {
	Kind MarketKind
	// Line is the goal threshold for over/under markets, zero otherwise.
	Line        float64
	Probability float64
}

// Group identifies the set of mutually exclusive propositions this market belongs to.
func (m MarketProbability) Group() string {
	switch m.Kind {
	case KindOver, KindUnder:
		return "total:" + formatLine(m.Line)
	case KindBTTSYes, KindBTTSNo:
		return "btts"
	default:
		return "1x2"
	}
}

func (m MarketProbability) Label() string {
	switch m.Kind {
	case KindOver:
		return fmt.Sprintf("Over %s goals", formatLine(m.Line))
	case KindUnder:
		return fmt.Sprintf("Under %s goals", formatLine(m.Line))
	case KindBTTSYes:
		return "Both teams to score"
	case KindBTTSNo:
		return "Both teams to score: No"
	case KindHomeWin:
		return "Home win"
	case KindDraw:
		return "Draw"
	case KindAwayWin:
		return "Away win"
	default:
		return string(m.Kind)
	}
}

func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}

// Result is the per-fixture output of one cycle.
type Result struct {
	Fixture       fixture.Fixture
	ExpectedGoals ExpectedGoals
	Markets       []MarketProbability
	Strong        []MarketProbability
}

func (r Result) HasStrong() bool {
	return len(r.Strong) > 0
}
