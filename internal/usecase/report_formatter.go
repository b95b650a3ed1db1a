package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/domain/prediction"
	"github.com/valyala/bytebufferpool"
)

const reportDateLayout = "2006-01-02"

// NoPredictionsMessage is the explicit "ran and found nothing" report body.
func NoPredictionsMessage(day time.Time) string {
	return "No high-confidence predictions found for " + day.Format(reportDateLayout) + "."
}

// FormatReport renders results that carry at least one strong market. Results
// without one are left out entirely.
func FormatReport(day time.Time, results []prediction.Result, threshold float64) string {
	strong := make([]prediction.Result, 0, len(results))
	for _, result := range results {
		if result.HasStrong() {
			strong = append(strong, result)
		}
	}
	if len(strong) == 0 {
		return NoPredictionsMessage(day)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("High-confidence predictions for ")
	_, _ = buf.WriteString(day.Format(reportDateLayout))
	_, _ = buf.WriteString(" (threshold ")
	_, _ = buf.WriteString(formatPercent(threshold))
	_, _ = buf.WriteString(")\n")

	for _, result := range strong {
		_ = buf.WriteByte('\n')
		writeFixtureHeader(buf, result.Fixture)

		xg := result.ExpectedGoals
		_, _ = buf.WriteString("xG ")
		_, _ = buf.WriteString(strconv.FormatFloat(xg.Home, 'f', 2, 64))
		_, _ = buf.WriteString(" - ")
		_, _ = buf.WriteString(strconv.FormatFloat(xg.Away, 'f', 2, 64))
		_, _ = buf.WriteString(" (")
		_, _ = buf.WriteString(basisLabel(xg.Basis))
		_, _ = buf.WriteString(")\n")

		for _, market := range result.Strong {
			_, _ = buf.WriteString("- ")
			_, _ = buf.WriteString(market.Label())
			_, _ = buf.WriteString(": ")
			_, _ = buf.WriteString(formatPercent(market.Probability))
			_ = buf.WriteByte('\n')
		}
	}

	return strings.TrimRight(buf.String(), "\n")
}

// FormatFixtureList renders the aggregated fixtures for a day, including live and
// finished ones with their score.
func FormatFixtureList(day time.Time, items []fixture.Fixture) string {
	if len(items) == 0 {
		return "No fixtures found for " + day.Format(reportDateLayout) + "."
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Fixtures for ")
	_, _ = buf.WriteString(day.Format(reportDateLayout))
	_ = buf.WriteByte('\n')
	for _, item := range items {
		_ = buf.WriteByte('\n')
		_, _ = buf.WriteString(item.KickoffAt.UTC().Format("15:04"))
		_, _ = buf.WriteString(" UTC ")
		_, _ = buf.WriteString(item.HomeTeam)
		if item.Score != nil && item.Status != fixture.StatusNotStarted {
			_, _ = buf.WriteString(" ")
			_, _ = buf.WriteString(strconv.Itoa(item.Score.Home))
			_, _ = buf.WriteString("-")
			_, _ = buf.WriteString(strconv.Itoa(item.Score.Away))
			_, _ = buf.WriteString(" ")
		} else {
			_, _ = buf.WriteString(" vs ")
		}
		_, _ = buf.WriteString(item.AwayTeam)
		if name := strings.TrimSpace(item.Competition.Name); name != "" {
			_, _ = buf.WriteString(" [")
			_, _ = buf.WriteString(name)
			_, _ = buf.WriteString("]")
		}
		if item.Status != fixture.StatusNotStarted {
			_, _ = buf.WriteString(" ")
			_, _ = buf.WriteString(string(item.Status))
		}
	}

	return buf.String()
}

func writeFixtureHeader(buf *bytebufferpool.ByteBuffer, item fixture.Fixture) {
	if name := strings.TrimSpace(item.Competition.Name); name != "" {
		_, _ = buf.WriteString(name)
		_ = buf.WriteByte('\n')
	}
	_, _ = buf.WriteString(item.HomeTeam)
	_, _ = buf.WriteString(" vs ")
	_, _ = buf.WriteString(item.AwayTeam)
	_, _ = buf.WriteString(" - ")
	_, _ = buf.WriteString(item.KickoffAt.UTC().Format("15:04"))
	_, _ = buf.WriteString(" UTC\n")
}

func basisLabel(basis prediction.Basis) string {
	switch basis {
	case prediction.BasisRecentForm:
		return "recent form"
	case prediction.BasisLeagueAverage:
		return "league average"
	default:
		return string(basis)
	}
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 1, 64) + "%"
}
