package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
)

// TeamFormProvider returns a team's recent completed matches.
type TeamFormProvider interface {
	RecentResults(ctx context.Context, teamRef string, limit int) ([]fixture.TeamResult, error)
}

// TeamFormChain asks each form source in order and stops at the first non-empty
// answer. Only sources named after the team ref's provider are asked, since team
// ids are not portable across providers.
type TeamFormChain struct {
	sources []fixture.FormSource
	logger  *logging.Logger
}

func NewTeamFormChain(logger *logging.Logger, sources ...fixture.FormSource) *TeamFormChain {
	if logger == nil {
		logger = logging.Default()
	}

	filtered := make([]fixture.FormSource, 0, len(sources))
	for _, source := range sources {
		if source != nil {
			filtered = append(filtered, source)
		}
	}

	return &TeamFormChain{
		sources: filtered,
		logger:  logger,
	}
}

func (c *TeamFormChain) RecentResults(ctx context.Context, teamRef string, limit int) ([]fixture.TeamResult, error) {
	provider, _, ok := fixture.SplitQualifiedID(teamRef)
	if !ok {
		return nil, fmt.Errorf("%w: team ref %q is not provider-qualified", ErrInvalidInput, teamRef)
	}

	var lastErr error
	asked := 0
	for _, source := range c.sources {
		if !strings.EqualFold(source.Name(), provider) {
			continue
		}
		asked++

		items, err := source.RecentResults(ctx, teamRef, limit)
		if err != nil {
			lastErr = err
			c.logger.WarnContext(ctx, "team form lookup failed",
				"provider", source.Name(),
				"team_ref", teamRef,
				"error", err,
			)
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	if asked == 0 {
		return nil, fmt.Errorf("%w: no form source for provider %s", ErrDependencyUnavailable, provider)
	}
	return nil, nil
}
