package fixture

import (
	"context"
	"time"
)

// Source lists the fixtures one provider knows for a calendar day. Implementations
// swallow their own failures and return an empty slice.
type Source interface {
	Name() string
	FixturesByDate(ctx context.Context, day time.Time) []Fixture
}

// FormSource returns the most recent completed matches of a provider-qualified team.
type FormSource interface {
	Name() string
	RecentResults(ctx context.Context, teamRef string, limit int) ([]TeamResult, error)
}
