package provider

import (
	stderrors "errors"
	"fmt"
)

var ErrInvalidTeamRef = stderrors.New("invalid team ref")

func InvalidTeamRef(provider, teamRef string) error {
	return fmt.Errorf("%w: %s cannot resolve %q", ErrInvalidTeamRef, provider, teamRef)
}
