package httpapi

import (
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
)

type runPredictionRequest struct {
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Broadcast bool   `json:"broadcast"`
}

type internalPredictJobRequest struct {
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=128"`
}

type commandRequest struct {
	Text string `json:"text" validate:"required,max=512"`
}

type commandResponse struct {
	Reply string `json:"reply"`
}

type fixtureListDTO struct {
	Date     string       `json:"date"`
	Count    int          `json:"count"`
	Fixtures []fixtureDTO `json:"fixtures"`
}

type fixtureDTO struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	CompetitionID string    `json:"competition_id"`
	Competition   string    `json:"competition"`
	Country       string    `json:"country,omitempty"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	KickoffAt     time.Time `json:"kickoff_at"`
	Status        string    `json:"status"`
	Score         *scoreDTO `json:"score,omitempty"`
}

type scoreDTO struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func toFixtureDTOs(items []fixture.Fixture) []fixtureDTO {
	out := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		dto := fixtureDTO{
			ID:            item.ID,
			Provider:      item.Provider,
			CompetitionID: item.Competition.ID,
			Competition:   item.Competition.Name,
			Country:       item.Competition.Country,
			HomeTeam:      item.HomeTeam,
			AwayTeam:      item.AwayTeam,
			KickoffAt:     item.KickoffAt.UTC(),
			Status:        string(item.Status),
		}
		if item.Score != nil {
			dto.Score = &scoreDTO{Home: item.Score.Home, Away: item.Score.Away}
		}
		out = append(out, dto)
	}
	return out
}
