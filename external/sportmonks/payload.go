package sportmonks

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type fixturesEnvelope struct {
	Data       []fixtureDetails `json:"data"`
	Pagination pagination       `json:"pagination"`
}

type pagination struct {
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	CurrentPage int  `json:"current_page"`
	HasMore     bool `json:"has_more"`
}

type fixtureDetails struct {
	ID           int64                `json:"id"`
	LeagueID     int64                `json:"league_id"`
	StartingAt   string               `json:"starting_at"`
	StateID      int64                `json:"state_id"`
	ResultInfo   string               `json:"result_info"`
	Participants []fixtureParticipant `json:"participants"`
	League       relation[leagueRef]  `json:"league"`
	State        relation[stateRef]   `json:"state"`
	Scores       []fixtureScoreItem   `json:"scores"`
}

type fixtureParticipant struct {
	ID   int64                  `json:"id"`
	Name string                 `json:"name"`
	Meta fixtureParticipantMeta `json:"meta"`
}

type fixtureParticipantMeta struct {
	Location string `json:"location"`
}

type leagueRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type stateRef struct {
	ID            int64  `json:"id"`
	ShortName     string `json:"short_name"`
	DeveloperName string `json:"developer_name"`
}

type fixtureScoreItem struct {
	ParticipantID int64          `json:"participant_id"`
	Description   string         `json:"description"`
	Score         map[string]any `json:"score"`
	Data          map[string]any `json:"data"`
	Goals         any            `json:"goals"`
}

func (f fixtureScoreItem) numericScore() (int, bool) {
	for _, candidate := range []any{
		f.Goals,
		lookupMapValue(f.Data, "goals"),
		lookupMapValue(f.Data, "value"),
		lookupMapValue(f.Score, "goals"),
		lookupMapValue(f.Score, "value"),
	} {
		if candidate == nil {
			continue
		}
		score := int(asFloat64(candidate))
		if score >= 0 {
			return score, true
		}
	}
	return 0, false
}

// relation decodes an include that may arrive bare or wrapped in {"data": ...}.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}

func lookupMapValue(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func asString(value any) string {
	if typed, ok := value.(string); ok {
		return typed
	}
	return ""
}

func asFloat64(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return -1
		}
		return parsed
	default:
		return -1
	}
}
