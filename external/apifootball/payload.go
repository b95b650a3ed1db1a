package apifootball

import (
	"fmt"
	"sort"
	"strings"
)

type fixturesEnvelope struct {
	// Errors is [] when empty and an object keyed by field otherwise.
	Errors   any           `json:"errors"`
	Results  int           `json:"results"`
	Response []fixtureItem `json:"response"`
}

func (e fixturesEnvelope) errorMessage() string {
	switch typed := e.Errors.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return ""
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", key, typed[key]))
		}
		return strings.Join(parts, "; ")
	case []any:
		if len(typed) == 0 {
			return ""
		}
		return fmt.Sprint(typed...)
	default:
		return ""
	}
}

type fixtureItem struct {
	Fixture fixtureInfo `json:"fixture"`
	League  leagueInfo  `json:"league"`
	Teams   teamsInfo   `json:"teams"`
	Goals   goalsInfo   `json:"goals"`
}

type fixtureInfo struct {
	ID     int64      `json:"id"`
	Date   string     `json:"date"`
	Status statusInfo `json:"status"`
}

type statusInfo struct {
	Long  string `json:"long"`
	Short string `json:"short"`
}

type leagueInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

type teamsInfo struct {
	Home teamInfo `json:"home"`
	Away teamInfo `json:"away"`
}

type teamInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type goalsInfo struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
