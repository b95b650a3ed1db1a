package footballdata

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64          `json:"id"`
	UTCDate     string         `json:"utcDate"`
	Status      string         `json:"status"`
	Matchday    int            `json:"matchday"`
	Area        areaRef        `json:"area"`
	Competition competitionRef `json:"competition"`
	HomeTeam    teamRef        `json:"homeTeam"`
	AwayTeam    teamRef        `json:"awayTeam"`
	Score       scoreInfo      `json:"score"`
}

type areaRef struct {
	Name string `json:"name"`
}

type competitionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type teamRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type scoreInfo struct {
	Winner      string    `json:"winner"`
	FullTime    scorePair `json:"fullTime"`
	RegularTime scorePair `json:"regularTime"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
