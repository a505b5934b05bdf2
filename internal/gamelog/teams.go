package gamelog

import (
	"fmt"
	"strings"
	"time"
)

// Team is a static league member.
type Team struct {
	ID   int
	Abbr string
	Name string
}

// LeagueSize is the number of teams in the league tables.
const LeagueSize = 30

var leagueTeams = []Team{
	{ID: 1610612737, Abbr: "ATL", Name: "Atlanta Hawks"},
	{ID: 1610612738, Abbr: "BOS", Name: "Boston Celtics"},
	{ID: 1610612751, Abbr: "BKN", Name: "Brooklyn Nets"},
	{ID: 1610612766, Abbr: "CHA", Name: "Charlotte Hornets"},
	{ID: 1610612741, Abbr: "CHI", Name: "Chicago Bulls"},
	{ID: 1610612739, Abbr: "CLE", Name: "Cleveland Cavaliers"},
	{ID: 1610612742, Abbr: "DAL", Name: "Dallas Mavericks"},
	{ID: 1610612743, Abbr: "DEN", Name: "Denver Nuggets"},
	{ID: 1610612765, Abbr: "DET", Name: "Detroit Pistons"},
	{ID: 1610612744, Abbr: "GSW", Name: "Golden State Warriors"},
	{ID: 1610612745, Abbr: "HOU", Name: "Houston Rockets"},
	{ID: 1610612754, Abbr: "IND", Name: "Indiana Pacers"},
	{ID: 1610612746, Abbr: "LAC", Name: "Los Angeles Clippers"},
	{ID: 1610612747, Abbr: "LAL", Name: "Los Angeles Lakers"},
	{ID: 1610612763, Abbr: "MEM", Name: "Memphis Grizzlies"},
	{ID: 1610612748, Abbr: "MIA", Name: "Miami Heat"},
	{ID: 1610612749, Abbr: "MIL", Name: "Milwaukee Bucks"},
	{ID: 1610612750, Abbr: "MIN", Name: "Minnesota Timberwolves"},
	{ID: 1610612740, Abbr: "NOP", Name: "New Orleans Pelicans"},
	{ID: 1610612752, Abbr: "NYK", Name: "New York Knicks"},
	{ID: 1610612760, Abbr: "OKC", Name: "Oklahoma City Thunder"},
	{ID: 1610612753, Abbr: "ORL", Name: "Orlando Magic"},
	{ID: 1610612755, Abbr: "PHI", Name: "Philadelphia 76ers"},
	{ID: 1610612756, Abbr: "PHX", Name: "Phoenix Suns"},
	{ID: 1610612757, Abbr: "POR", Name: "Portland Trail Blazers"},
	{ID: 1610612758, Abbr: "SAC", Name: "Sacramento Kings"},
	{ID: 1610612759, Abbr: "SAS", Name: "San Antonio Spurs"},
	{ID: 1610612761, Abbr: "TOR", Name: "Toronto Raptors"},
	{ID: 1610612762, Abbr: "UTA", Name: "Utah Jazz"},
	{ID: 1610612764, Abbr: "WAS", Name: "Washington Wizards"},
}

// Alternate spellings seen across providers.
var abbrAliases = map[string]string{
	"GS":   "GSW",
	"GOS":  "GSW",
	"NO":   "NOP",
	"NOR":  "NOP",
	"NOH":  "NOP",
	"NY":   "NYK",
	"SA":   "SAS",
	"PHO":  "PHX",
	"UTAH": "UTA",
	"UTH":  "UTA",
	"WSH":  "WAS",
	"BRK":  "BKN",
	"NJN":  "BKN",
	"CHO":  "CHA",
	"CHH":  "CHA",
	"SEA":  "OKC",
}

var (
	teamsByID   = map[int]Team{}
	teamsByAbbr = map[string]Team{}
	teamsByName = map[string]Team{}
)

func init() {
	for _, t := range leagueTeams {
		teamsByID[t.ID] = t
		teamsByAbbr[t.Abbr] = t
		teamsByName[strings.ToLower(t.Name)] = t
	}
}

// Teams returns the static league table in canonical order.
func Teams() []Team {
	out := make([]Team, len(leagueTeams))
	copy(out, leagueTeams)
	return out
}

// NormalizeAbbr maps alias spellings and full team names to the canonical
// abbreviation. Unknown input is returned upper-cased and trimmed.
func NormalizeAbbr(s string) string {
	key := strings.ToUpper(strings.TrimSpace(s))
	if key == "" {
		return ""
	}
	if _, ok := teamsByAbbr[key]; ok {
		return key
	}
	if canon, ok := abbrAliases[key]; ok {
		return canon
	}
	if t, ok := teamsByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t.Abbr
	}
	return key
}

// Aliases returns a copy of the alias -> canonical abbreviation table.
func Aliases() map[string]string {
	out := make(map[string]string, len(abbrAliases))
	for k, v := range abbrAliases {
		out[k] = v
	}
	return out
}

// TeamByID looks up a team by its stable identifier.
func TeamByID(id int) (Team, bool) {
	t, ok := teamsByID[id]
	return t, ok
}

// TeamByAbbr looks up a team by abbreviation after normalisation.
func TeamByAbbr(abbr string) (Team, bool) {
	t, ok := teamsByAbbr[NormalizeAbbr(abbr)]
	return t, ok
}

// AbbrForID returns the canonical abbreviation for a team id, or "".
func AbbrForID(id int) string {
	if t, ok := teamsByID[id]; ok {
		return t.Abbr
	}
	return ""
}

// SeasonLabel formats a season start year, e.g. 2025 -> "2025-26".
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// SeasonStartYear returns the start year of the season containing t, given
// the month the season starts in.
func SeasonStartYear(t time.Time, startMonth time.Month) int {
	if t.Month() >= startMonth {
		return t.Year()
	}
	return t.Year() - 1
}
