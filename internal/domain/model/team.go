// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"strings"
)

// Player is an immutable roster entry. Bowl is 0 for players who do not bowl.
type Player struct {
	Name string `json:"name"`
	Bat  int    `json:"bat"`
	Bowl int    `json:"bowl"`
}

// Team is a fixed roster; Players is the batting order.
type Team struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

// Batsman returns the player at the given batting position, clamped to the
// last player so a completed innings still has someone to report.
func (t Team) Batsman(wickets int) Player {
	if wickets < 0 {
		wickets = 0
	}
	if wickets >= len(t.Players) {
		wickets = len(t.Players) - 1
	}
	return t.Players[wickets]
}

// Bowlers returns the players with a bowling skill, strongest first.
// Equal skills keep batting order.
func (t Team) Bowlers() []Player {
	out := make([]Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.Bowl > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bowl > out[j].Bowl })
	return out
}

// BowlerFor returns the bowler of the over containing ball index balls.
func (t Team) BowlerFor(balls int) Player {
	bowlers := t.Bowlers()
	if len(bowlers) == 0 {
		return Player{}
	}
	return bowlers[(balls/BallsPerOver)%len(bowlers)]
}

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

// MaxWickets ends an innings.
const MaxWickets = 10

var teams = []Team{
	{
		Code: "CSK",
		Name: "Chennai Super Kings",
		Players: []Player{
			{Name: "Ruturaj Gaikwad", Bat: 90},
			{Name: "Devon Conway", Bat: 88},
			{Name: "Ajinkya Rahane", Bat: 86},
			{Name: "Shivam Dube", Bat: 77, Bowl: 70},
			{Name: "Ravindra Jadeja", Bat: 75, Bowl: 85},
			{Name: "MS Dhoni", Bat: 80},
			{Name: "Moeen Ali", Bat: 70, Bowl: 78},
			{Name: "Deepak Chahar", Bat: 65, Bowl: 92},
			{Name: "Maheesh Theekshana", Bat: 60, Bowl: 90},
			{Name: "Tushar Deshpande", Bat: 60, Bowl: 88},
			{Name: "Matheesha Pathirana", Bat: 60, Bowl: 90},
		},
	},
	{
		Code: "MI",
		Name: "Mumbai Indians",
		Players: []Player{
			{Name: "Rohit Sharma", Bat: 80},
			{Name: "Ishan Kishan", Bat: 71},
			{Name: "Suryakumar Yadav", Bat: 80},
			{Name: "Tilak Varma", Bat: 81},
			{Name: "Hardik Pandya", Bat: 75, Bowl: 75},
			{Name: "Tim David", Bat: 70, Bowl: 65},
			{Name: "Jasprit Bumrah", Bat: 60, Bowl: 99},
			{Name: "Gerald Coetzee", Bat: 60, Bowl: 85},
			{Name: "Piyush Chawla", Bat: 50, Bowl: 80},
			{Name: "Akash Madhwal", Bat: 60, Bowl: 81},
			{Name: "Naman Dhir", Bat: 75},
		},
	},
}

// Teams returns the two-team registry.
func Teams() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

// TeamByCode looks a team up case-insensitively.
func TeamByCode(code string) (Team, bool) {
	for _, t := range teams {
		if strings.EqualFold(t.Code, strings.TrimSpace(code)) {
			return t, true
		}
	}
	return Team{}, false
}

// Opponent returns the other team of the registry.
func Opponent(code string) Team {
	for _, t := range teams {
		if !strings.EqualFold(t.Code, code) {
			return t
		}
	}
	return teams[0]
}
