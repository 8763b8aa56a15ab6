// Package types contains common types used across the application
package types

import "github.com/okian/cricksim/internal/domain/model"

// Entry is one innings total on the results board.
type Entry struct {
	Rank    int    `json:"rank"`
	MatchID string `json:"match_id"`
	Innings int    `json:"innings"`
	Team    string `json:"team"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Overs   int    `json:"overs"`
	Tier    string `json:"tier"`
	Won     bool   `json:"won"`
}

// Entries splits a result into its two innings totals.
func Entries(r model.Result) [2]Entry {
	return [2]Entry{
		{
			MatchID: r.MatchID,
			Innings: 1,
			Team:    r.BattingFirst,
			Runs:    r.FirstRuns,
			Wickets: r.FirstWickets,
			Overs:   r.Overs,
			Tier:    r.Tier,
			Won:     r.Winner != "" && r.Winner == r.BattingFirst,
		},
		{
			MatchID: r.MatchID,
			Innings: 2,
			Team:    r.Chasing,
			Runs:    r.ChaseRuns,
			Wickets: r.ChaseWickets,
			Overs:   r.Overs,
			Tier:    r.Tier,
			Won:     r.Winner != "" && r.Winner == r.Chasing,
		},
	}
}

// Before reports whether a ranks ahead of b: more runs, then fewer wickets,
// then match id and innings for a stable order.
func Before(a, b Entry) bool {
	if a.Runs != b.Runs {
		return a.Runs > b.Runs
	}
	if a.Wickets != b.Wickets {
		return a.Wickets < b.Wickets
	}
	if a.MatchID != b.MatchID {
		return a.MatchID < b.MatchID
	}
	return a.Innings < b.Innings
}

// AssignRanks numbers entries already in board order. Equal runs and
// wickets share a rank; the next distinct total takes the next rank.
func AssignRanks(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Runs != entries[i-1].Runs || entries[i].Wickets != entries[i-1].Wickets {
			rank++
		}
		entries[i].Rank = rank
	}
}
