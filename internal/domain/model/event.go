package model

import "time"

// BallEvent is emitted once per resolved ball for the live feed and sinks.
type BallEvent struct {
	MatchID        string    `json:"match_id"`
	OfferID        string    `json:"offer_id,omitempty"`
	Innings        int       `json:"innings"`
	Ball           int       `json:"ball"`
	Overs          string    `json:"overs"`
	Batsman        string    `json:"batsman"`
	Bowler         string    `json:"bowler"`
	Delivery       Delivery  `json:"delivery"`
	Shot           string    `json:"shot"`
	EffectiveScore int       `json:"effective_score"`
	Outcome        Outcome   `json:"outcome"`
	Runs           int       `json:"runs"`
	Wickets        int       `json:"wickets"`
	Target         int       `json:"target,omitempty"`
	Commentary     string    `json:"commentary"`
	Complete       bool      `json:"complete"`
	Result         *Result   `json:"result,omitempty"`
	TS             time.Time `json:"ts"`
}

// Result summarises a completed match.
type Result struct {
	MatchID      string    `json:"match_id"`
	BattingFirst string    `json:"batting_first"`
	Chasing      string    `json:"chasing"`
	FirstRuns    int       `json:"first_runs"`
	FirstWickets int       `json:"first_wickets"`
	ChaseRuns    int       `json:"chase_runs"`
	ChaseWickets int       `json:"chase_wickets"`
	Overs        int       `json:"overs"`
	Tier         string    `json:"tier"`
	Winner       string    `json:"winner,omitempty"`
	Tie          bool      `json:"tie"`
	Margin       int       `json:"margin"`
	MarginUnit   string    `json:"margin_unit,omitempty"`
	Summary      string    `json:"summary"`
	CompletedAt  time.Time `json:"completed_at"`
}
