// Package autoplay drives matches without a human: over HTTP against a
// running server, or in-process for tuning the rating table.
package autoplay

import "time"

// Config holds configuration for an autoplay run against a server.
type Config struct {
	BaseURL string        // Base URL of the service
	Matches int           // Number of matches to play
	Workers int           // Number of matches played concurrently
	Team    string        // Team the robot controls; empty alternates CSK and MI
	Overs   int           // Overs per innings; zero uses the server default
	Mode    string        // Difficulty tier
	Seed    uint64        // Seeds both the robot and the server matches
	TopN    int           // Number of results entries to fetch and check
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every ball
}

// DefaultConfig returns the settings used by the autoplay command.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9080",
		Matches: 10,
		Workers: 4,
		Mode:    "medium",
		Seed:    1,
		TopN:    10,
		Timeout: 10 * time.Second,
	}
}

// Stats holds run statistics.
type Stats struct {
	MatchesStarted   int
	MatchesCompleted int
	MatchesFailed    int
	Balls            int
	Duplicates       int
	Violations       int
	Repairs          int
	ResultEntries    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
