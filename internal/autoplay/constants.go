package autoplay

import "time"

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	resultsWait      = 5 * time.Second
	resultsPoll      = 50 * time.Millisecond
	maxBallsPerMatch = 2 * 50 * 6
	bestShotPercent  = 70
)
