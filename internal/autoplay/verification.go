package autoplay

import (
	"fmt"

	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/types"
)

// verifyMatch checks a completed snapshot for a consistent result.
func verifyMatch(v match.View) error {
	r := v.Result
	switch {
	case v.Phase != match.Complete:
		return fmt.Errorf("%w: match %s in phase %s", ErrVerify, v.ID, v.Phase)
	case r == nil:
		return fmt.Errorf("%w: match %s has no result", ErrVerify, v.ID)
	case r.Summary == "":
		return fmt.Errorf("%w: match %s has an empty summary", ErrVerify, v.ID)
	case r.Tie && r.Winner != "":
		return fmt.Errorf("%w: match %s tied with winner %s", ErrVerify, v.ID, r.Winner)
	case !r.Tie && r.Winner != v.Human && r.Winner != v.Opponent:
		return fmt.Errorf("%w: match %s won by unknown team %q", ErrVerify, v.ID, r.Winner)
	}
	return nil
}

// verifyBoard checks that results are ordered and densely ranked.
func verifyBoard(entries []types.Entry, limit int) error {
	if len(entries) > limit {
		return fmt.Errorf("%w: %d entries for limit %d", ErrVerify, len(entries), limit)
	}
	for i, e := range entries {
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("%w: first entry has rank %d", ErrVerify, e.Rank)
			}
			continue
		}
		prev := entries[i-1]
		if types.Before(e, prev) {
			return fmt.Errorf("%w: entry %d ranks above entry %d", ErrVerify, i, i-1)
		}
		tied := e.Runs == prev.Runs && e.Wickets == prev.Wickets
		switch {
		case tied && e.Rank != prev.Rank:
			return fmt.Errorf("%w: tied entries %d and %d ranked %d and %d", ErrVerify, i-1, i, prev.Rank, e.Rank)
		case !tied && e.Rank != prev.Rank+1:
			return fmt.Errorf("%w: entry %d ranked %d after %d", ErrVerify, i, e.Rank, prev.Rank)
		}
	}
	return nil
}
