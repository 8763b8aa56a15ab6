package autoplay

import (
	"context"
	"fmt"

	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/pkg/logger"
)

// reference is the static data a robot needs to play.
type reference struct {
	ratings    map[string]ratings.Options
	conditions map[string][]string
}

// matchReport is what one played match contributed to the run.
type matchReport struct {
	view       match.View
	balls      int
	duplicates int
	violations int
	repairs    int
}

// playMatch plays one match from creation to result. The first ball's commit
// is sent twice to check that the server ignores the replay.
func playMatch(ctx context.Context, c *Client, robot *Robot, ref reference, req service.CreateRequest, verbose bool) (matchReport, error) {
	var rep matchReport
	v, err := c.Create(ctx, req)
	if err != nil {
		return rep, fmt.Errorf("create: %w", err)
	}
	ctx = logger.WithMatchID(ctx, v.ID)

	tr, err := c.Toss(ctx, v.ID, service.TossRequest{Call: robot.Call(), Conditions: robot.Conditions(ref.conditions)})
	if err != nil {
		return rep, fmt.Errorf("toss: %w", err)
	}
	if v, err = c.Decide(ctx, v.ID, robot.Decision(tr.Toss.Recommendation.Decision)); err != nil {
		return rep, fmt.Errorf("decide: %w", err)
	}

	for i := 0; i < maxBallsPerMatch; i++ {
		switch v.Phase {
		case match.Complete:
			rep.view = v
			return rep, nil
		case match.InningsBreak:
			if v, err = c.StartSecondInnings(ctx, v.ID); err != nil {
				return rep, fmt.Errorf("second innings: %w", err)
			}
		}

		var d model.Delivery
		if v.HumanRole == match.Bowling {
			d = robot.Delivery(ref.ratings)
		}
		o, err := c.Offer(ctx, v.ID, d)
		if err != nil {
			return rep, fmt.Errorf("offer: %w", err)
		}
		rep.repairs += len(o.Offer.Repaired)

		commit := match.Commit{OfferID: o.Offer.ID}
		if o.Offer.Role == match.Bowling {
			commit.Delivery = o.Offer.Delivery
		} else {
			commit.Shot = robot.Shot(o.Offer.Alternatives)
		}
		res, err := c.Resolve(ctx, v.ID, commit)
		if err != nil {
			return rep, fmt.Errorf("resolve: %w", err)
		}
		if res.Ball == nil {
			return rep, fmt.Errorf("%w: fresh commit %s reported as duplicate", ErrVerify, commit.OfferID)
		}
		rep.balls++
		if res.Ball.ProtocolViolation {
			rep.violations++
		}
		if verbose {
			logger.Get().Debug(ctx, "ball",
				logger.String("overs", res.Match.OversPlayed),
				logger.String("outcome", res.Ball.Outcome.String()),
				logger.String("commentary", res.Ball.Commentary))
		}

		if rep.balls == 1 {
			again, err := c.Resolve(ctx, v.ID, commit)
			if err != nil {
				return rep, fmt.Errorf("replay: %w", err)
			}
			if !again.Match.Duplicate || again.Ball != nil || again.Match.Balls != res.Match.Balls {
				return rep, fmt.Errorf("%w: replayed commit %s was played again", ErrVerify, commit.OfferID)
			}
			rep.duplicates++
		}
		v = res.Match
	}
	if v.Phase == match.Complete {
		rep.view = v
		return rep, nil
	}
	return rep, fmt.Errorf("%w: %s after %d balls", ErrIncomplete, v.Phase, rep.balls)
}
