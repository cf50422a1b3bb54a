package claims

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

// Workflow applies assessor actions to stored claims. Transitions are
// explicit operator actions only; the workflow never moves a claim on
// its own.
type Workflow struct {
	repo data.ClaimRepo
	rdb  *redis.Client
}

func NewWorkflow(repo data.ClaimRepo, rdb *redis.Client) *Workflow {
	return &Workflow{repo: repo, rdb: rdb}
}

// UpdateStatus moves a claim to any of the five workflow states. Invalid
// input is rejected before the claim is loaded, so nothing mutates.
func (w *Workflow) UpdateStatus(ctx context.Context, jobID string, status types.Status, notes string) (*types.Claim, error) {
	if !status.Valid() {
		return nil, &types.ValidationError{Reason: "invalid status: " + string(status)}
	}

	claim, err := w.repo.FindByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	claim.Status = status
	if notes != "" {
		claim.AssessorNotes = notes
	}

	if err := w.repo.Save(ctx, claim); err != nil {
		return nil, err
	}
	if w.rdb != nil {
		data.DropStatsCache(ctx, w.rdb)
	}

	log.Printf("claim %s status set to %s", jobID, status)
	return claim, nil
}

// Override replaces the automated recommendation with the assessor's,
// records the audit trail and derives the matching workflow state.
func (w *Workflow) Override(ctx context.Context, jobID string, rec types.Recommendation, reason, assessorID string) (*types.Claim, error) {
	if !rec.Valid() {
		return nil, &types.ValidationError{Reason: "invalid recommendation: " + string(rec)}
	}

	claim, err := w.repo.FindByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	applyOverride(claim, rec, reason, assessorID, time.Now())

	if err := w.repo.Save(ctx, claim); err != nil {
		return nil, err
	}
	if w.rdb != nil {
		data.DropStatsCache(ctx, w.rdb)
	}

	log.Printf("claim %s overridden to %s by %s", jobID, rec, assessorID)
	return claim, nil
}

// applyOverride is the pure transition. A later override replaces the
// previous audit record; only the most recent one is kept.
func applyOverride(c *types.Claim, rec types.Recommendation, reason, assessorID string, now time.Time) {
	c.AssessorOverride = &types.AssessorOverride{
		Applied:                true,
		OriginalRecommendation: c.Decision.Recommendation,
		NewRecommendation:      rec,
		Reason:                 reason,
		AssessorID:             assessorID,
		Timestamp:              now,
	}
	c.Decision.Recommendation = rec
	c.Status = rec.DerivedStatus()
}
