package claims

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

func seedClaim(t *testing.T, repo data.ClaimRepo, jobID string, rec types.Recommendation) *types.Claim {
	t.Helper()
	c := &types.Claim{
		JobID: jobID,
		ClaimInfo: types.ClaimInfo{
			Date:        "2025-01-01",
			Description: "rear bumper dented",
		},
		Decision: types.Decision{
			Recommendation: rec,
			Scores:         types.DecisionScores{Damage: 0.5, Fraud: 0.3, Consistency: 0.8},
		},
		Status: types.StatusProcessed,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestUpdateStatus(t *testing.T) {
	repo := data.NewMemoryClaimRepo()
	w := NewWorkflow(repo, nil)
	seedClaim(t, repo, "abc123", types.RecommendManualReview)

	claim, err := w.UpdateStatus(context.Background(), "abc123", types.StatusReviewed, "checked photos")
	require.NoError(t, err)
	assert.Equal(t, types.StatusReviewed, claim.Status)
	assert.Equal(t, "checked photos", claim.AssessorNotes)

	stored, err := repo.FindByJobID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, types.StatusReviewed, stored.Status)
}

func TestUpdateStatusKeepsNotesWhenOmitted(t *testing.T) {
	repo := data.NewMemoryClaimRepo()
	w := NewWorkflow(repo, nil)
	seedClaim(t, repo, "abc123", types.RecommendManualReview)

	_, err := w.UpdateStatus(context.Background(), "abc123", types.StatusReviewed, "first pass")
	require.NoError(t, err)

	claim, err := w.UpdateStatus(context.Background(), "abc123", types.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "first pass", claim.AssessorNotes)
}

func TestUpdateStatusInvalid(t *testing.T) {
	repo := data.NewMemoryClaimRepo()
	w := NewWorkflow(repo, nil)
	seedClaim(t, repo, "abc123", types.RecommendManualReview)

	_, err := w.UpdateStatus(context.Background(), "abc123", types.Status("SHREDDED"), "")
	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)

	// no mutation on invalid input
	stored, err := repo.FindByJobID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, types.StatusProcessed, stored.Status)
	assert.Empty(t, stored.AssessorNotes)
}

func TestUpdateStatusUnknownClaim(t *testing.T) {
	w := NewWorkflow(data.NewMemoryClaimRepo(), nil)

	_, err := w.UpdateStatus(context.Background(), "nope", types.StatusApproved, "")
	var nfErr *types.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestOverrideDerivesStatus(t *testing.T) {
	cases := []struct {
		rec  types.Recommendation
		want types.Status
	}{
		{types.RecommendApprove, types.StatusApproved},
		{types.RecommendReject, types.StatusRejected},
		{types.RecommendManualReview, types.StatusReviewed},
	}

	// the derivation holds for any prior state
	for _, prior := range []types.Status{types.StatusPending, types.StatusProcessed, types.StatusReviewed, types.StatusApproved, types.StatusRejected} {
		for _, tc := range cases {
			repo := data.NewMemoryClaimRepo()
			w := NewWorkflow(repo, nil)
			seeded := seedClaim(t, repo, "abc123", types.RecommendManualReview)
			seeded.Status = prior
			require.NoError(t, repo.Save(context.Background(), seeded))

			claim, err := w.Override(context.Background(), "abc123", tc.rec, "second look", "A1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, claim.Status)
			assert.Equal(t, tc.rec, claim.Decision.Recommendation)
		}
	}
}

func TestOverrideAudit(t *testing.T) {
	repo := data.NewMemoryClaimRepo()
	w := NewWorkflow(repo, nil)
	seedClaim(t, repo, "abc123", types.RecommendManualReview)

	claim, err := w.Override(context.Background(), "abc123", types.RecommendReject, "evidence of fraud", "A1")
	require.NoError(t, err)

	ov := claim.AssessorOverride
	require.NotNil(t, ov)
	assert.True(t, ov.Applied)
	assert.Equal(t, types.RecommendManualReview, ov.OriginalRecommendation)
	assert.Equal(t, types.RecommendReject, ov.NewRecommendation)
	assert.Equal(t, "evidence of fraud", ov.Reason)
	assert.Equal(t, "A1", ov.AssessorID)
	assert.WithinDuration(t, time.Now(), ov.Timestamp, time.Minute)
	assert.Equal(t, types.StatusRejected, claim.Status)
}

func TestSecondOverrideReplacesAudit(t *testing.T) {
	repo := data.NewMemoryClaimRepo()
	w := NewWorkflow(repo, nil)
	seedClaim(t, repo, "abc123", types.RecommendManualReview)

	_, err := w.Override(context.Background(), "abc123", types.RecommendReject, "looks staged", "A1")
	require.NoError(t, err)

	claim, err := w.Override(context.Background(), "abc123", types.RecommendApprove, "re-checked, genuine", "A2")
	require.NoError(t, err)

	ov := claim.AssessorOverride
	require.NotNil(t, ov)
	// only the latest override is retained
	assert.Equal(t, types.RecommendReject, ov.OriginalRecommendation)
	assert.Equal(t, types.RecommendApprove, ov.NewRecommendation)
	assert.Equal(t, "A2", ov.AssessorID)
	assert.Equal(t, types.StatusApproved, claim.Status)
}

func TestOverrideInvalidRecommendation(t *testing.T) {
	repo := data.NewMemoryClaimRepo()
	w := NewWorkflow(repo, nil)
	seedClaim(t, repo, "abc123", types.RecommendManualReview)

	_, err := w.Override(context.Background(), "abc123", types.Recommendation("ESCALATE"), "r", "A1")
	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)

	stored, err := repo.FindByJobID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Nil(t, stored.AssessorOverride)
	assert.Equal(t, types.RecommendManualReview, stored.Decision.Recommendation)
	assert.Equal(t, types.StatusProcessed, stored.Status)
}
