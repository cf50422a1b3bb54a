package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

func seed(t *testing.T, repo *MemoryClaimRepo, jobID, policyID string, status types.Status, rec types.Recommendation, created time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), &types.Claim{
		JobID:     jobID,
		ClaimInfo: types.ClaimInfo{Date: "2025-01-01", Description: "d", PolicyID: policyID},
		Decision:  types.Decision{Recommendation: rec},
		Status:    status,
		CreatedAt: created,
	})
	require.NoError(t, err)
}

func TestCreateRejectsDuplicateJobID(t *testing.T) {
	repo := NewMemoryClaimRepo()
	base := time.Now()
	seed(t, repo, "j1", "P1", types.StatusProcessed, types.RecommendApprove, base)

	err := repo.Create(context.Background(), &types.Claim{JobID: "j1"})
	var cfErr *types.ConflictError
	require.ErrorAs(t, err, &cfErr)
	assert.Equal(t, "j1", cfErr.JobID)

	total, _ := repo.Count(context.Background())
	assert.Equal(t, int64(1), total)
}

func TestFindByJobID(t *testing.T) {
	repo := NewMemoryClaimRepo()
	seed(t, repo, "j1", "P1", types.StatusProcessed, types.RecommendApprove, time.Now())

	c, err := repo.FindByJobID(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", c.JobID)

	_, err = repo.FindByJobID(context.Background(), "missing")
	var nfErr *types.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestSaveUnknownClaim(t *testing.T) {
	repo := NewMemoryClaimRepo()
	err := repo.Save(context.Background(), &types.Claim{JobID: "ghost"})
	var nfErr *types.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestQueryFiltersAreConjunctive(t *testing.T) {
	repo := NewMemoryClaimRepo()
	base := time.Now()
	seed(t, repo, "j1", "P1", types.StatusProcessed, types.RecommendApprove, base)
	seed(t, repo, "j2", "P1", types.StatusApproved, types.RecommendApprove, base.Add(time.Second))
	seed(t, repo, "j3", "P2", types.StatusProcessed, types.RecommendReject, base.Add(2*time.Second))

	list, total, err := repo.Query(context.Background(), Filter{Status: types.StatusProcessed}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, c := range list {
		assert.Equal(t, types.StatusProcessed, c.Status)
	}

	list, total, err = repo.Query(context.Background(), Filter{
		Status:         types.StatusProcessed,
		Recommendation: types.RecommendApprove,
		PolicyID:       "P1",
	}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "j1", list[0].JobID)
}

func TestQueryOrderAndWindow(t *testing.T) {
	repo := NewMemoryClaimRepo()
	base := time.Now()
	for i := 0; i < 5; i++ {
		seed(t, repo, fmt.Sprintf("j%d", i), "", types.StatusProcessed, types.RecommendApprove, base.Add(time.Duration(i)*time.Second))
	}

	// most recent first
	list, total, err := repo.Query(context.Background(), Filter{}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 5)
	assert.Equal(t, "j4", list[0].JobID)
	assert.Equal(t, "j0", list[4].JobID)

	// total is the full match count regardless of the window
	list, total, err = repo.Query(context.Background(), Filter{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 2)
	assert.Equal(t, "j3", list[0].JobID)
	assert.Equal(t, "j2", list[1].JobID)

	// window past the end
	list, total, err = repo.Query(context.Background(), Filter{}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, list)
}

func TestAggregates(t *testing.T) {
	repo := NewMemoryClaimRepo()

	avg, err := repo.AverageScores(context.Background())
	require.NoError(t, err)
	assert.Nil(t, avg)

	base := time.Now()
	for i, rec := range []types.Recommendation{types.RecommendApprove, types.RecommendReject, types.RecommendReject} {
		err := repo.Create(context.Background(), &types.Claim{
			JobID:     fmt.Sprintf("j%d", i),
			Decision:  types.Decision{Recommendation: rec, Scores: types.DecisionScores{Damage: float64(i), Fraud: 1, Consistency: 0.5}},
			Status:    types.StatusProcessed,
			CreatedAt: base,
		})
		require.NoError(t, err)
	}

	byStatus, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), byStatus[types.StatusProcessed])

	byRec, err := repo.CountByRecommendation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), byRec[types.RecommendApprove])
	assert.Equal(t, int64(2), byRec[types.RecommendReject])

	avg, err = repo.AverageScores(context.Background())
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 1.0, avg.Damage, 1e-9)
	assert.InDelta(t, 1.0, avg.Fraud, 1e-9)
	assert.InDelta(t, 0.5, avg.Consistency, 1e-9)
}
