package data

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

// MemoryClaimRepo is a ClaimRepo backed by a map, used by tests and by
// local development without a MySQL instance. It mirrors the query
// semantics of the GORM repo.
type MemoryClaimRepo struct {
	mu     sync.RWMutex
	claims map[string]types.Claim
	nextID uint64
}

func NewMemoryClaimRepo() *MemoryClaimRepo {
	return &MemoryClaimRepo{claims: make(map[string]types.Claim)}
}

func (r *MemoryClaimRepo) Create(_ context.Context, c *types.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.claims[c.JobID]; ok {
		return &types.ConflictError{JobID: c.JobID}
	}
	r.nextID++
	c.ID = r.nextID
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	r.claims[c.JobID] = *c
	return nil
}

func (r *MemoryClaimRepo) FindByJobID(_ context.Context, jobID string) (*types.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.claims[jobID]
	if !ok {
		return nil, &types.NotFoundError{JobID: jobID}
	}
	return &c, nil
}

func (r *MemoryClaimRepo) Save(_ context.Context, c *types.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.claims[c.JobID]; !ok {
		return &types.NotFoundError{JobID: c.JobID}
	}
	c.UpdatedAt = time.Now()
	r.claims[c.JobID] = *c
	return nil
}

func (r *MemoryClaimRepo) matches(c types.Claim, f Filter) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Recommendation != "" && c.Decision.Recommendation != f.Recommendation {
		return false
	}
	if f.PolicyID != "" && c.ClaimInfo.PolicyID != f.PolicyID {
		return false
	}
	return true
}

func (r *MemoryClaimRepo) Query(_ context.Context, f Filter, limit, skip int) ([]types.Claim, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []types.Claim
	for _, c := range r.claims {
		if r.matches(c, f) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if skip >= len(matched) {
		return []types.Claim{}, total, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *MemoryClaimRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.claims)), nil
}

func (r *MemoryClaimRepo) CountByStatus(_ context.Context) (map[types.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.Status]int64)
	for _, c := range r.claims {
		out[c.Status]++
	}
	return out, nil
}

func (r *MemoryClaimRepo) CountByRecommendation(_ context.Context) (map[types.Recommendation]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.Recommendation]int64)
	for _, c := range r.claims {
		out[c.Decision.Recommendation]++
	}
	return out, nil
}

func (r *MemoryClaimRepo) AverageScores(_ context.Context) (*types.AverageScores, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.claims) == 0 {
		return nil, nil
	}
	var avg types.AverageScores
	for _, c := range r.claims {
		avg.Damage += c.Decision.Scores.Damage
		avg.Fraud += c.Decision.Scores.Fraud
		avg.Consistency += c.Decision.Scores.Consistency
	}
	n := float64(len(r.claims))
	avg.Damage /= n
	avg.Fraud /= n
	avg.Consistency /= n
	return &avg, nil
}
