package claims

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

// Reporter computes the dashboard summary across all stored claims.
// When a Redis client is configured the rendered summary is cached for
// a short TTL; without one every call hits the store.
type Reporter struct {
	repo data.ClaimRepo
	rdb  *redis.Client
}

func NewReporter(repo data.ClaimRepo, rdb *redis.Client) *Reporter {
	return &Reporter{repo: repo, rdb: rdb}
}

func (r *Reporter) Summary(ctx context.Context) (*types.StatsSummary, error) {
	if r.rdb != nil {
		if raw, err := data.CachedStats(ctx, r.rdb); err == nil {
			var cached types.StatsSummary
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	total, err := r.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := r.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRec, err := r.repo.CountByRecommendation(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := r.repo.AverageScores(ctx)
	if err != nil {
		return nil, err
	}

	summary := &types.StatsSummary{
		TotalClaims:                total,
		StatusDistribution:         byStatus,
		RecommendationDistribution: byRec,
		AverageScores:              avg,
	}

	if r.rdb != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = data.CacheStats(ctx, r.rdb, raw)
		}
	}
	return summary, nil
}
