package data

import (
	"context"
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

// Filter is conjunctive: zero-valued fields are ignored.
type Filter struct {
	Status         types.Status
	Recommendation types.Recommendation
	PolicyID       string
}

// ClaimRepo is the persistence boundary injected into the submission
// service, the decision workflow and the stats reporter.
type ClaimRepo interface {
	// Create inserts a new claim. A duplicate jobId is rejected at insert
	// time by the unique index and surfaces as *types.ConflictError.
	Create(ctx context.Context, c *types.Claim) error
	// FindByJobID returns *types.NotFoundError when absent.
	FindByJobID(ctx context.Context, jobID string) (*types.Claim, error)
	// Save persists workflow mutations (status, notes, override).
	Save(ctx context.Context, c *types.Claim) error
	// Query returns the filtered window ordered by creation time, most
	// recent first, plus the total match count independent of the window.
	Query(ctx context.Context, f Filter, limit, skip int) ([]types.Claim, int64, error)

	CountByStatus(ctx context.Context) (map[types.Status]int64, error)
	CountByRecommendation(ctx context.Context) (map[types.Recommendation]int64, error)
	// AverageScores returns nil when no claims exist.
	AverageScores(ctx context.Context) (*types.AverageScores, error)
	Count(ctx context.Context) (int64, error)
}

type gormClaimRepo struct {
	db *gorm.DB
}

func NewClaimRepo(db *gorm.DB) ClaimRepo {
	return &gormClaimRepo{db: db}
}

const mysqlDupEntry = 1062

func (r *gormClaimRepo) Create(ctx context.Context, c *types.Claim) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		var myErr *mysqldrv.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDupEntry {
			return &types.ConflictError{JobID: c.JobID}
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &types.ConflictError{JobID: c.JobID}
		}
		return err
	}
	return nil
}

func (r *gormClaimRepo) FindByJobID(ctx context.Context, jobID string) (*types.Claim, error) {
	var c types.Claim
	if err := r.db.WithContext(ctx).First(&c, "job_id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &types.NotFoundError{JobID: jobID}
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormClaimRepo) Save(ctx context.Context, c *types.Claim) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func filterScope(f Filter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Recommendation != "" {
			q = q.Where("decision_recommendation = ?", f.Recommendation)
		}
		if f.PolicyID != "" {
			q = q.Where("claim_policy_id = ?", f.PolicyID)
		}
		return q
	}
}

func (r *gormClaimRepo) Query(ctx context.Context, f Filter, limit, skip int) ([]types.Claim, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&types.Claim{}).Scopes(filterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []types.Claim
	err := r.db.WithContext(ctx).Scopes(filterScope(f)).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(skip).
		Find(&claims).Error
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

func (r *gormClaimRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&types.Claim{}).Count(&total).Error
	return total, err
}

type countRow struct {
	Value string
	Count int64
}

func (r *gormClaimRepo) CountByStatus(ctx context.Context) (map[types.Status]int64, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&types.Claim{}).
		Select("status as value, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[types.Status]int64, len(rows))
	for _, row := range rows {
		out[types.Status(row.Value)] = row.Count
	}
	return out, nil
}

func (r *gormClaimRepo) CountByRecommendation(ctx context.Context) (map[types.Recommendation]int64, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).Model(&types.Claim{}).
		Select("decision_recommendation as value, count(*) as count").
		Group("decision_recommendation").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[types.Recommendation]int64, len(rows))
	for _, row := range rows {
		out[types.Recommendation(row.Value)] = row.Count
	}
	return out, nil
}

func (r *gormClaimRepo) AverageScores(ctx context.Context) (*types.AverageScores, error) {
	// AVG over zero rows is NULL, which is how "no claims yet" is told
	// apart from an average of zero.
	var row struct {
		Damage      *float64
		Fraud       *float64
		Consistency *float64
	}
	err := r.db.WithContext(ctx).Model(&types.Claim{}).
		Select("AVG(decision_score_damage) as damage, AVG(decision_score_fraud) as fraud, AVG(decision_score_consistency) as consistency").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Damage == nil {
		return nil, nil
	}
	avg := &types.AverageScores{Damage: *row.Damage}
	if row.Fraud != nil {
		avg.Fraud = *row.Fraud
	}
	if row.Consistency != nil {
		avg.Consistency = *row.Consistency
	}
	return avg, nil
}
