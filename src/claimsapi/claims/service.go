// Package claims holds the triage core: the submission pipeline, the
// assessor decision workflow and the stats reporter. Persistence goes
// through data.ClaimRepo; nothing here talks to MySQL directly.
package claims

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/mlapi"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

// Analyzer is the outbound analysis collaborator.
type Analyzer interface {
	AnalyzeClaim(ctx context.Context, imagePath string, fields mlapi.ClaimFields) (*mlapi.AnalysisResult, error)
}

type Service struct {
	repo     data.ClaimRepo
	analyzer Analyzer
	rdb      *redis.Client
}

func NewService(repo data.ClaimRepo, analyzer Analyzer, rdb *redis.Client) *Service {
	return &Service{repo: repo, analyzer: analyzer, rdb: rdb}
}

// Submission is one inbound claim: the temp upload on local disk plus
// the form fields. The upload is removed before Submit returns, no
// matter which way it exits.
type Submission struct {
	ImagePath   string
	Date        string
	Description string
	Location    string
	PolicyID    string
}

func (s *Service) Submit(ctx context.Context, sub Submission) (*types.Claim, error) {
	if sub.ImagePath == "" {
		return nil, &types.ValidationError{Reason: "image file is required"}
	}

	// The upload is scoped to this submission. Exactly one removal,
	// on every exit path.
	defer func() {
		if err := os.Remove(sub.ImagePath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove upload %s: %v", sub.ImagePath, err)
		}
	}()

	if strings.TrimSpace(sub.Date) == "" || strings.TrimSpace(sub.Description) == "" {
		return nil, &types.ValidationError{Reason: "claim date and description are required"}
	}
	if sub.Location == "" {
		sub.Location = "Unknown"
	}

	result, err := s.analyzer.AnalyzeClaim(ctx, sub.ImagePath, mlapi.ClaimFields{
		Date:        sub.Date,
		Description: sub.Description,
		Location:    sub.Location,
		PolicyID:    sub.PolicyID,
	})
	if err != nil {
		log.Printf("analyzer call failed: %v", err)
		return nil, err
	}

	if !result.Success {
		return nil, &types.AnalysisError{Reason: "analyzer reported failure"}
	}
	if err := result.Validate(); err != nil {
		return nil, &types.AnalysisError{Reason: err.Error()}
	}

	claim := mapResult(sub, result)
	if err := s.repo.Create(ctx, claim); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		data.DropStatsCache(ctx, s.rdb)
	}

	log.Printf("claim %s stored (recommendation %s)", claim.JobID, claim.Decision.Recommendation)
	return claim, nil
}

// mapResult projects the analyzer's snake_case wire shape onto the
// internal claim model. Shape validation has already happened.
func mapResult(sub Submission, result *mlapi.AnalysisResult) *types.Claim {
	report := result.Report
	return &types.Claim{
		JobID: result.JobID,
		ClaimInfo: types.ClaimInfo{
			Date:        sub.Date,
			Description: sub.Description,
			Location:    sub.Location,
			PolicyID:    sub.PolicyID,
		},
		Metadata: report.DamageAssessment.Metadata,
		Analysis: types.Analysis{
			DamageAssessment: types.DamageAssessment{
				Severity:     report.DamageAssessment.Severity,
				DamagedParts: report.DamageAssessment.DamagedParts,
				Description:  report.DamageAssessment.Description,
				Score:        report.DamageAssessment.Score,
			},
			FraudAnalysis: types.FraudAnalysis{
				OverallScore:    report.FraudAnalysis.OverallScore,
				RiskLevel:       report.FraudAnalysis.RiskLevel,
				IsDuplicate:     report.FraudAnalysis.IsDuplicate,
				FraudIndicators: report.FraudAnalysis.FraudIndicators,
				Breakdown: types.FraudBreakdown{
					MetadataScore:    report.FraudAnalysis.Breakdown.MetadataScore,
					DuplicateScore:   report.FraudAnalysis.Breakdown.DuplicateScore,
					ConsistencyScore: report.FraudAnalysis.Breakdown.ConsistencyScore,
				},
			},
			ConsistencyAnalysis: types.ConsistencyAnalysis{
				Score:        report.ConsistencyAnalysis.Score,
				IsConsistent: report.ConsistencyAnalysis.IsConsistent,
				Explanation:  report.ConsistencyAnalysis.Explanation,
			},
		},
		Decision: types.Decision{
			Recommendation: types.Recommendation(report.Decision.Recommendation),
			Confidence:     report.Decision.Confidence,
			Explanation:    report.Decision.Explanation,
			Scores: types.DecisionScores{
				Damage:      report.Decision.Scores.Damage,
				Fraud:       report.Decision.Scores.Fraud,
				Consistency: report.Decision.Scores.Consistency,
			},
		},
		AnnotatedImagePath: result.AnnotatedImageURL,
		Status:             types.StatusProcessed,
	}
}
