package types

import "time"

// Claim workflow states
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusReviewed  Status = "REVIEWED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusReviewed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Automated (or overridden) verdict
type Recommendation string

const (
	RecommendApprove      Recommendation = "APPROVE"
	RecommendManualReview Recommendation = "MANUAL_REVIEW"
	RecommendReject       Recommendation = "REJECT"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendApprove, RecommendManualReview, RecommendReject:
		return true
	}
	return false
}

// DerivedStatus maps an assessor's recommendation onto the workflow state
// that an override must leave the claim in.
func (r Recommendation) DerivedStatus() Status {
	switch r {
	case RecommendApprove:
		return StatusApproved
	case RecommendReject:
		return StatusRejected
	default:
		return StatusReviewed
	}
}

// Facts supplied by the submitter, immutable after creation
type ClaimInfo struct {
	Date        string `gorm:"size:64;not null" json:"date"`
	Description string `gorm:"type:text;not null" json:"description"`
	Location    string `gorm:"size:255" json:"location"`
	PolicyID    string `gorm:"size:64;index" json:"policyId"`
}

// Image provenance extracted by the analyzer, advisory only
type ImageMetadata struct {
	HasEXIF     bool    `json:"has_exif"`
	Timestamp   string  `json:"timestamp,omitempty"`
	CameraMake  string  `json:"camera_make,omitempty"`
	CameraModel string  `json:"camera_model,omitempty"`
	Software    string  `json:"software,omitempty"`
	FileSizeMB  float64 `json:"file_size_mb,omitempty"`
}

type DamageAssessment struct {
	Severity     string   `json:"severity"`
	DamagedParts []string `json:"damagedParts"`
	Description  string   `json:"description"`
	Score        float64  `json:"score"`
}

type FraudBreakdown struct {
	MetadataScore    float64 `json:"metadataScore"`
	DuplicateScore   float64 `json:"duplicateScore"`
	ConsistencyScore float64 `json:"consistencyScore"`
}

type FraudAnalysis struct {
	OverallScore    float64        `json:"overallScore"`
	RiskLevel       string         `json:"riskLevel"`
	IsDuplicate     bool           `json:"isDuplicate"`
	FraudIndicators []string       `json:"fraudIndicators"`
	Breakdown       FraudBreakdown `json:"breakdown"`
}

type ConsistencyAnalysis struct {
	Score        float64 `json:"score"`
	IsConsistent bool    `json:"isConsistent"`
	Explanation  string  `json:"explanation"`
}

type Analysis struct {
	DamageAssessment    DamageAssessment    `json:"damageAssessment"`
	FraudAnalysis       FraudAnalysis       `json:"fraudAnalysis"`
	ConsistencyAnalysis ConsistencyAnalysis `json:"consistencyAnalysis"`
}

type DecisionScores struct {
	Damage      float64 `json:"damage"`
	Fraud       float64 `json:"fraud"`
	Consistency float64 `json:"consistency"`
}

type Decision struct {
	Recommendation Recommendation `gorm:"size:16;index" json:"recommendation"`
	Confidence     string         `gorm:"size:32" json:"confidence"`
	Explanation    string         `gorm:"type:text" json:"explanation"`
	Scores         DecisionScores `gorm:"embedded;embeddedPrefix:score_" json:"scores"`
}

// Audit of the most recent assessor correction
type AssessorOverride struct {
	Applied                bool           `json:"applied"`
	OriginalRecommendation Recommendation `json:"originalRecommendation"`
	NewRecommendation      Recommendation `json:"newRecommendation"`
	Reason                 string         `json:"reason"`
	AssessorID             string         `json:"assessorId"`
	Timestamp              time.Time      `json:"timestamp"`
}

// Claim is the sole persisted entity. The jobId is assigned by the
// analyzer and is the primary correlation key; claims are retained
// forever for audit.
type Claim struct {
	ID                 uint64            `gorm:"primaryKey" json:"-"`
	JobID              string            `gorm:"size:64;uniqueIndex;not null" json:"jobId"`
	ClaimInfo          ClaimInfo         `gorm:"embedded;embeddedPrefix:claim_" json:"claimInfo"`
	Metadata           *ImageMetadata    `gorm:"serializer:json;type:json" json:"metadata,omitempty"`
	Analysis           Analysis          `gorm:"serializer:json;type:json" json:"analysis"`
	Decision           Decision          `gorm:"embedded;embeddedPrefix:decision_" json:"decision"`
	AnnotatedImagePath string            `gorm:"size:512" json:"annotatedImagePath"`
	Status             Status            `gorm:"size:16;index;default:PROCESSED" json:"status"`
	AssessorNotes      string            `gorm:"type:text" json:"assessorNotes,omitempty"`
	AssessorOverride   *AssessorOverride `gorm:"serializer:json;type:json" json:"assessorOverride,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

type AverageScores struct {
	Damage      float64 `json:"damage"`
	Fraud       float64 `json:"fraud"`
	Consistency float64 `json:"consistency"`
}

type StatsSummary struct {
	TotalClaims                int64                    `json:"totalClaims"`
	StatusDistribution         map[Status]int64         `json:"statusDistribution"`
	RecommendationDistribution map[Recommendation]int64 `json:"recommendationDistribution"`
	AverageScores              *AverageScores           `json:"averageScores,omitempty"`
}
