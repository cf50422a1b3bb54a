// Package mlapi is the client for the external image-analysis service.
// The wire contract uses snake_case field names; mapping into the
// internal claim model happens in the claims package.
package mlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

// DefaultTimeout bounds the blocking analyzer call. Image analysis is
// slow; the upstream service can take minutes on cold models.
const DefaultTimeout = 180 * time.Second

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ClaimFields are the form fields forwarded alongside the image.
type ClaimFields struct {
	Date        string
	Description string
	Location    string
	PolicyID    string
}

type Breakdown struct {
	MetadataScore    float64 `json:"metadata_score"`
	DuplicateScore   float64 `json:"duplicate_score"`
	ConsistencyScore float64 `json:"consistency_score"`
}

type DamageAssessment struct {
	Severity     string               `json:"severity"`
	DamagedParts []string             `json:"damaged_parts"`
	Description  string               `json:"description"`
	Score        float64              `json:"score"`
	Metadata     *types.ImageMetadata `json:"metadata,omitempty"`
}

type FraudAnalysis struct {
	OverallScore    float64   `json:"overall_score"`
	RiskLevel       string    `json:"risk_level"`
	IsDuplicate     bool      `json:"is_duplicate"`
	FraudIndicators []string  `json:"fraud_indicators"`
	Breakdown       Breakdown `json:"breakdown"`
}

type ConsistencyAnalysis struct {
	Score        float64 `json:"score"`
	IsConsistent bool    `json:"is_consistent"`
	Explanation  string  `json:"explanation"`
}

type Scores struct {
	Damage      float64 `json:"damage"`
	Fraud       float64 `json:"fraud"`
	Consistency float64 `json:"consistency"`
}

type Decision struct {
	Recommendation string `json:"recommendation"`
	Confidence     string `json:"confidence"`
	Explanation    string `json:"explanation"`
	Scores         Scores `json:"scores"`
}

type Report struct {
	DamageAssessment    *DamageAssessment    `json:"damage_assessment"`
	FraudAnalysis       *FraudAnalysis       `json:"fraud_analysis"`
	ConsistencyAnalysis *ConsistencyAnalysis `json:"consistency_analysis"`
	Decision            *Decision            `json:"decision"`
}

type AnalysisResult struct {
	Success           bool    `json:"success"`
	JobID             string  `json:"job_id"`
	AnnotatedImageURL string  `json:"annotated_image_url"`
	Report            *Report `json:"report"`
}

// Validate checks the structural contract of a successful response,
// including that the verdict is one of the closed enum values. Nested
// blocks are pointers so that an omitted block can be told apart from a
// zero-valued one.
func (r *AnalysisResult) Validate() error {
	if r.JobID == "" {
		return fmt.Errorf("missing job_id")
	}
	if r.Report == nil {
		return fmt.Errorf("missing report")
	}
	if r.Report.DamageAssessment == nil {
		return fmt.Errorf("missing report.damage_assessment")
	}
	if r.Report.FraudAnalysis == nil {
		return fmt.Errorf("missing report.fraud_analysis")
	}
	if r.Report.ConsistencyAnalysis == nil {
		return fmt.Errorf("missing report.consistency_analysis")
	}
	if r.Report.Decision == nil {
		return fmt.Errorf("missing report.decision")
	}
	if !types.Recommendation(r.Report.Decision.Recommendation).Valid() {
		return fmt.Errorf("invalid recommendation %q", r.Report.Decision.Recommendation)
	}
	return nil
}

// AnalyzeClaim posts the image and claim fields to the analyzer and
// returns its parsed response. Transport failures come back as
// *types.ServiceUnavailableError; an unparsable body as
// *types.AnalysisError.
func (c *Client) AnalyzeClaim(ctx context.Context, imagePath string, fields ClaimFields) (*AnalysisResult, error) {
	img, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer img.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, img); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	_ = mw.WriteField("claim_date", fields.Date)
	_ = mw.WriteField("claim_description", fields.Description)
	_ = mw.WriteField("claim_location", fields.Location)
	_ = mw.WriteField("policy_id", fields.PolicyID)
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze-claim", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &types.ServiceUnavailableError{
			Refused: isConnRefused(err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.ServiceUnavailableError{
			Err: fmt.Errorf("analyzer returned status %d", resp.StatusCode),
		}
	}

	var result AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &types.AnalysisError{Reason: "unparsable analyzer response", Err: err}
	}
	return &result, nil
}

func isConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
