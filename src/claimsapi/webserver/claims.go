package webserver

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/claims"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/config"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/types"
)

type Claims struct {
	svc       *claims.Service
	workflow  *claims.Workflow
	reporter  *claims.Reporter
	repo      data.ClaimRepo
	rdb       *redis.Client
	sanitizer *bluemonday.Policy
	uploadDir string
}

func NewClaims(cfg config.Config, repo data.ClaimRepo, analyzer claims.Analyzer, rdb *redis.Client) Claims {
	return Claims{
		svc:       claims.NewService(repo, analyzer, rdb),
		workflow:  claims.NewWorkflow(repo, rdb),
		reporter:  claims.NewReporter(repo, rdb),
		repo:      repo,
		rdb:       rdb,
		sanitizer: bluemonday.StrictPolicy(),
		uploadDir: cfg.UploadDir,
	}
}

// clean strips markup from operator-supplied free text before it is
// stored or echoed back.
func (h Claims) clean(s string) string {
	s = h.sanitizer.Sanitize(s)
	if !utf8.ValidString(s) {
		return ""
	}
	return s
}

func (h Claims) renderError(c *gin.Context, err error) {
	var vErr *types.ValidationError
	var nfErr *types.NotFoundError
	var cfErr *types.ConflictError
	var suErr *types.ServiceUnavailableError
	var anErr *types.AnalysisError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Reason})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, gin.H{"error": "Claim not found"})
	case errors.As(err, &cfErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &suErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Analysis backend is not available. Please ensure the ML service is running.",
			"details": suErr.Detail(),
		})
	case errors.As(err, &anErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed", "details": err.Error()})
	default:
		log.Printf("unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h Claims) Analyze(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.renderError(c, err)
		return
	}
	path := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		// a failed write can still leave a partial file behind
		_ = os.Remove(path)
		h.renderError(c, err)
		return
	}

	claim, err := h.svc.Submit(c.Request.Context(), claims.Submission{
		ImagePath:   path,
		Date:        h.clean(c.PostForm("claim_date")),
		Description: h.clean(c.PostForm("claim_description")),
		Location:    h.clean(c.PostForm("claim_location")),
		PolicyID:    h.clean(c.PostForm("policy_id")),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "claim": claim})
}

func (h Claims) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	filter := data.Filter{
		Status:         types.Status(c.Query("status")),
		Recommendation: types.Recommendation(c.Query("recommendation")),
		PolicyID:       c.Query("policy_id"),
	}

	list, total, err := h.repo.Query(c.Request.Context(), filter, limit, skip)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "total": total, "claims": list})
}

func (h Claims) Get(c *gin.Context) {
	claim, err := h.repo.FindByJobID(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "claim": claim})
}

func (h Claims) UpdateStatus(c *gin.Context) {
	var req struct {
		Status        string `json:"status"`
		AssessorNotes string `json:"assessorNotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.workflow.UpdateStatus(c.Request.Context(), c.Param("jobId"),
		types.Status(req.Status), h.clean(req.AssessorNotes))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "claim": claim})
}

func (h Claims) Override(c *gin.Context) {
	var req struct {
		NewRecommendation string `json:"newRecommendation"`
		Reason            string `json:"reason"`
		AssessorID        string `json:"assessorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A verified token names the assessor; the body field is a fallback
	// for deployments without the auth collaborator.
	assessorID := c.GetString("assessor")
	if assessorID == "" {
		assessorID = req.AssessorID
	}

	claim, err := h.workflow.Override(c.Request.Context(), c.Param("jobId"),
		types.Recommendation(req.NewRecommendation), h.clean(req.Reason), assessorID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "claim": claim})
}

func (h Claims) Stats(c *gin.Context) {
	summary, err := h.reporter.Summary(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": summary})
}

func (h Claims) Health(c *gin.Context) {
	dbState := "connected"
	if _, err := h.repo.Count(c.Request.Context()); err != nil {
		dbState = "disconnected"
	}

	res := gin.H{
		"status":    "healthy",
		"database":  dbState,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.rdb != nil {
		redisState := "connected"
		if err := h.rdb.Ping(c.Request.Context()).Err(); err != nil {
			redisState = "disconnected"
		}
		res["redis"] = redisState
	}
	c.JSON(http.StatusOK, res)
}

func (h Claims) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ClaimSight claims triage API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"claims": "/api/claims",
			"stats":  "/api/claims/stats/summary",
			"health": "/health",
		},
	})
}
