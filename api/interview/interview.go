// Package interview exposes the analysis orchestration over HTTP.
package interview

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/interviewlens/genuinity/internal/analysis"
	"github.com/interviewlens/genuinity/internal/config"
	"github.com/interviewlens/genuinity/internal/reportcache"
	"github.com/interviewlens/genuinity/internal/scorer"
	"github.com/interviewlens/genuinity/internal/videos"
	log "github.com/sirupsen/logrus"
)

// Service is the orchestration collaborator behind the handlers
type Service interface {
	Run(ctx context.Context, interviewID string, n int, seed *int64) (*analysis.RunResult, error)
	Candidates(interviewID string) ([]videos.VideoReference, error)
}

// Analyzer is wired in main and substituted in unit tests
var Analyzer Service

type analyzeRequest struct {
	InterviewID string `json:"interview_id" binding:"required"`
	NumVideos   *int   `json:"num_videos"`
	Seed        *int64 `json:"seed"`
}

type analyzeResponse struct {
	InterviewID           string               `json:"interview_id"`
	VideosAnalyzed        int                  `json:"videos_analyzed"`
	Attempted             int                  `json:"attempted"`
	AverageGenuinityScore *float64             `json:"average_genuinity_score"`
	IndividualScores      []scorer.ScoreRecord `json:"individual_scores"`
	Status                string               `json:"status"`
	Message               string               `json:"message"`
	PDFReportPath         *string              `json:"pdf_report_path"`
	ReportError           string               `json:"report_error,omitempty"`
}

type candidatesResponse struct {
	InterviewID string   `json:"interview_id"`
	VideosFound int      `json:"videos_found"`
	VideoNames  []string `json:"video_names"`
}

// Analyze runs one genuinity analysis for the requested interview
func Analyze(c *gin.Context) {
	var request analyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interview_id is required"})

		return
	}

	n := config.Config.Sample.Size
	if request.NumVideos != nil {
		n = *request.NumVideos
	}
	log.Infof("received analysis request, interview_id=%s, num_videos=%d", request.InterviewID, n)

	result, err := Analyzer.Run(c.Request.Context(), request.InterviewID, n, request.Seed)
	if err != nil {
		abortWithKind(c, request.InterviewID, err)

		return
	}

	response := analyzeResponse{
		InterviewID:           result.Aggregate.InterviewID,
		VideosAnalyzed:        result.Aggregate.VideosAnalyzed,
		Attempted:             result.Aggregate.Attempted,
		AverageGenuinityScore: result.Aggregate.AverageScore,
		IndividualScores:      result.Aggregate.Records,
		Status:                string(result.Aggregate.Status),
		Message:               result.Aggregate.Message,
	}
	if result.ReportPath != "" {
		response.PDFReportPath = &result.ReportPath
	}
	if result.RenderErr != nil {
		// The analysis outcome is still reported, only the artifact is
		// missing.
		response.ReportError = result.RenderErr.Error()
	}
	c.JSON(http.StatusOK, response)
}

// Candidates checks which videos exist for an interview, without scoring
func Candidates(c *gin.Context) {
	interviewID := c.Param("interviewID")
	candidates, err := Analyzer.Candidates(interviewID)
	if err != nil {
		abortWithKind(c, interviewID, err)

		return
	}

	names := make([]string, len(candidates))
	for i, candidate := range candidates {
		names[i] = candidate.Name
	}
	c.JSON(http.StatusOK, candidatesResponse{
		InterviewID: interviewID,
		VideosFound: len(candidates),
		VideoNames:  names,
	})
}

// DownloadReport serves the interview's most recent report artifact. It
// never triggers a new analysis run.
func DownloadReport(c *gin.Context) {
	interviewID := c.Param("interviewID")
	artifact, exists := reportcache.Latest(interviewID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report found for interview " + interviewID})

		return
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		log.Errorf("cached report %s is gone from disk, reason=%v", artifact.Path, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "report file no longer available"})

		return
	}

	c.FileAttachment(artifact.Path, filepath.Base(artifact.Path))
}

// abortWithKind maps the error taxonomy to HTTP statuses
func abortWithKind(c *gin.Context, interviewID string, err error) {
	switch {
	case errors.Is(err, videos.ErrInterviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no videos found for interview " + interviewID})
	case errors.Is(err, videos.ErrInvalidSampleSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": "num_videos must be positive"})
	default:
		log.Errorf("analysis failed, interview_id=%s, reason=%v", interviewID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
