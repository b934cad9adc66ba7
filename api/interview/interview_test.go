package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/interviewlens/genuinity/internal/analysis"
	"github.com/interviewlens/genuinity/internal/config"
	"github.com/interviewlens/genuinity/internal/report"
	"github.com/interviewlens/genuinity/internal/reportcache"
	"github.com/interviewlens/genuinity/internal/scorer"
	"github.com/interviewlens/genuinity/internal/videos"
	"github.com/stretchr/testify/assert"
)

// stubService plays the orchestration runner behind the handlers
type stubService struct {
	runResult  *analysis.RunResult
	runErr     error
	candidates []videos.VideoReference
	locateErr  error

	gotInterviewID string
	gotN           int
	gotSeed        *int64
}

func (s *stubService) Run(_ context.Context, interviewID string, n int, seed *int64) (*analysis.RunResult, error) {
	s.gotInterviewID = interviewID
	s.gotN = n
	s.gotSeed = seed

	return s.runResult, s.runErr
}

func (s *stubService) Candidates(_ string) ([]videos.VideoReference, error) {
	return s.candidates, s.locateErr
}

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/analyze", Analyze)
	r.GET("/api/v1/interviews/:interviewID/videos", Candidates)
	r.GET("/api/v1/interviews/:interviewID/report", DownloadReport)

	return r
}

func postAnalyze(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(body))
	request.Header.Set("Content-Type", "application/json")
	router().ServeHTTP(w, request)

	return w
}

func TestAnalyze(t *testing.T) {
	average := 8.2
	path := "/reports/INT123_20260828_100000.pdf"
	service := &stubService{
		runResult: &analysis.RunResult{
			Aggregate: analysis.AggregateResult{
				InterviewID:    "INT123",
				VideosAnalyzed: 1,
				Attempted:      2,
				AverageScore:   &average,
				Records: []scorer.ScoreRecord{
					{VideoName: "v1.mp4", GenuinityScore: 8.2, TotalDuration: 245.5, TotalPenalty: 0.15},
					{VideoName: "v2.mp4", Failed: true, FailureReason: "scoring request: timeout"},
				},
				Status:  analysis.StatusPartial,
				Message: "Successfully analyzed 1 of 2 videos",
			},
			ReportPath: path,
		},
	}
	Analyzer = service

	w := postAnalyze(t, `{"interview_id": "INT123", "num_videos": 2, "seed": 99}`)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "INT123", service.gotInterviewID)
	assert.Equal(t, 2, service.gotN)
	if assert.NotNil(t, service.gotSeed) {
		assert.Equal(t, int64(99), *service.gotSeed)
	}

	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "partial", response["status"])
	assert.Equal(t, 8.2, response["average_genuinity_score"])
	assert.Equal(t, float64(1), response["videos_analyzed"])
	assert.Equal(t, float64(2), response["attempted"])
	assert.Equal(t, path, response["pdf_report_path"])
	assert.Len(t, response["individual_scores"], 2)
	assert.NotContains(t, response, "report_error")
}

func TestAnalyze_DefaultsSampleSize(t *testing.T) {
	config.Config.Sample.Size = 2
	service := &stubService{
		runResult: &analysis.RunResult{
			Aggregate: analysis.AggregateResult{InterviewID: "INT123", Status: analysis.StatusFailed},
		},
	}
	Analyzer = service

	w := postAnalyze(t, `{"interview_id": "INT123"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, service.gotN)
	assert.Nil(t, service.gotSeed)
}

func TestAnalyze_MissingInterviewID(t *testing.T) {
	Analyzer = &stubService{}

	w := postAnalyze(t, `{"num_videos": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_InterviewNotFound(t *testing.T) {
	Analyzer = &stubService{runErr: videos.ErrInterviewNotFound}

	w := postAnalyze(t, `{"interview_id": "NOSUCH"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyze_InvalidSampleSize(t *testing.T) {
	Analyzer = &stubService{runErr: videos.ErrInvalidSampleSize}

	w := postAnalyze(t, `{"interview_id": "INT123", "num_videos": -3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_InternalError(t *testing.T) {
	Analyzer = &stubService{runErr: os.ErrPermission}

	w := postAnalyze(t, `{"interview_id": "INT123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyze_ReportFailure(t *testing.T) {
	// A failed render still reports the analysis, without a report path
	average := 7.5
	Analyzer = &stubService{
		runResult: &analysis.RunResult{
			Aggregate: analysis.AggregateResult{
				InterviewID:    "INT123",
				VideosAnalyzed: 1,
				Attempted:      1,
				AverageScore:   &average,
				Status:         analysis.StatusSuccess,
				Message:        "Successfully analyzed 1 of 1 videos",
			},
			RenderErr: report.ErrRender,
		},
	}

	w := postAnalyze(t, `{"interview_id": "INT123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response["status"])
	assert.Nil(t, response["pdf_report_path"])
	assert.Contains(t, response["report_error"], "rendering failed")
}

func TestCandidates(t *testing.T) {
	Analyzer = &stubService{
		candidates: []videos.VideoReference{
			{InterviewID: "INT123", Name: "v1.mp4"},
			{InterviewID: "INT123", Name: "v2.mp4"},
		},
	}

	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/INT123/videos", nil)
	router().ServeHTTP(w, request)

	assert.Equal(t, http.StatusOK, w.Code)
	var response candidatesResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INT123", response.InterviewID)
	assert.Equal(t, 2, response.VideosFound)
	assert.Equal(t, []string{"v1.mp4", "v2.mp4"}, response.VideoNames)
}

func TestCandidates_NotFound(t *testing.T) {
	Analyzer = &stubService{locateErr: videos.ErrInterviewNotFound}

	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/NOSUCH/videos", nil)
	router().ServeHTTP(w, request)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadReport(t *testing.T) {
	cache, err := reportcache.InitialiseReportCache()
	assert.NoError(t, err)
	reportcache.ReportCache = cache

	path := filepath.Join(t.TempDir(), "INT123_20260828_100000.pdf")
	assert.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600))
	reportcache.Store(report.Artifact{InterviewID: "INT123", Path: path})

	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/INT123/report", nil)
	router().ServeHTTP(w, request)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INT123_20260828_100000.pdf")
	assert.Equal(t, "%PDF-1.4 fake", w.Body.String())
}

func TestDownloadReport_NotCached(t *testing.T) {
	cache, err := reportcache.InitialiseReportCache()
	assert.NoError(t, err)
	reportcache.ReportCache = cache

	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/INT123/report", nil)
	router().ServeHTTP(w, request)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadReport_FileGone(t *testing.T) {
	cache, err := reportcache.InitialiseReportCache()
	assert.NoError(t, err)
	reportcache.ReportCache = cache
	reportcache.Store(report.Artifact{
		InterviewID: "INT123",
		Path:        filepath.Join(t.TempDir(), "removed.pdf"),
	})

	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/INT123/report", nil)
	router().ServeHTTP(w, request)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
