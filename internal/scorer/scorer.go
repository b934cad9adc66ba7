// Package scorer calls the external genuinity scoring service and turns each
// outcome, good or bad, into a ScoreRecord. A failing remote call never
// surfaces as an error, it is captured in the record so that one bad video
// cannot abort a whole analysis run.
package scorer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/interviewlens/genuinity/internal/config"
	"github.com/interviewlens/genuinity/internal/videos"
	"github.com/interviewlens/genuinity/pkg/request"
	log "github.com/sirupsen/logrus"
)

// DetailedError is one violation interval reported by the scoring service
type DetailedError struct {
	ErrorType  string  `json:"error_type"`
	FromTime   float64 `json:"from_time"`
	ToTime     float64 `json:"to_time"`
	Confidence float64 `json:"confidence"`
}

// ScoreRecord is the normalized result of scoring one video. Records are
// created here and never mutated afterwards. Failed marks a record whose
// remote call did not succeed, FailureReason carries the diagnostic.
type ScoreRecord struct {
	VideoName      string                        `json:"video_name"`
	GenuinityScore float64                       `json:"genuinity_score"`
	TotalDuration  float64                       `json:"total_duration"`
	TotalPenalty   float64                       `json:"total_penalty"`
	ErrorsSummary  map[string]map[string]float64 `json:"errors_summary,omitempty"`
	DetailedErrors []DetailedError               `json:"detailed_errors,omitempty"`
	AnalyzedAt     time.Time                     `json:"analyzed_at"`
	Failed         bool                          `json:"failed,omitempty"`
	FailureReason  string                        `json:"failure_reason,omitempty"`
}

// scorePayload is the request body the scoring endpoint expects
type scorePayload struct {
	VideoName string `json:"video_name"`
	VideoData string `json:"video_data"`
}

// scoreResponse is the envelope the scoring endpoint answers with. The
// fields of interest live in the nested data object, pointers so that a
// missing field can be told apart from a zero value.
type scoreResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    *scoreData `json:"data"`
}

type scoreData struct {
	GenuinityScore    *float64                      `json:"genuinity_score"`
	TotalDuration     *float64                      `json:"total_duration"`
	TotalPenalty      *float64                      `json:"total_penalty"`
	ErrorsSummary     map[string]map[string]float64 `json:"errors_summary"`
	DetailedErrors    []DetailedError               `json:"detailed_errors"`
	AnalysisTimestamp string                        `json:"analysis_timestamp"`
}

// Client issues scoring requests against the configured endpoint
type Client struct {
	URL string
}

// NewClient returns a scoring client for the configured endpoint
func NewClient() *Client {
	return &Client{URL: config.Config.Scorer.URL}
}

// Score reads the video's bytes, ships them base64-encoded to the scoring
// endpoint and parses the response into a ScoreRecord. Every failure mode,
// unreadable file, timeout, non-2xx status, malformed body, missing fields,
// yields a failure record instead of an error. One attempt per video, no
// retries.
func (c *Client) Score(ctx context.Context, video videos.VideoReference) ScoreRecord {
	log.Infof("scoring video %s, interview=%s, size=%d", video.Name, video.InterviewID, video.Size)

	videoBytes, err := os.ReadFile(video.Path)
	if err != nil {
		log.Errorf("failed to read video %s, reason=%v", video.Path, err)

		return failure(video, fmt.Sprintf("reading video file: %v", err))
	}

	body, err := json.Marshal(scorePayload{
		VideoName: video.Name,
		VideoData: base64.StdEncoding.EncodeToString(videoBytes),
	})
	if err != nil {
		return failure(video, fmt.Sprintf("encoding request payload: %v", err))
	}

	headers := map[string]string{"Content-Type": "application/json"}
	response, err := request.MakeRequest(ctx, http.MethodPost, c.URL, headers, body)
	if err != nil {
		log.Errorf("scoring call failed for %s, reason=%v", video.Name, err)

		return failure(video, fmt.Sprintf("scoring request: %v", err))
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return failure(video, fmt.Sprintf("reading scoring response: %v", err))
	}

	var parsed scoreResponse
	if err := json.Unmarshal(responseBytes, &parsed); err != nil {
		log.Errorf("malformed scoring response for %s, reason=%v", video.Name, err)

		return failure(video, fmt.Sprintf("malformed scoring response: %v", err))
	}
	log.Debugf("scoring response for %s, status=%s, message=%s", video.Name, parsed.Status, parsed.Message)
	if err := validate(parsed.Data); err != nil {
		log.Errorf("incomplete scoring response for %s, reason=%v", video.Name, err)

		return failure(video, err.Error())
	}

	record := ScoreRecord{
		VideoName:      video.Name,
		GenuinityScore: *parsed.Data.GenuinityScore,
		TotalDuration:  *parsed.Data.TotalDuration,
		TotalPenalty:   *parsed.Data.TotalPenalty,
		ErrorsSummary:  parsed.Data.ErrorsSummary,
		DetailedErrors: parsed.Data.DetailedErrors,
		AnalyzedAt:     analyzedAt(parsed.Data.AnalysisTimestamp),
	}
	log.Infof("video %s scored, score=%.2f, duration=%.1f, penalty=%.2f",
		video.Name, record.GenuinityScore, record.TotalDuration, record.TotalPenalty)

	return record
}

// validate enforces the expected-field contract of the scoring response
func validate(data *scoreData) error {
	switch {
	case data == nil:
		return fmt.Errorf("scoring response missing data object")
	case data.GenuinityScore == nil:
		return fmt.Errorf("scoring response missing genuinity_score")
	case data.TotalDuration == nil:
		return fmt.Errorf("scoring response missing total_duration")
	case data.TotalPenalty == nil:
		return fmt.Errorf("scoring response missing total_penalty")
	case *data.TotalPenalty < 0:
		return fmt.Errorf("scoring response carries negative total_penalty %v", *data.TotalPenalty)
	}

	return nil
}

// analyzedAt parses the service's timestamp, falling back to local time
func analyzedAt(stamp string) time.Time {
	if stamp != "" {
		if t, err := time.Parse(time.RFC3339, stamp); err == nil {
			return t
		}
		log.Debugf("unparseable analysis_timestamp %q, using local time", stamp)
	}

	return time.Now()
}

func failure(video videos.VideoReference, reason string) ScoreRecord {
	return ScoreRecord{
		VideoName:     video.Name,
		AnalyzedAt:    time.Now(),
		Failed:        true,
		FailureReason: reason,
	}
}
