// Package analysis coordinates one genuinity analysis run, locate, sample,
// score, aggregate, report, and owns the aggregation rules.
package analysis

import (
	"fmt"
	"math"

	"github.com/interviewlens/genuinity/internal/scorer"
)

// Status classifies the outcome of one analysis run
type Status string

const (
	// StatusSuccess means every sampled video was scored
	StatusSuccess Status = "success"
	// StatusPartial means at least one video was scored and at least one failed
	StatusPartial Status = "partial"
	// StatusFailed means no video could be scored, including the case of an
	// interview folder without any eligible videos
	StatusFailed Status = "failed"
)

// AggregateResult is the interview-level summary of one run. Records keeps
// the sample order and includes failed records for transparency.
// AverageScore is the mean over successful records only and is nil, never
// zero, when there are no successful records.
type AggregateResult struct {
	InterviewID    string
	VideosAnalyzed int
	Attempted      int
	AverageScore   *float64
	Records        []scorer.ScoreRecord
	Status         Status
	Message        string
}

// Aggregate folds per-video score records into an AggregateResult. It is
// pure and deterministic, the ordering of records is preserved as given.
func Aggregate(interviewID string, records []scorer.ScoreRecord) AggregateResult {
	result := AggregateResult{
		InterviewID: interviewID,
		Attempted:   len(records),
		Records:     records,
	}

	var sum float64
	for _, record := range records {
		if record.Failed {
			continue
		}
		result.VideosAnalyzed++
		sum += record.GenuinityScore
	}

	switch {
	case result.VideosAnalyzed == 0:
		result.Status = StatusFailed
		result.Message = "Failed to analyze any videos"
	case result.VideosAnalyzed < result.Attempted:
		result.Status = StatusPartial
	default:
		result.Status = StatusSuccess
	}

	if result.VideosAnalyzed > 0 {
		mean := roundScore(sum / float64(result.VideosAnalyzed))
		result.AverageScore = &mean
		result.Message = fmt.Sprintf("Successfully analyzed %d of %d videos", result.VideosAnalyzed, result.Attempted)
	}

	return result
}

// roundScore fixes the displayed mean to 4 decimal digits
func roundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}
