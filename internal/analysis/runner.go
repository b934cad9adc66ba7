package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/interviewlens/genuinity/internal/config"
	"github.com/interviewlens/genuinity/internal/report"
	"github.com/interviewlens/genuinity/internal/reportcache"
	"github.com/interviewlens/genuinity/internal/scorer"
	"github.com/interviewlens/genuinity/internal/videos"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scorer is the external scoring collaborator. Implementations must capture
// per-video failures inside the returned record instead of aborting.
type Scorer interface {
	Score(ctx context.Context, video videos.VideoReference) scorer.ScoreRecord
}

// RunResult is what one analysis run hands back to the API layer. The
// aggregate is always present once scoring finished, ReportPath is empty and
// RenderErr set when report generation failed afterwards.
type RunResult struct {
	Aggregate  AggregateResult
	ReportPath string
	RenderErr  error
}

// Runner wires the analysis pipeline together
type Runner struct {
	Scorer   Scorer
	Renderer report.Renderer
}

// NewRunner returns a Runner using the given collaborators
func NewRunner(s Scorer, r report.Renderer) *Runner {
	return &Runner{Scorer: s, Renderer: r}
}

// Candidates lists the eligible videos of an interview without scoring them
func (r *Runner) Candidates(interviewID string) ([]videos.VideoReference, error) {
	return videos.Locate(interviewID)
}

// Run performs one full analysis: locate the interview's videos, sample n of
// them, score the sample with bounded concurrency, aggregate, render the
// report and record it as the interview's latest. seed, when non-nil, makes
// the sampling reproducible.
//
// The records in the aggregate keep the sample order regardless of the
// completion order of the scoring calls. If ctx is canceled the in-flight
// calls are abandoned and the run fails as a whole, no partial aggregate is
// returned.
func (r *Runner) Run(ctx context.Context, interviewID string, n int, seed *int64) (*RunResult, error) {
	runID := uuid.New().String()
	logger := log.WithFields(log.Fields{"run_id": runID, "interview_id": interviewID})
	logger.Infof("starting analysis run, requested=%d", n)

	candidates, err := videos.Locate(interviewID)
	if err != nil {
		return nil, err
	}

	var sampled []videos.VideoReference
	if seed != nil {
		sampled, err = videos.Sample(candidates, n, *seed)
	} else {
		sampled, err = videos.SampleFresh(candidates, n)
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("sampled %d of %d candidate videos", len(sampled), len(candidates))

	records := make([]scorer.ScoreRecord, len(sampled))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(config.Config.Scorer.MaxConcurrent)
	for i, video := range sampled {
		i, video := i, video
		group.Go(func() error {
			// Scoring failures land in the record, only cancellation
			// aborts the group.
			if err := groupCtx.Err(); err != nil {
				return err
			}
			records[i] = r.Scorer.Score(groupCtx, video)

			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logger.Warningf("analysis run aborted, reason=%v", err)

		return nil, err
	}
	if err := ctx.Err(); err != nil {
		logger.Warningf("analysis run canceled after scoring, reason=%v", err)

		return nil, err
	}

	aggregate := Aggregate(interviewID, records)
	logger.Infof("aggregated run, status=%s, analyzed=%d, attempted=%d",
		aggregate.Status, aggregate.VideosAnalyzed, aggregate.Attempted)

	result := &RunResult{Aggregate: aggregate}
	result.ReportPath, result.RenderErr = r.finalize(aggregate)
	if result.RenderErr != nil {
		// The analysis result is kept, only the artifact is missing
		logger.Errorf("report generation failed, reason=%v", result.RenderErr)
	}

	return result, nil
}

// finalize renders the report and records it as the interview's latest
func (r *Runner) finalize(aggregate AggregateResult) (string, error) {
	generatedAt := time.Now()
	doc := report.Document{
		InterviewID:    aggregate.InterviewID,
		Company:        config.Config.Report.Company,
		GeneratedAt:    generatedAt,
		AverageScore:   aggregate.AverageScore,
		VideosAnalyzed: aggregate.VideosAnalyzed,
		Attempted:      aggregate.Attempted,
		Rows:           documentRows(aggregate.Records),
	}

	path, err := r.Renderer.Render(doc)
	if err != nil {
		return "", err
	}

	reportcache.Store(report.Artifact{
		InterviewID: aggregate.InterviewID,
		Path:        path,
		CreatedAt:   generatedAt,
	})

	return path, nil
}

// documentRows maps score records to report rows, keeping the sample order
func documentRows(records []scorer.ScoreRecord) []report.Row {
	rows := make([]report.Row, len(records))
	for i, record := range records {
		rows[i] = report.Row{
			Index:         i + 1,
			Name:          record.VideoName,
			Score:         record.GenuinityScore,
			Duration:      record.TotalDuration,
			Penalty:       record.TotalPenalty,
			Failed:        record.Failed,
			FailureReason: record.FailureReason,
			Errors:        record.DetailedErrors,
		}
	}

	return rows
}
