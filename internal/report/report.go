// Package report turns an aggregated analysis into a durable PDF artifact.
package report

import (
	"errors"
	"time"

	"github.com/interviewlens/genuinity/internal/scorer"
)

// ErrRender marks a report generation failure. Callers keep the already
// computed analysis result when rendering fails, only the artifact is absent.
var ErrRender = errors.New("report rendering failed")

// Artifact points at one generated report on local storage
type Artifact struct {
	InterviewID string    `json:"interview_id"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Row is one per-video line of the report's detail table, in sample order
type Row struct {
	Index         int
	Name          string
	Score         float64
	Duration      float64
	Penalty       float64
	Failed        bool
	FailureReason string
	Errors        []scorer.DetailedError
}

// Document is the structured input contract of report generation: header
// fields plus the ordered per-video rows, including failed ones.
type Document struct {
	InterviewID    string
	Company        string
	GeneratedAt    time.Time
	AverageScore   *float64
	VideosAnalyzed int
	Attempted      int
	Rows           []Row
}

// Renderer defines the report generation collaborator. Render returns the
// path of the produced file or an error wrapping ErrRender.
type Renderer interface {
	Render(doc Document) (string, error)
}
