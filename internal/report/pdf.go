package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	log "github.com/sirupsen/logrus"
)

// PDFRenderer renders analysis documents to PDF files under Location
type PDFRenderer struct {
	Location string
	Company  string
}

// NewPDFRenderer ensures the output directory exists and returns a renderer
func NewPDFRenderer(location, company string) (*PDFRenderer, error) {
	if err := os.MkdirAll(location, 0o750); err != nil {
		log.Errorf("failed to create report directory %s, reason=%v", location, err)

		return nil, err
	}

	return &PDFRenderer{Location: location, Company: company}, nil
}

// Render writes the report PDF and returns its path. The file is named
// <interview id>_<timestamp>.pdf so consecutive runs don't overwrite each
// other on disk even though only the latest is served.
func (r *PDFRenderer) Render(doc Document) (string, error) {
	filename := fmt.Sprintf("%s_%s.pdf", doc.InterviewID, doc.GeneratedAt.Format("20060102_150405"))
	target := filepath.Join(r.Location, filename)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "Video Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Header table
	pdf.SetFont("Helvetica", "", 11)
	header := [][2]string{
		{"Interview ID:", doc.InterviewID},
		{"Report Date:", doc.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Videos Analyzed:", fmt.Sprintf("%d of %d", doc.VideosAnalyzed, doc.Attempted)},
		{"Average Genuinity Score:", averageLabel(doc.AverageScore)},
	}
	for _, row := range header {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(236, 240, 241)
		pdf.CellFormat(60, 9, row[0], "1", 0, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(90, 9, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Assessment band
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	assessment, rgb := assess(doc.AverageScore)
	pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
	pdf.CellFormat(0, 8, "Assessment: "+assessment, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// Per-video table
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Individual Video Scores", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(52, 152, 219)
	pdf.SetTextColor(255, 255, 255)
	widths := []float64{12, 70, 26, 20, 20, 32}
	columns := []string{"#", "Video Name", "Duration (s)", "Score", "Penalty", "Status"}
	for i, col := range columns {
		pdf.CellFormat(widths[i], 9, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range doc.Rows {
		fill := row.Index%2 == 0
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(widths[0], 8, fmt.Sprint(row.Index), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[1], 8, truncate(row.Name, 36), "1", 0, "L", fill, 0, "")
		if row.Failed {
			pdf.CellFormat(widths[2], 8, "-", "1", 0, "C", fill, 0, "")
			pdf.CellFormat(widths[3], 8, "-", "1", 0, "C", fill, 0, "")
			pdf.CellFormat(widths[4], 8, "-", "1", 0, "C", fill, 0, "")
			pdf.SetTextColor(231, 76, 60)
			pdf.CellFormat(widths[5], 8, "analysis failed", "1", 1, "C", fill, 0, "")
			pdf.SetTextColor(0, 0, 0)

			continue
		}
		pdf.CellFormat(widths[2], 8, fmt.Sprintf("%.1f", row.Duration), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[3], 8, fmt.Sprintf("%.2f", row.Score), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[4], 8, fmt.Sprintf("%.2f", row.Penalty), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[5], 8, "ok", "1", 1, "C", fill, 0, "")
	}

	r.renderDetails(pdf, doc)

	// Footer
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Report generated by "+r.Company, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated on "+doc.GeneratedAt.Format("2006-01-02 at 15:04:05"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(target); err != nil {
		log.Errorf("failed to write report %s, reason=%v", target, err)

		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	log.Infof("report generated, interview=%s, path=%s", doc.InterviewID, target)

	return target, nil
}

// renderDetails lists violation intervals and failure reasons per video
func (r *PDFRenderer) renderDetails(pdf *fpdf.Fpdf, doc Document) {
	flagged := make([]Row, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		if row.Failed || len(row.Errors) > 0 {
			flagged = append(flagged, row)
		}
	}
	if len(flagged) == 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(39, 174, 96)
		pdf.CellFormat(0, 8, "No violations detected in any video", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)

		return
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Detailed Analysis", "", 1, "L", false, 0, "")
	for _, row := range flagged {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Video: "+row.Name, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if row.Failed {
			pdf.SetTextColor(231, 76, 60)
			pdf.MultiCell(0, 6, "Analysis failed: "+row.FailureReason, "", "L", false)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(4)

			continue
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("Score: %.2f/10 | Duration: %.1fs | Total Penalty: %.2f",
			row.Score, row.Duration, row.Penalty), "", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(231, 76, 60)
		pdf.SetTextColor(255, 255, 255)
		widths := []float64{60, 25, 25, 30, 30}
		for i, col := range []string{"Error Type", "From (s)", "To (s)", "Duration (s)", "Confidence"} {
			pdf.CellFormat(widths[i], 8, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
		for _, detected := range row.Errors {
			pdf.CellFormat(widths[0], 7, errorLabel(detected.ErrorType), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 7, fmt.Sprintf("%.1f", detected.FromTime), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.1f", detected.ToTime), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.1f", detected.ToTime-detected.FromTime), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", detected.Confidence), "1", 1, "C", false, 0, "")
		}
		pdf.Ln(4)
	}
}

func averageLabel(score *float64) string {
	if score == nil {
		return "N/A"
	}

	return fmt.Sprintf("%.2f/10", *score)
}

// assess maps the mean score to the wording and color used in the summary
func assess(score *float64) (string, [3]int) {
	switch {
	case score == nil:
		return "Failed - No videos could be analyzed", [3]int{231, 76, 60}
	case *score >= 8:
		return "Excellent - High genuinity detected", [3]int{39, 174, 96}
	case *score >= 6:
		return "Good - Acceptable genuinity level", [3]int{230, 126, 34}
	default:
		return "Poor - Multiple violations detected", [3]int{231, 76, 60}
	}
}

func errorLabel(errorType string) string {
	return strings.Title(strings.ReplaceAll(errorType, "_", " ")) //nolint:staticcheck // ASCII error keys only
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[:limit-3] + "..."
}
