// Package export generates achievement reports. Both generators are pure
// functions over a completed-task snapshot; no storage access happens here.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"syncdeck-api/internal/models"

	"github.com/go-pdf/fpdf"
)

// CompletedTask is the report row shape handed to the generators.
type CompletedTask struct {
	Title        string
	Description  string
	CompletedAt  *time.Time
	Criticality  models.TaskCriticality
	AssignerName string
}

// GenerateCSV renders completed tasks as CSV.
func GenerateCSV(tasks []CompletedTask, username string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Task Name", "Completion Date", "Criticality", "Assigned By", "Description"}); err != nil {
		return nil, err
	}
	for _, task := range tasks {
		completed := ""
		if task.CompletedAt != nil {
			completed = task.CompletedAt.Format("2006-01-02 15:04")
		}
		description := task.Description
		if len(description) > 100 {
			description = description[:97] + "..."
		}
		assigner := task.AssignerName
		if assigner == "" {
			assigner = "N/A"
		}
		row := []string{
			task.Title,
			completed,
			strings.ToUpper(string(task.Criticality)),
			assigner,
			description,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeneratePDF renders completed tasks as a PDF achievement report with a
// summary block and a task table.
func GeneratePDF(tasks []CompletedTask, username, period string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(234, 88, 12)
	pdf.CellFormat(0, 12, fmt.Sprintf("Achievement Report - %s", username), "", 1, "C", false, 0, "")

	periodText := "All Time"
	if period != "" && period != "all" {
		periodText = strings.ToUpper(period[:1]) + period[1:]
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s Report | Generated on %s",
		periodText, time.Now().Format("January 2, 2006 at 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	high, medium, low := 0, 0, 0
	for _, t := range tasks {
		switch t.Criticality {
		case models.CriticalityHigh:
			high++
		case models.CriticalityMedium:
			medium++
		case models.CriticalityLow:
			low++
		}
	}

	// Summary row
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(254, 215, 170)
	pdf.SetTextColor(154, 52, 18)
	for _, h := range []string{"Total Completed", "High Priority", "Medium Priority", "Low Priority"} {
		pdf.CellFormat(48, 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(255, 251, 235)
	pdf.SetTextColor(0, 0, 0)
	for _, v := range []int{len(tasks), high, medium, low} {
		pdf.CellFormat(48, 9, fmt.Sprintf("%d", v), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(14)

	if len(tasks) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, "No completed tasks found for this period.", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(249, 115, 22)
		pdf.SetTextColor(255, 255, 255)
		widths := []float64{82, 36, 32, 42}
		for i, h := range []string{"Task Name", "Completed", "Criticality", "Assigned By"} {
			pdf.CellFormat(widths[i], 9, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, task := range tasks {
			title := task.Title
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			completed := "N/A"
			if task.CompletedAt != nil {
				completed = task.CompletedAt.Format("01/02/2006")
			}
			assigner := task.AssignerName
			if assigner == "" {
				assigner = "N/A"
			}
			pdf.CellFormat(widths[0], 8, title, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 8, completed, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 8, strings.ToUpper(string(task.Criticality)), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 8, assigner, "1", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
