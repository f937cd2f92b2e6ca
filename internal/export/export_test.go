package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"syncdeck-api/internal/models"

	"github.com/stretchr/testify/require"
)

func sampleTasks() []CompletedTask {
	done := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return []CompletedTask{
		{
			Title:        "Migrate auth service",
			Description:  "Move the auth service to the new cluster",
			CompletedAt:  &done,
			Criticality:  models.CriticalityHigh,
			AssignerName: "alice",
		},
		{
			Title:       "Update runbooks",
			Criticality: models.CriticalityLow,
		},
	}
}

func TestGenerateCSV(t *testing.T) {
	content, err := GenerateCSV(sampleTasks(), "bob")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, []string{"Task Name", "Completion Date", "Criticality", "Assigned By", "Description"}, records[0])
	require.Equal(t, "Migrate auth service", records[1][0])
	require.Equal(t, "2026-03-14 10:30", records[1][1])
	require.Equal(t, "HIGH", records[1][2])
	require.Equal(t, "alice", records[1][3])

	// Missing completion date and assigner degrade gracefully.
	require.Equal(t, "", records[2][1])
	require.Equal(t, "N/A", records[2][3])
}

func TestGenerateCSV_TruncatesLongDescriptions(t *testing.T) {
	tasks := []CompletedTask{{
		Title:       "Long one",
		Description: strings.Repeat("x", 150),
		Criticality: models.CriticalityMedium,
	}}
	content, err := GenerateCSV(tasks, "bob")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records[1][4], 100)
	require.True(t, strings.HasSuffix(records[1][4], "..."))
}

func TestGeneratePDF(t *testing.T) {
	content, err := GeneratePDF(sampleTasks(), "bob", "month")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestGeneratePDF_EmptyPeriod(t *testing.T) {
	content, err := GeneratePDF(nil, "bob", "all")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}
