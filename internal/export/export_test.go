package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/studyhall/internal/store"
)

func TestWriteAttempts(t *testing.T) {
	attempts := []store.Attempt{
		{
			Username: "ada", Kind: "jamb", Title: "Mathematics, Physics SS3", Class: "SS3",
			SubjectCodes: "MATPHY", ExamID: "MATPHY-AB12", Total: 10, Correct: 8,
			Percentage: 80, Passed: true, TimeTaken: "05:00",
			CompletedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			Username: "ada", Kind: "practice", Title: "Algebra", Class: "JSS2",
			Total: 4, Correct: 1, Percentage: 25, TimeTaken: "01:10",
			CompletedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		},
	}
	stats := store.AttemptStats{Attempts: 2, Passed: 1, AveragePercentage: 52.5, BestPercentage: 80}

	var buf bytes.Buffer
	require.NoError(t, WriteAttempts(&buf, attempts, stats))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(AttemptsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Completed", rows[0][0])
	assert.Equal(t, "2026-03-01 09:30", rows[1][0])
	assert.Equal(t, "MATPHY-AB12", rows[1][6])
	assert.Equal(t, "PASS", rows[1][10])
	assert.Equal(t, "FAIL", rows[2][10])
	assert.Equal(t, "01:10", rows[2][11])

	v, err := f.GetCellValue(SummarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "52.5", v)
}

func TestWriteAttempts_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAttempts(&buf, nil, store.AttemptStats{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(AttemptsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
