package services

import (
	"bytes"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCompletions(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	instance := f.seedBlock(t, b, "all")
	f.enrolStudents(t, "s1", "s2")
	f.answer(t, instance.ID, "s1", b.ids["m1"], "1")
	f.answer(t, instance.ID, "s1", b.ids["m4"], "1")

	export, err := f.manager.Report().ExportCompletions(f.ctx, teacherPrincipal, testCourse, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, xlsxContentType, export.ContentType)
	assert.Contains(t, export.FileName, ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{completionsSheet, summarySheet}, book.GetSheetList())

	rows, err := book.GetRows(completionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "User ID", "Status", "Answered", "Total", "Completed At"}, rows[0])
	assert.Equal(t, "s1", rows[1][1])
	assert.Equal(t, "completed", rows[1][2])
	assert.NotEmpty(t, rows[1][5])
	assert.Equal(t, "s2", rows[2][1])
	assert.Equal(t, "not_started", rows[2][2])

	summary, err := book.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"completed", "1", "50"}, summary[1])
	assert.Equal(t, []string{"total", "2", "100"}, summary[4])
}

func TestExportCompletions_Forbidden(t *testing.T) {
	f := newFixture(t, models.OrderAppend)
	b := f.seedBank(t)
	instance := f.seedBlock(t, b, "all")
	f.enrolStudents(t, "s1")

	_, err := f.manager.Report().ExportCompletions(f.ctx, Principal{UserID: "s1"}, testCourse, instance.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
