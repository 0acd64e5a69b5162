package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	report, err := sampleService().EmployeeReport(context.Background(), "ana", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	return report
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"pdf": FormatPDF, "XLSX": FormatXLSX, " csv ": FormatCSV, "": FormatTable} {
		got, err := ParseFormat(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatCSV, sampleReport(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, []string{"2024-03-02", "E 08:00 | S 15:00", "07:00", "-01:00"}, rows[2])
	assert.Equal(t, []string{"Total", "", "15:30", "-00:30"}, rows[3])
}

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatPDF, sampleReport(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatXLSX, sampleReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee", "Ana Lima"}, rows[0])
	assert.Equal(t, []string{"CPF", "529.982.247-25"}, rows[1])
	last := rows[len(rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "15:30", last[2])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, sampleReport(t)))
	out := buf.String()
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "E 08:00 | P 12:00 | E 13:00 | S 17:30")
	assert.Contains(t, out, "15:30")
}

func TestFileName(t *testing.T) {
	report := sampleReport(t)
	assert.Equal(t, "ponto-ana-2024-03-01-2024-03-31.pdf", FormatPDF.FileName(report))
	assert.Equal(t, "ponto-ana-2024-03-01-2024-03-31.txt", FormatTable.FileName(report))
}
