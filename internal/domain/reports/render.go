package reports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"ponto/internal/domain/core"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatXLSX  Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

var ErrUnknownFormat = errors.New("unknown report format")

var reportHeader = []string{"Date", "Punches", "Worked", "Balance"}

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable, "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) FileName(r Report) string {
	ext := string(f)
	if f == FormatTable {
		ext = "txt"
	}
	return fmt.Sprintf("ponto-%s-%s-%s.%s", r.EmployeeID, r.Start, r.End, ext)
}

func Render(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatPDF:
		return RenderPDF(w, r)
	case FormatXLSX:
		return RenderXLSX(w, r)
	case FormatCSV:
		return RenderCSV(w, r)
	case FormatTable:
		return RenderTable(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

func reportRows(r Report) [][]string {
	rows := make([][]string, 0, len(r.Days))
	for _, day := range r.Days {
		rows = append(rows, []string{day.Date, day.Summary(), day.WorkedText(), day.BalanceText()})
	}
	return rows
}

func RenderCSV(w io.Writer, r Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeader); err != nil {
		return err
	}
	if err := writer.WriteAll(reportRows(r)); err != nil {
		return err
	}
	if err := writer.Write([]string{"Total", "", r.TotalText(), r.BalanceTotalText()}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func RenderTable(w io.Writer, r Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("%s  %s to %s", r.EmployeeName, r.Start, r.End)
	t.AppendHeader(table.Row{reportHeader[0], reportHeader[1], reportHeader[2], reportHeader[3]})
	for _, row := range reportRows(r) {
		t.AppendRow(table.Row{row[0], row[1], row[2], row[3]})
	}
	t.AppendFooter(table.Row{"Total", "", r.TotalText(), r.BalanceTotalText()})
	t.Render()
	return nil
}

func RenderPDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Timesheet")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s", r.EmployeeName)))
	pdf.Ln(7)
	if r.CPF != "" {
		pdf.Cell(0, 8, fmt.Sprintf("CPF: %s", core.FormatCPF(r.CPF)))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", r.Start, r.End))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Target shift: %d min", r.TargetShiftMinutes))
	pdf.Ln(10)

	widths := []float64{28, 102, 25, 25}
	pdf.SetFont("Helvetica", "B", 10)
	for i, title := range reportHeader {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range reportRows(r) {
		for i, value := range row {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1], 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[2], 7, r.TotalText(), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 7, r.BalanceTotalText(), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	if r.SkippedRecords > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 6, fmt.Sprintf("%d unreadable record(s) were left out.", r.SkippedRecords))
	}

	return pdf.Output(w)
}

const xlsxSheet = "Ponto"

func RenderXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}
	meta := [][]any{
		{"Employee", r.EmployeeName},
		{"CPF", core.FormatCPF(r.CPF)},
		{"Period", r.Start + " to " + r.End},
		{"Target shift (min)", r.TargetShiftMinutes},
	}
	row := 1
	for _, values := range meta {
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}
	row++

	headerRow := row
	if err := setRow(f, row, []any{reportHeader[0], reportHeader[1], reportHeader[2], reportHeader[3]}); err != nil {
		return err
	}
	for _, values := range reportRows(r) {
		row++
		if err := setRow(f, row, []any{values[0], values[1], values[2], values[3]}); err != nil {
			return err
		}
	}
	row++
	if err := setRow(f, row, []any{"Total", "", r.TotalText(), r.BalanceTotalText()}); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A"+strconv.Itoa(headerRow), "D"+strconv.Itoa(headerRow), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A"+strconv.Itoa(row), "D"+strconv.Itoa(row), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", 48); err != nil {
		return err
	}

	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(xlsxSheet, cell, &values)
}
