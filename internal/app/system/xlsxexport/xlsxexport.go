// Package xlsxexport writes registrants to an .xlsx workbook with the
// fixed column layout used by the dashboard download and regctl.
package xlsxexport

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/normalize"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/ettle/strcase"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only worksheet.
const SheetName = "Foydalanuvchilar"

// DefaultScope prefixes the filename of an unfiltered export.
const DefaultScope = "foydalanuvchilar"

// DateLayout formats the registration timestamp.
const DateLayout = "02.01.2006 15:04"

// ContentType is the MIME type of the generated file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column is one sheet column.
type Column struct {
	Header string
	Width  float64
}

// Options controls the layout.
type Options struct {
	// Location converts timestamps before formatting. Nil means time.Local.
	Location *time.Location
	// IncludeCourse adds the Kurs column after the phone number.
	IncludeCourse bool
	// CourseNames maps course tags in the address field to display names.
	CourseNames models.CourseNames
}

// Columns returns the header row in order.
func Columns(opt Options) []Column {
	cols := []Column{
		{Header: "№", Width: 5},
		{Header: "To'liq ismi", Width: 25},
		{Header: "Telefon raqami", Width: 15},
	}
	if opt.IncludeCourse {
		cols = append(cols, Column{Header: "Kurs", Width: 20})
	}
	return append(cols,
		Column{Header: "Telegram", Width: 20},
		Column{Header: "Ro'yxatdan o'tgan sana", Width: 20},
	)
}

// Rows maps registrants to sheet rows (without the header).
func Rows(rs []models.Registrant, opt Options) [][]string {
	loc := opt.Location
	if loc == nil {
		loc = time.Local
	}
	out := make([][]string, 0, len(rs))
	for i, r := range rs {
		row := []string{
			strconv.Itoa(i + 1),
			normalize.Placeholder(r.FullName),
			normalize.Placeholder(r.PhoneNumber),
		}
		if opt.IncludeCourse {
			row = append(row, courseCell(r.Address, opt.CourseNames))
		}
		row = append(row, normalize.Placeholder(r.TgUser), dateCell(r.CreatedAt, loc))
		out = append(out, row)
	}
	return out
}

func courseCell(address string, names models.CourseNames) string {
	if address == "" {
		return models.Placeholder
	}
	c := models.ParseCourse(address)
	if c.IsAll() || names == nil {
		return address
	}
	return names.Name(c)
}

func dateCell(createdAt string, loc *time.Location) string {
	t, ok := models.ParseTimestamp(createdAt)
	if !ok {
		return models.UnknownDate
	}
	return t.In(loc).Format(DateLayout)
}

// Write streams the workbook to w and returns the number of data rows.
func Write(w io.Writer, rs []models.Registrant, opt Options) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	cols := Columns(opt)
	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, fmt.Errorf("xlsx: column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, c.Width); err != nil {
			return 0, fmt.Errorf("xlsx: column width: %w", err)
		}
		if err := f.SetCellValue(SheetName, name+"1", c.Header); err != nil {
			return 0, fmt.Errorf("xlsx: header: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("xlsx: header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(cols))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", bold); err != nil {
		return 0, fmt.Errorf("xlsx: header style: %w", err)
	}

	rows := Rows(rs, opt)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, fmt.Errorf("xlsx: cell name: %w", err)
		}
		vals := make([]any, len(row))
		vals[0] = i + 1
		for j := 1; j < len(row); j++ {
			vals[j] = row[j]
		}
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return 0, fmt.Errorf("xlsx: row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("xlsx: write: %w", err)
	}
	return len(rows), nil
}

// Filename returns "{scope}_{YYYY-MM-DD}.xlsx". A blank scope means
// DefaultScope; anything else is snake-cased.
func Filename(scope string, now time.Time) string {
	slug := DefaultScope
	if scope != "" {
		if s := strcase.ToSnake(scope); s != "" {
			slug = s
		}
	}
	return fmt.Sprintf("%s_%s.xlsx", slug, now.Format("2006-01-02"))
}
