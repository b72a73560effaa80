// Package export renders the movement schedule as a downloadable report.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/campusmove/movplan/core/movement"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"

	sheetName = "Movements"
)

var Headers = []string{
	"Day",
	"Class Name",
	"Class Size",
	"Bus Type",
	"Bus Capacity",
	"Lecturer in Charge",
	"Contact Number",
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", errors.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename returns movement-schedule-<YYYY-MM-DD>.<ext> for the UTC date of t.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("movement-schedule-%s.%s", t.UTC().Format("2006-01-02"), f)
}

func row(m movement.Movement) []string {
	return []string{
		m.Day,
		m.ClassName,
		strconv.Itoa(m.ClassSize),
		m.BusType,
		strconv.Itoa(m.Capacity),
		m.InCharge,
		m.InChargePhone,
	}
}

// CSVString renders a header row followed by one row per movement.
// Fields are joined with commas and are not quoted, rows are separated by "\n" without a trailing newline.
func CSVString(movements []movement.Movement) string {
	lines := make([]string, 0, len(movements)+1)
	lines = append(lines, strings.Join(Headers, ","))
	for _, m := range movements {
		lines = append(lines, strings.Join(row(m), ","))
	}
	return strings.Join(lines, "\n")
}

func WriteCSV(w io.Writer, movements []movement.Movement) error {
	_, err := io.WriteString(w, CSVString(movements))
	return errors.Wrap(err, "writing csv")
}

func WriteXLSX(w io.Writer, movements []movement.Movement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}
	for i, m := range movements {
		r := i + 2
		values := []interface{}{m.Day, m.ClassName, m.ClassSize, m.BusType, m.Capacity, m.InCharge, m.InChargePhone}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return errors.Wrapf(err, "writing row %d", r)
			}
		}
	}

	return errors.Wrap(f.Write(w), "writing xlsx")
}

// Write renders movements in format f.
func Write(w io.Writer, f Format, movements []movement.Movement) error {
	switch f {
	case CSV:
		return WriteCSV(w, movements)
	case XLSX:
		return WriteXLSX(w, movements)
	default:
		return errors.Errorf("unsupported export format %q", string(f))
	}
}
