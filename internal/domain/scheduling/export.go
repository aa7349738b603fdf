package scheduling

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const rosterSheet = "Roster"

var rosterHeaders = []string{"Shift", "Room", "Station", "Patient", "National ID", "Arrival (kg)", "Departure (kg)", "No show"}

var shiftNames = map[Shift]string{
	ShiftMorning:   "Morning",
	ShiftAfternoon: "Afternoon",
	ShiftEvening:   "Evening",
}

func kilos(grams *int) string {
	if grams == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*grams)/1000, 'f', 1, 64)
}

// writeRoster lays rows out under a title line; a blank row separates shifts.
func writeRoster(date time.Time, rows []RosterRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(rosterSheet, "A1", "Schedule "+date.Format(DateLayout)); err != nil {
		return nil, fmt.Errorf("failed to set title: %w", err)
	}
	for col, h := range rosterHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		if err := f.SetCellValue(rosterSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to set header: %w", err)
		}
		if err := f.SetCellStyle(rosterSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	line := 3
	for i, r := range rows {
		if i > 0 && rows[i-1].Shift != r.Shift {
			line++
		}
		noShow := ""
		if r.NoShow {
			noShow = "yes"
		}
		values := []any{shiftNames[r.Shift], r.Room, r.Station, r.PatientName, r.NationalID,
			kilos(r.ArrivalWeightGrams), kilos(r.DepartureWeightGrams), noShow}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, line)
			if err := f.SetCellValue(rosterSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
		line++
	}

	widths := []float64{12, 14, 10, 32, 14, 14, 14, 10}
	for col, w := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(rosterSheet, name, name, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
