// Package export writes the catalog as a spreadsheet for manual review.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"umahelper/models"
)

// Sheet is the worksheet holding one row per choice.
const Sheet = "Events"

var headers = []string{"Event", "Event (JP)", "Character", "Relation", "Choice", "Choice Text", "Outcome", "Notes"}

// WriteXLSX writes evs to w. Events without choices still get one row.
func WriteXLSX(w io.Writer, evs []models.Event) (int, error) {
	f := excelize.NewFile()
	defer f.Close()
	if index, _ := f.GetSheetIndex(Sheet); index == -1 {
		if _, err := f.NewSheet(Sheet); err != nil {
			return 0, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(Sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(Sheet, cell, h)
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(Sheet, cell, v)
	}
	for _, e := range evs {
		choices := e.Choices
		if len(choices) == 0 {
			choices = []models.Choice{{}}
		}
		for _, c := range choices {
			write(1, e.Name)
			write(2, e.NameJP)
			write(3, e.CharacterName)
			write(4, e.RelationType)
			write(5, c.Number)
			write(6, c.Text)
			write(7, c.Outcome)
			write(8, e.Notes)
			row++
		}
	}

	_ = f.SetColWidth(Sheet, "A", "B", 32)
	_ = f.SetColWidth(Sheet, "C", "D", 18)
	_ = f.SetColWidth(Sheet, "E", "E", 8)
	_ = f.SetColWidth(Sheet, "F", "G", 40)
	_ = f.SetColWidth(Sheet, "H", "H", 48)

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("xlsx write: %w", err)
	}
	return row - 2, nil
}
