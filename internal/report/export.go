package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sales"

// column pairs a header with a spreadsheet width hint.
type column struct {
	title string
	width float64
}

var columns = []column{
	{"ID", 38},
	{"Date", 12},
	{"Time", 10},
	{"Product", 28},
	{"Category", 16},
	{"Type", 14},
	{"Quantity", 10},
	{"Unit Price", 12},
	{"Total", 12},
	{"Status", 12},
	{"Customer Name", 22},
	{"Customer Phone", 16},
	{"Customer Email", 24},
	{"Notes", 32},
}

func rowValues(s sale.Sale) []any {
	return []any{
		s.ID,
		s.CreatedAt.Format("2006-01-02"),
		s.CreatedAt.Format("15:04"),
		s.ProductName,
		s.Category,
		s.Type,
		s.Quantity,
		s.Price,
		s.Total,
		string(s.Status),
		s.CustomerName,
		s.CustomerPhone,
		s.CustomerEmail,
		s.Notes,
	}
}

// WriteXLSX renders the sales collection as a spreadsheet with the fixed
// column set and per-column width hints.
func WriteXLSX(w io.Writer, sales []sale.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, col.width); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col.title); err != nil {
			return err
		}
	}

	for rowIdx, s := range sales {
		for colIdx, v := range rowValues(s) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// WriteCSV renders the sales collection as delimited text with the same
// column set as the spreadsheet.
func WriteCSV(w io.Writer, sales []sale.Sale) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.title
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, s := range sales {
		row := make([]string, 0, len(columns))
		for _, v := range rowValues(s) {
			switch val := v.(type) {
			case string:
				row = append(row, val)
			case int:
				row = append(row, fmt.Sprintf("%d", val))
			case float64:
				row = append(row, fmt.Sprintf("%.2f", val))
			default:
				row = append(row, fmt.Sprint(val))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
