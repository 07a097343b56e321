package importer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// workbook is the read-only view the parser needs from either file format.
type workbook interface {
	SheetNames() []string
	Grid(sheet string) (*grid, error)
	Close() error
}

// grid holds a sheet's cell text by 0-based row and column, with trailing
// blank cells trimmed.
type grid struct {
	rows   [][]string
	isText func(row, col int) (bool, error)
}

type ooxmlWorkbook struct {
	f *excelize.File
}

func openOOXML(data []byte) (workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return &ooxmlWorkbook{f: f}, nil
}

func (w *ooxmlWorkbook) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *ooxmlWorkbook) Grid(sheet string) (*grid, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return &grid{
		rows: rows,
		isText: func(row, col int) (bool, error) {
			ref, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return false, err
			}
			typ, err := w.f.GetCellType(sheet, ref)
			if err != nil {
				return false, err
			}
			switch typ {
			case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
				return true, nil
			}
			return false, nil
		},
	}, nil
}

func (w *ooxmlWorkbook) Close() error {
	return w.f.Close()
}

// legacyWorkbook reads BIFF8 .xls files. The reader renders every cell as
// text, so a cell counts as text unless its value parses as a number.
type legacyWorkbook struct {
	names  []string
	sheets map[string]*xls.WorkSheet
}

func openLegacy(data []byte) (wb workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("%w: unreadable .xls workbook: %v", ErrUnsupportedFormat, r)
		}
	}()

	if !plausibleCFB(data) {
		return nil, fmt.Errorf("%w: malformed .xls container", ErrUnsupportedFormat)
	}

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if book == nil {
		return nil, fmt.Errorf("%w: no workbook stream in .xls container", ErrUnsupportedFormat)
	}

	lw := &legacyWorkbook{sheets: make(map[string]*xls.WorkSheet, book.NumSheets())}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		lw.names = append(lw.names, sheet.Name)
		lw.sheets[sheet.Name] = sheet
	}
	return lw, nil
}

func (w *legacyWorkbook) SheetNames() []string {
	return w.names
}

func (w *legacyWorkbook) Grid(sheet string) (g *grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("unreadable sheet: %v", r)
		}
	}()

	ws, ok := w.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %s does not exist", sheet)
	}

	rows := make([][]string, int(ws.MaxRow)+1)
	for i := range rows {
		row := ws.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol()+1)
		for col := range cells {
			cells[col] = row.Col(col)
		}
		rows[i] = trimTrailingBlanks(cells)
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}

	return &grid{
		rows: rows,
		isText: func(row, col int) (bool, error) {
			_, err := strconv.ParseFloat(strings.TrimSpace(cellAt(rows, row, col)), 64)
			return err != nil, nil
		},
	}, nil
}

func (w *legacyWorkbook) Close() error {
	return nil
}

// plausibleCFB checks the fixed fields of a compound file header: the byte
// order mark, a 512 or 4096 byte sector size and 64 byte mini sectors.
func plausibleCFB(data []byte) bool {
	if len(data) < 512 || !bytes.HasPrefix(data, cfbMagic) {
		return false
	}
	byteOrder := binary.LittleEndian.Uint16(data[28:30])
	sectorShift := binary.LittleEndian.Uint16(data[30:32])
	miniShift := binary.LittleEndian.Uint16(data[32:34])
	return byteOrder == 0xFFFE && (sectorShift == 9 || sectorShift == 12) && miniShift == 6
}

func trimTrailingBlanks(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
