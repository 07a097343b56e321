package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEncrypted is returned for password-protected OOXML workbooks.
	ErrEncrypted = errors.New("workbook is encrypted")
	// ErrUnsupportedFormat is returned for anything that is neither an .xlsx
	// nor a readable legacy .xls workbook.
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	// Compound File Binary header, used by legacy .xls and by encrypted .xlsx.
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Candidate is one task column that can become an item.
type Candidate struct {
	Sheet          string `json:"sheet"`
	Column         string `json:"column"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	DepartmentName string `json:"departmentName"`
	ManagerName    string `json:"managerName,omitempty"`
	ManagerEmail   string `json:"managerEmail,omitempty"`
}

// Result is the outcome of parsing one workbook.
type Result struct {
	Sheets     []string
	Candidates []Candidate
	Errors     []string
}

// Parser reads workbooks using a Layout.
type Parser struct {
	layout Layout
}

// NewParser builds a parser for layout.
func NewParser(layout Layout) *Parser {
	return &Parser{layout: layout}
}

// Parse reads the workbook in data. fileName tells an encrypted .xlsx apart
// from a legacy .xls, which share a container format. When sheets is
// non-empty only those sheets are read. Per-sheet failures are collected in
// Result.Errors and do not stop the remaining sheets.
func (p *Parser) Parse(data []byte, fileName string, sheets []string) (*Result, error) {
	wb, err := open(data, fileName)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	result := &Result{Sheets: wb.SheetNames()}
	for _, sheet := range p.selectSheets(result.Sheets, sheets) {
		candidates, err := p.parseSheet(wb, sheet)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		result.Candidates = append(result.Candidates, candidates...)
	}
	return result, nil
}

func open(data []byte, fileName string) (workbook, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return openOOXML(data)
	case bytes.HasPrefix(data, cfbMagic):
		if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
			return nil, ErrEncrypted
		}
		return openLegacy(data)
	}
	return nil, ErrUnsupportedFormat
}

func (p *Parser) selectSheets(all, wanted []string) []string {
	selected := make([]string, 0, len(all))
	if len(wanted) > 0 {
		want := make(map[string]struct{}, len(wanted))
		for _, name := range wanted {
			want[name] = struct{}{}
		}
		for _, name := range all {
			if _, ok := want[name]; ok {
				selected = append(selected, name)
			}
		}
		return selected
	}

	for _, name := range all {
		if !p.excluded(name) {
			selected = append(selected, name)
		}
	}
	return selected
}

func (p *Parser) excluded(sheet string) bool {
	for _, marker := range p.layout.ExcludedSheetMarkers {
		if strings.Contains(sheet, marker) {
			return true
		}
	}
	return false
}

func (p *Parser) parseSheet(wb workbook, sheet string) ([]Candidate, error) {
	g, err := wb.Grid(sheet)
	if err != nil {
		return nil, err
	}
	rows := g.rows
	if len(rows) < p.layout.MinRows {
		return nil, nil
	}

	taskField, ok := p.layout.field(KeyTaskName)
	if !ok {
		return nil, errors.New("layout has no task name row")
	}

	width := 0
	for _, field := range p.layout.Fields {
		if field.Row < len(rows) && len(rows[field.Row]) > width {
			width = len(rows[field.Row])
		}
	}

	var candidates []Candidate
	for col := p.layout.StartColumn; col < width; col++ {
		title := strings.TrimSpace(cellAt(rows, taskField.Row, col))
		if title == "" {
			continue
		}
		text, err := g.isText(taskField.Row, col)
		if err != nil {
			return nil, err
		}
		if !text {
			continue
		}

		colName, _ := excelize.ColumnNumberToName(col + 1)
		candidates = append(candidates, Candidate{
			Sheet:          sheet,
			Column:         colName,
			Title:          title,
			Description:    p.describe(rows, col),
			DepartmentName: p.departmentName(rows, col, sheet),
			ManagerName:    p.value(rows, KeyManagerName, col),
			ManagerEmail:   p.value(rows, KeyManagerEmail, col),
		})
	}
	return candidates, nil
}

func (p *Parser) describe(rows [][]string, col int) string {
	lines := make([]string, 0, len(p.layout.Description))
	for _, key := range p.layout.Description {
		field, ok := p.layout.field(key)
		if !ok {
			continue
		}
		if val := strings.TrimSpace(cellAt(rows, field.Row, col)); val != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s", field.Label, val))
		}
	}
	return strings.Join(lines, "\n")
}

// departmentName is the first line of the department cell, or the sheet name
// when that is blank.
func (p *Parser) departmentName(rows [][]string, col int, sheet string) string {
	raw := p.value(rows, KeyDepartment, col)
	if idx := strings.IndexAny(raw, "\r\n"); idx >= 0 {
		raw = raw[:idx]
	}
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}
	return sheet
}

func (p *Parser) value(rows [][]string, key string, col int) string {
	field, ok := p.layout.field(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellAt(rows, field.Row, col))
}

func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}
