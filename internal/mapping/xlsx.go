package mapping

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sheet names the mapping workbook must carry.
const (
	sheetTableMappings  = "TableMappings"
	sheetColumnMappings = "ColumnMappings"
)

// LoadWorkbook reads an .xlsx mapping workbook and returns the rule rows of
// its TableMappings and ColumnMappings sheets, keyed by the sheets' header
// row. Extra columns (change type, notes) are carried along and ignored by
// Build.
func LoadWorkbook(path string) (tableRows, columnRows []Record, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, nil, err
	}

	tableRows, err = wb.sheetRecords(sheetTableMappings)
	if err != nil {
		return nil, nil, err
	}
	columnRows, err = wb.sheetRecords(sheetColumnMappings)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("path", path).
		Int("tableRows", len(tableRows)).
		Int("columnRows", len(columnRows)).
		Msg("workbook loaded")
	return tableRows, columnRows, nil
}

// workbook is a minimal .xlsx reader: an .xlsx file is a zip of XML parts.
type workbook struct {
	reader        *zip.Reader
	sharedStrings []string
	sheetPaths    map[string]string // lowercased sheet name -> zip member path
}

type xlsxWorkbook struct {
	Sheets []xlsxSheetRef `xml:"sheets>sheet"`
}

type xlsxSheetRef struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"id,attr"`
}

type xlsxRels struct {
	Relationships []xlsxRel `xml:"Relationship"`
}

type xlsxRel struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

type xlsxSST struct {
	Strings []xlsxSI `xml:"si"`
}

type xlsxSI struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

type xlsxWorksheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref  string `xml:"r,attr"` // cell reference, e.g. B2
	Type string `xml:"t,attr"` // s = shared string
	V    string `xml:"v"`
	IS   string `xml:"is>t"` // inline string
}

func openWorkbook(data []byte) (*workbook, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{reader: reader}

	// Shared strings are optional; a workbook of inline strings has none.
	if raw, err := wb.readPart("xl/sharedStrings.xml"); err == nil {
		var sst xlsxSST
		if err := xml.Unmarshal(raw, &sst); err == nil {
			for _, si := range sst.Strings {
				if si.T != "" || len(si.Runs) == 0 {
					wb.sharedStrings = append(wb.sharedStrings, si.T)
					continue
				}
				var b strings.Builder
				for _, run := range si.Runs {
					b.WriteString(run.T)
				}
				wb.sharedStrings = append(wb.sharedStrings, b.String())
			}
		}
	}

	if err := wb.resolveSheets(); err != nil {
		return nil, err
	}
	return wb, nil
}

// resolveSheets maps sheet names to worksheet part paths via the workbook's
// relationship file.
func (wb *workbook) resolveSheets() error {
	raw, err := wb.readPart("xl/workbook.xml")
	if err != nil {
		return err
	}
	var book xlsxWorkbook
	if err := xml.Unmarshal(raw, &book); err != nil {
		return fmt.Errorf("parse workbook.xml: %w", err)
	}

	raw, err = wb.readPart("xl/_rels/workbook.xml.rels")
	if err != nil {
		return err
	}
	var rels xlsxRels
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return fmt.Errorf("parse workbook rels: %w", err)
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		target := strings.TrimPrefix(rel.Target, "/xl/")
		target = strings.TrimPrefix(target, "/")
		if !strings.HasPrefix(target, "xl/") {
			target = "xl/" + target
		}
		targets[rel.ID] = target
	}

	wb.sheetPaths = make(map[string]string, len(book.Sheets))
	for _, sheet := range book.Sheets {
		if target, ok := targets[sheet.RID]; ok {
			wb.sheetPaths[strings.ToLower(sheet.Name)] = target
		}
	}
	return nil
}

func (wb *workbook) readPart(name string) ([]byte, error) {
	for _, f := range wb.reader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s not found in workbook", name)
}

// sheetRecords reads a sheet and returns its data rows keyed by the header
// row. Rows shorter than the header leave the missing fields empty.
func (wb *workbook) sheetRecords(sheetName string) ([]Record, error) {
	path, ok := wb.sheetPaths[strings.ToLower(sheetName)]
	if !ok {
		return nil, fmt.Errorf("workbook has no sheet named %q", sheetName)
	}
	raw, err := wb.readPart(path)
	if err != nil {
		return nil, err
	}
	var ws xlsxWorksheet
	if err := xml.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("parse sheet %q: %w", sheetName, err)
	}

	var header []string
	var records []Record
	for i, row := range ws.Rows {
		cells := wb.rowValues(row)
		if i == 0 {
			header = make([]string, len(cells))
			for j, h := range cells {
				header[j] = strings.TrimSpace(h)
			}
			continue
		}
		rec := make(Record, len(header))
		for j, field := range header {
			if field == "" {
				continue
			}
			if j < len(cells) {
				rec[field] = cells[j]
			} else {
				rec[field] = ""
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

// rowValues expands a sparse worksheet row into a dense cell slice, placing
// each value at the column index its cell reference names.
func (wb *workbook) rowValues(row xlsxRow) []string {
	var values []string
	for _, cell := range row.Cells {
		idx := columnIndex(cell.Ref)
		for len(values) <= idx {
			values = append(values, "")
		}
		values[idx] = wb.cellValue(cell)
	}
	return values
}

func (wb *workbook) cellValue(cell xlsxCell) string {
	switch cell.Type {
	case "s":
		var i int
		if _, err := fmt.Sscanf(cell.V, "%d", &i); err == nil && i >= 0 && i < len(wb.sharedStrings) {
			return wb.sharedStrings[i]
		}
		return ""
	case "inlineStr":
		return cell.IS
	default:
		return cell.V
	}
}

// columnIndex converts the letter part of a cell reference (B2 -> B) into a
// zero-based column index.
func columnIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		ch := ref[i]
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A') + 1
	}
	if idx == 0 {
		return 0
	}
	return idx - 1
}
