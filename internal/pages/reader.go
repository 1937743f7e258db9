package pages

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	"git.home.luguber.info/inful/catalogbuilder/internal/foundation/errors"
)

// Options select the sheet and reader.
type Options struct {
	Sheet  string // first sheet when empty; xlsx only
	Format config.SheetFormat
}

// Load reads the spreadsheet at path. Any failure is a fatal input error.
func Load(path string, opts Options) (*Table, error) {
	format := opts.Format
	if format == "" || format == config.SheetFormatAuto {
		format = detectFormat(path)
	}

	var (
		records [][]string
		err     error
	)
	switch format {
	case config.SheetFormatCSV:
		records, err = readCSV(path)
	default:
		records, err = readXLSX(path, opts.Sheet)
	}
	if err != nil {
		return nil, errors.InputError("cannot load page spreadsheet").WithCause(err).
			WithContext("path", path).Build()
	}
	rows, err := parseRecords(records)
	if err != nil {
		return nil, errors.InputError("cannot load page spreadsheet").WithCause(err).
			WithContext("path", path).Build()
	}
	return NewTable(rows), nil
}

func detectFormat(path string) config.SheetFormat {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return config.SheetFormatCSV
	}
	return config.SheetFormatXLSX
}

func parseRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}
	idx := headerIndex(records[0])
	if _, ok := idx[ColPageID]; !ok {
		return nil, fmt.Errorf("missing required column %q", ColPageID)
	}
	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, fromRecord(i+2, idx, rec))
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet)
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	return ReadCSV(fh)
}

// ReadCSV reads all records from r, allowing ragged rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}
