package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

// ParseTable decodes an uploaded byte stream into a Table, dispatching on
// the filename suffix: .xlsx is read as a spreadsheet, .tsv as tab-delimited
// text, anything else as comma-delimited text. The first row is taken as the
// header. A stream that cannot be decoded as the selected format yields a
// parse error, which the transport layer surfaces as a client fault.
func ParseTable(content []byte, filename string) (*domain.Table, error) {
	lower := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return parseExcel(content, filename)
	case strings.HasSuffix(lower, ".tsv"):
		return parseDelimited(content, filename, '\t')
	default:
		return parseDelimited(content, filename, ',')
	}
}

// parseDelimited reads comma- or tab-separated text. Rows are allowed to be
// ragged; short rows read as empty trailing cells downstream.
func parseDelimited(content []byte, filename string, sep rune) (*domain.Table, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParseError(
				fmt.Sprintf("failed to parse %q as delimited text", filename), err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, apperrors.NewParseError(
			fmt.Sprintf("file %q contains no data", filename), nil)
	}

	return tableFromRecords(records), nil
}

// parseExcel reads the first sheet of a spreadsheet workbook.
func parseExcel(content []byte, filename string) (*domain.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperrors.NewParseError(
			fmt.Sprintf("failed to open %q as a spreadsheet", filename), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParseError(
			fmt.Sprintf("spreadsheet %q has no sheets", filename), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParseError(
			fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParseError(
			fmt.Sprintf("file %q contains no data", filename), nil)
	}

	slog.Debug("parsed spreadsheet",
		slog.String("filename", filename),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)),
	)

	return tableFromRecords(rows), nil
}

// tableFromRecords splits raw records into header and data rows.
func tableFromRecords(records [][]string) *domain.Table {
	return &domain.Table{
		Columns: records[0],
		Rows:    records[1:],
	}
}
