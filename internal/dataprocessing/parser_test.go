package dataprocessing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "bioreport/internal/errors"
)

func TestParseTableCSV(t *testing.T) {
	content := []byte("Gene,log2FC,padj\nTP53,2.5,0.001\nBRCA1,-1.8,0.02\n")

	table, err := ParseTable(content, "degs.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Gene", "log2FC", "padj"}, table.Columns)
	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, "TP53", table.Rows[0][0])
	assert.Equal(t, "-1.8", table.Rows[1][1])
}

func TestParseTableTSV(t *testing.T) {
	content := []byte("gene\tlog2fc\tpvalue\nMYC\t3.1\t0.0001\n")

	table, err := ParseTable(content, "degs.tsv")
	require.NoError(t, err)

	assert.Equal(t, []string{"gene", "log2fc", "pvalue"}, table.Columns)
	assert.Equal(t, 1, table.NumRows())
	assert.Equal(t, "3.1", table.Rows[0][1])
}

func TestParseTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"gene", "log2fc", "padj"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"EGFR", 1.7, 0.01}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ParseTable(buf.Bytes(), "degs.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{"gene", "log2fc", "padj"}, table.Columns)
	assert.Equal(t, 1, table.NumRows())
	assert.Equal(t, "EGFR", table.Rows[0][0])
}

func TestParseTableUnknownSuffixDefaultsToCSV(t *testing.T) {
	content := []byte("gene,log2fc,padj\nKRAS,2.0,0.03\n")

	table, err := ParseTable(content, "degs.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		filename string
	}{
		{"empty csv", nil, "empty.csv"},
		{"empty xlsx stream", nil, "empty.xlsx"},
		{"garbage xlsx", []byte("definitely not a zip archive"), "bad.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(tt.content, tt.filename)
			require.Error(t, err)
			assert.True(t, apperrors.IsClientFault(err), "parse failures must surface as client faults")
		})
	}
}

func TestParseTableRaggedRows(t *testing.T) {
	content := []byte("gene,log2fc,padj\nTP53,2.5\nBRCA1,-1.8,0.02,extra\n")

	table, err := ParseTable(content, "ragged.csv")
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())

	// Short rows read as empty cells, long rows keep their extras.
	assert.Equal(t, "", table.Cell(0, "padj"))
	assert.Equal(t, "0.02", table.Cell(1, "padj"))
}
