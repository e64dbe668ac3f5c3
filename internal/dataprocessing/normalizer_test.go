package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioreport/pkg/contracts/domain"
)

func TestNormalizeColumns(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "common DESeq2 spellings",
			in:   []string{"Gene", "log2FC", "padj"},
			want: []string{"gene_id", "log2fc", "padj"},
		},
		{
			name: "whitespace and casing",
			in:   []string{" GENE_NAME ", "Log_Fold_Change", "FDR"},
			want: []string{"gene_id", "log2fc", "padj"},
		},
		{
			name: "pvalue family",
			in:   []string{"geneid", "logFC", "P_Value"},
			want: []string{"gene_id", "log2fc", "pvalue"},
		},
		{
			name: "canonical column never overwritten",
			in:   []string{"log2fc", "fold_change", "pvalue"},
			want: []string{"log2fc", "fold_change", "pvalue"},
		},
		{
			name: "first synonym wins",
			in:   []string{"logfc", "fc", "pval"},
			want: []string{"log2fc", "fc", "pvalue"},
		},
		{
			name: "unmapped columns preserved in order",
			in:   []string{"gene", "log2fc", "padj", "Sample_1", "Sample_2"},
			want: []string{"gene_id", "log2fc", "padj", "sample_1", "sample_2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &domain.Table{Columns: tt.in}
			got := NormalizeColumns(table)
			assert.Equal(t, tt.want, got.Columns)
		})
	}
}

func TestNormalizeColumnsIdempotent(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"Gene", "log2FC", "FDR", "ctrl_1", "treat_1"},
		Rows:    [][]string{{"TP53", "2.5", "0.001", "10.2", "30.4"}},
	}

	once := NormalizeColumns(table)
	twice := NormalizeColumns(once)

	require.Equal(t, once.Columns, twice.Columns)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestNormalizeColumnsDoesNotTouchRows(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"Gene", "log2FC"},
		Rows:    [][]string{{"TP53", "2.5"}, {"BRCA1", "-1.8"}},
	}

	got := NormalizeColumns(table)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestIsReservedStatColumn(t *testing.T) {
	for _, name := range []string{"log2fc", "padj", "pvalue", "FDR", " adj_pval ", "fold_change", "fc", "p"} {
		assert.True(t, IsReservedStatColumn(name), name)
	}
	for _, name := range []string{"gene_id", "sample_1", "ctrl_rep2", "tpm"} {
		assert.False(t, IsReservedStatColumn(name), name)
	}
}
