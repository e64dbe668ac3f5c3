package dataprocessing

import (
	"strings"

	"bioreport/pkg/contracts/domain"
)

// Canonical column names the rest of the pipeline keys on.
const (
	ColumnGeneID = "gene_id"
	ColumnLog2FC = "log2fc"
	ColumnPValue = "pvalue"
	ColumnPAdj   = "padj"
)

// renameRule maps a set of header synonyms onto one canonical name. Rules
// are evaluated in order; within a rule, the first synonym present in the
// table wins and an already-canonical column is never overwritten.
type renameRule struct {
	Canonical string
	Synonyms  []string
}

// renameRules is the fixed synonym table for the column spellings seen in
// the wild (DESeq2, edgeR, limma exports and hand-edited spreadsheets).
var renameRules = []renameRule{
	{ColumnLog2FC, []string{"log2fc", "log2_fc", "logfc", "log_fold_change", "fold_change", "fc"}},
	{ColumnPValue, []string{"pvalue", "p_value", "pval", "p"}},
	{ColumnPAdj, []string{"padj", "p_adj", "adjusted_pvalue", "fdr", "adj_pval"}},
	{ColumnGeneID, []string{"gene_id", "gene", "gene_name", "geneid"}},
}

// reservedStatColumns is every spelling, canonical or synonym, that names a
// per-gene statistic rather than a sample expression column.
var reservedStatColumns = func() map[string]bool {
	m := make(map[string]bool)
	for _, rule := range renameRules {
		if rule.Canonical == ColumnGeneID {
			continue
		}
		m[rule.Canonical] = true
		for _, s := range rule.Synonyms {
			m[s] = true
		}
	}
	return m
}()

// IsReservedStatColumn reports whether a lower-cased column name refers to a
// per-gene statistic and therefore cannot be a sample expression column.
func IsReservedStatColumn(name string) bool {
	return reservedStatColumns[strings.ToLower(strings.TrimSpace(name))]
}

// NormalizeColumns returns a copy of the table with headers lower-cased,
// trimmed, and renamed onto canonical field names. Column order and unmapped
// columns are preserved unchanged; those are the candidate sample expression
// columns. The operation is idempotent and performs no validation.
func NormalizeColumns(t *domain.Table) *domain.Table {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = strings.ToLower(strings.TrimSpace(c))
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	for _, rule := range renameRules {
		if present[rule.Canonical] {
			continue
		}
		for _, syn := range rule.Synonyms {
			if !present[syn] {
				continue
			}
			for i, c := range columns {
				if c == syn {
					columns[i] = rule.Canonical
					break
				}
			}
			present[rule.Canonical] = true
			break
		}
	}

	return &domain.Table{Columns: columns, Rows: t.Rows}
}
