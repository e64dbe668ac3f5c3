// Package dataprocessing handles the tabular half of the analysis pipeline:
// ingesting uploaded differential-expression tables, normalizing their
// loosely-controlled column headers, and classifying rows by statistical
// significance.
//
// # Architecture
//
// The package is organized into three components, applied in order:
//
// 1. Parser: decodes an uploaded byte stream (CSV, TSV, or XLSX) into a Table
// 2. Normalizer: maps arbitrary header spellings onto canonical field names
// 3. Classifier: labels every row Up/Down/NotSignificant and aggregates
//
// # Data Flow
//
//	Upload bytes → ParseTable → Table → NormalizeColumns → Classify → (Classification, AnalysisSummary)
//
// # Error Handling
//
// Parsing failures and missing required columns are client-input faults,
// returned as typed errors (see internal/errors) so the transport layer can
// answer with a 400-class response and no partial results. Normalization is
// purely structural and never fails; validation is deferred to the
// classifier, the first consumer with a required-field contract.
package dataprocessing
