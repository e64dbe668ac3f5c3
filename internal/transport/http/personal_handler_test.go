package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

func newPersonalHandler() *PersonalHandler {
	logger := testLogger()
	return NewPersonalHandler(logger, apperrors.NewErrorHandler(logger))
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPersonalAnalyze(t *testing.T) {
	h := newPersonalHandler()

	rec := postJSON(t, h.Routes(), "/analyze", domain.PersonalAnalyzeRequest{
		SNPs: []domain.SNPInput{
			{RSID: "rs762551", Genotype: "AA"},
			{RSID: "rs4988235", Genotype: "CC"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.PersonalAnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Cards, 2)
	assert.NotEmpty(t, resp.PeerComparison)
	assert.NotEmpty(t, resp.GeneticCard.Title)
}

func TestPersonalAnalyzeRequiresSNPs(t *testing.T) {
	h := newPersonalHandler()

	rec := postJSON(t, h.Routes(), "/analyze", domain.PersonalAnalyzeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersonalAnalyzeRejectsInvalidJSON(t *testing.T) {
	h := newPersonalHandler()

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
