package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bioreport/internal/errors"
	"bioreport/internal/services"
	"bioreport/pkg/contracts/domain"
)

type stubResearchService struct {
	lastUpload *services.ResearchUpload
	resp       *domain.ResearchAnalyzeResponse
	err        error
}

func (s *stubResearchService) Analyze(ctx context.Context, upload *services.ResearchUpload) (*domain.ResearchAnalyzeResponse, error) {
	s.lastUpload = upload
	return s.resp, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newResearchHandler(svc ResearchServiceInterface) *ResearchHandler {
	logger := testLogger()
	return NewResearchHandler(svc, logger, apperrors.NewErrorHandler(logger), 1<<20)
}

// multipartBody builds a multipart request body from field/filename/content
// triples; an empty filename writes a plain form value instead.
func multipartBody(t *testing.T, parts map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for field, fc := range parts {
		if fc[0] == "" {
			require.NoError(t, mw.WriteField(field, fc[1]))
			continue
		}
		fw, err := mw.CreateFormFile(field, fc[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(fc[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestResearchAnalyzeHappyPath(t *testing.T) {
	svc := &stubResearchService{resp: &domain.ResearchAnalyzeResponse{
		ProjectName: "Demo",
		Plots:       []domain.Plot{{Name: "Volcano Plot", Type: "scatter"}},
	}}
	h := newResearchHandler(svc)

	body, contentType := multipartBody(t, map[string][2]string{
		"deg_file":        {"deg.csv", "gene_id,log2fc,pvalue\nG1,2.0,0.01\n"},
		"enrichment_file": {"enrichment.csv", "pathway,pvalue\nCell cycle,0.01\n"},
		"meta":            {"", `{"project_name":"Demo"}`},
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ResearchAnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Demo", resp.ProjectName)

	require.NotNil(t, svc.lastUpload)
	assert.Equal(t, "deg.csv", svc.lastUpload.DEGFilename)
	assert.Equal(t, "enrichment.csv", svc.lastUpload.EnrichmentFilename)
	assert.Equal(t, "Demo", svc.lastUpload.Meta.ProjectName)
}

func TestResearchAnalyzeRequiresDEGFile(t *testing.T) {
	h := newResearchHandler(&stubResearchService{})

	body, contentType := multipartBody(t, map[string][2]string{
		"enrichment_file": {"enrichment.csv", "pathway,pvalue\n"},
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "deg_file")
}

func TestResearchAnalyzeRejectsMalformedMeta(t *testing.T) {
	h := newResearchHandler(&stubResearchService{})

	body, contentType := multipartBody(t, map[string][2]string{
		"deg_file": {"deg.csv", "gene_id,log2fc,pvalue\n"},
		"meta":     {"", "not json"},
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResearchAnalyzeMapsClientFaults(t *testing.T) {
	svc := &stubResearchService{err: apperrors.NewSchemaError("table has no log2fc column")}
	h := newResearchHandler(svc)

	body, contentType := multipartBody(t, map[string][2]string{
		"deg_file": {"deg.csv", "gene_id,score\nG1,1\n"},
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apperrors.TypeDataSchema, problem["type"])
}

func TestResearchAnalyzeRejectsNonMultipart(t *testing.T) {
	h := newResearchHandler(&stubResearchService{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"deg_file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
