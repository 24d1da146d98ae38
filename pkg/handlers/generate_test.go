package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/config"
	"github.com/fixtureforge/forge-engine/pkg/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Version: "test-version",
		Env:     "test",
		Generator: config.GeneratorConfig{
			OutputDir:      t.TempDir(),
			DownloadsDir:   t.TempDir(),
			MaxRecordCount: 100,
			MaxUploadBytes: 1 << 20,
		},
	}
}

func newGenerateHandler(t *testing.T, cfg *config.Config) *GenerateHandler {
	t.Helper()

	logger := zap.NewNop()
	driver := services.NewIngestionDriver(
		services.NewRecordSynthesizer(nil, logger),
		services.NewFileMaterializer(logger),
		services.NewArchiveBuilder(cfg.Generator.DownloadsDir, logger),
		nil,
		cfg.Generator.OutputDir,
		logger,
	)
	return NewGenerateHandler(driver, cfg, logger)
}

func multipartRequest(t *testing.T, filename, content, count string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if filename != "" {
		fw, err := mw.CreateFormFile("schema_file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if count != "" {
		require.NoError(t, mw.WriteField("count", count))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const customerDoc = `{
	"schemaKey": "Cust",
	"entityKey": "E1",
	"attributes": [
		{"name": "customer_id", "datatype": "INTEGER"},
		{"name": "name", "datatype": "STRING"}
	]
}`

func TestGenerate_Success(t *testing.T) {
	cfg := testConfig(t)
	handler := newGenerateHandler(t, cfg)

	req := multipartRequest(t, "customer.json", customerDoc, "2")
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response GenerateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

	assert.Equal(t, "success", response.Status)
	assert.Equal(t, "Generated 2 files", response.Message)
	assert.NotEmpty(t, response.JobID)
	assert.True(t, strings.HasPrefix(response.DownloadLink, "/download/generated_data_"), response.DownloadLink)
	assert.True(t, strings.HasSuffix(response.DownloadLink, ".zip"), response.DownloadLink)
}

func TestGenerate_NoFile(t *testing.T) {
	handler := newGenerateHandler(t, testConfig(t))

	req := multipartRequest(t, "", "", "2")
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_file")
}

func TestGenerate_InvalidCount(t *testing.T) {
	tests := []struct {
		name  string
		count string
	}{
		{"missing", ""},
		{"not a number", "many"},
		{"zero", "0"},
		{"negative", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newGenerateHandler(t, testConfig(t))

			req := multipartRequest(t, "customer.json", customerDoc, tt.count)
			rec := httptest.NewRecorder()

			handler.Generate(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid_count")
		})
	}
}

func TestGenerate_CountAboveLimit(t *testing.T) {
	handler := newGenerateHandler(t, testConfig(t))

	req := multipartRequest(t, "customer.json", customerDoc, "101")
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_count")
}

func TestGenerate_MalformedDocument(t *testing.T) {
	handler := newGenerateHandler(t, testConfig(t))

	req := multipartRequest(t, "broken.json", `{"attributes": [`, "1")
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_format")
}
