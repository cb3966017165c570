package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/analysis"
	"github.com/joseph-ayodele/wildsync/internal/chat"
	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/ingest"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeUploader struct {
	got ingest.Request
	ctx context.Context
	err error
}

func (f *fakeUploader) Ingest(ctx context.Context, req ingest.Request) (*ingest.Result, error) {
	f.got, f.ctx = req, ctx
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.Result{ForestID: uuid.New(), Filename: req.Filename, Warnings: []string{}}, nil
}

type fakeAnalyzer struct {
	outcome *analysis.Outcome
	list    []*entity.Analysis
	err     error
}

func (f *fakeAnalyzer) Start(context.Context, uuid.UUID) (*analysis.Outcome, error) {
	return f.outcome, f.err
}

func (f *fakeAnalyzer) History(context.Context, uuid.UUID) ([]*entity.Analysis, error) {
	return f.list, f.err
}

type fakeExporter struct{ data []byte }

func (f fakeExporter) ExportAnalysesXLSX(context.Context, uuid.UUID) ([]byte, error) {
	return f.data, nil
}

type fakeAssistant struct{}

func (fakeAssistant) Ask(_ context.Context, q string, forestID *uuid.UUID) (*chat.Answer, error) {
	if strings.TrimSpace(q) == "" {
		return nil, common.InputRejected("message is required", nil)
	}
	return &chat.Answer{Reply: "echo: " + q, ForestID: forestID}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(context.Context, time.Duration) error { return f.err }

func newRouter(up *fakeUploader, an *fakeAnalyzer) *gin.Engine {
	return NewRouter(RouterConfig{
		Uploader:  up,
		Analyzer:  an,
		Exporter:  fakeExporter{data: []byte("PK")},
		Assistant: fakeAssistant{},
		DB:        fakePinger{},
		MaxBytes:  1 << 20,
		Logger:    zap.NewNop(),
	})
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestUpload_PassesFileAndActor(t *testing.T) {
	up := &fakeUploader{}
	r := newRouter(up, &fakeAnalyzer{})
	forestID := uuid.New()
	actor := uuid.New()

	body, ct := multipartBody(t, "survey.csv", "Trees\n1\n", map[string]string{"forest_id": forestID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(HeaderUserID, actor.String())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "survey.csv", up.got.Filename)
	assert.Equal(t, "Trees\n1\n", string(up.got.Data))
	require.NotNil(t, up.got.ForestID)
	assert.Equal(t, forestID, *up.got.ForestID)
	got, ok := common.ActorFromContext(up.ctx)
	require.True(t, ok)
	assert.Equal(t, actor, got)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "File processed successfully", resp["message"])
	assert.Equal(t, "survey.csv", resp["filename"])
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		header   string
		upErr    error
		status   int
		message  string
	}{
		{name: "missing file", status: http.StatusBadRequest, message: "No file part"},
		{name: "bad forest id", filename: "a.csv", fields: map[string]string{"forest_id": "nope"}, status: http.StatusBadRequest, message: "forest_id must be a UUID"},
		{name: "bad actor", filename: "a.csv", header: "nope", status: http.StatusBadRequest, message: "X-User-ID must be a UUID"},
		{name: "rejected", filename: "a.docx", upErr: common.InputRejected("Unsupported file type", common.ErrUnsupported), status: http.StatusBadRequest, message: "Unsupported file type"},
		{name: "not found", filename: "a.csv", upErr: common.NotFound("Forest not found"), status: http.StatusNotFound, message: "Forest not found"},
		{name: "persistence", filename: "a.csv", upErr: common.PersistenceFailure(errors.New("disk full")), status: http.StatusInternalServerError, message: common.PersistenceFailureMessage},
		{name: "unclassified", filename: "a.csv", upErr: errors.New("secret detail"), status: http.StatusInternalServerError, message: "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&fakeUploader{err: tt.upErr}, &fakeAnalyzer{})
			body, ct := multipartBody(t, tt.filename, "x", tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
			req.Header.Set("Content-Type", ct)
			if tt.header != "" {
				req.Header.Set(HeaderUserID, tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tt.message, e.Message)
			assert.NotContains(t, rec.Body.String(), "disk full")
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestStartAnalysis(t *testing.T) {
	forestID := uuid.New()
	body := `{"forest_id":"` + forestID.String() + `"}`

	t.Run("ok", func(t *testing.T) {
		an := &fakeAnalyzer{outcome: &analysis.Outcome{
			Status:   constants.AnalysisStatusOK,
			Analysis: &entity.Analysis{ForestID: forestID, RiskZones: entity.RiskZones{Overall: 0.8}},
		}}
		rec := httptest.NewRecorder()
		newRouter(&fakeUploader{}, an).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/start", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"overall":0.8`)
	})

	t.Run("insufficient", func(t *testing.T) {
		an := &fakeAnalyzer{outcome: &analysis.Outcome{
			Status:       constants.AnalysisStatusInsufficient,
			Completeness: analysis.CompletenessReport{Percent: 66, Missing: []string{"animal_data"}},
			Prompt:       analysis.InsufficientPrompt,
			Missing:      []string{"animal_data"},
		}}
		rec := httptest.NewRecorder()
		newRouter(&fakeUploader{}, an).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/start", strings.NewReader(body)))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"insufficient"`)
		assert.Contains(t, rec.Body.String(), analysis.InsufficientPrompt)
	})

	t.Run("missing id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(&fakeUploader{}, &fakeAnalyzer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/start", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "forest_id is required", decodeError(t, rec).Message)
	})

	t.Run("no data", func(t *testing.T) {
		an := &fakeAnalyzer{err: common.InputRejected("No data uploaded for this forest", nil)}
		rec := httptest.NewRecorder()
		newRouter(&fakeUploader{}, an).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/start", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListAndExportAnalyses(t *testing.T) {
	forestID := uuid.New()
	an := &fakeAnalyzer{list: []*entity.Analysis{{ForestID: forestID}}}
	r := newRouter(&fakeUploader{}, an)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forests/"+forestID.String()+"/analyses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ForestID uuid.UUID          `json:"forest_id"`
		Analyses []*entity.Analysis `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, forestID, resp.ForestID)
	assert.Len(t, resp.Analyses, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forests/"+forestID.String()+"/analyses/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), forestID.String())
	assert.Equal(t, "PK", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forests/not-a-uuid/analyses", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat(t *testing.T) {
	r := newRouter(&fakeUploader{}, &fakeAnalyzer{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"risk?"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echo: risk?")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":" "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message is required", decodeError(t, rec).Message)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeUploader{}, &fakeAnalyzer{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewRouter(RouterConfig{DB: fakePinger{err: errors.New("down")}})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	newRouter(&fakeUploader{}, &fakeAnalyzer{}).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}
