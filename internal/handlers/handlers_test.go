package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"DR-SIGN/internal/apperr"
	"DR-SIGN/internal/models"
	"DR-SIGN/internal/repository"
	"DR-SIGN/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type fakeWorkflow struct {
	mu          sync.Mutex
	signedIP    string
	uploaded    []byte
	contentType string
	err         error
}

func (f *fakeWorkflow) RequestSignature(_ context.Context, contractID string) (*services.SignRequestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.SignRequestResult{
		Link:        &models.ContractSignLink{ID: "link-1", ContractID: contractID, Token: "tok"},
		URL:         "https://sign.example.com/sign/tok",
		EmailSentTo: "amina@example.com",
	}, nil
}

func (f *fakeWorkflow) ActiveSignLink(_ context.Context, contractID string) (*models.ContractSignLink, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &models.ContractSignLink{ID: "link-1", ContractID: contractID, Token: "tok"}, "https://sign.example.com/sign/tok", nil
}

func (f *fakeWorkflow) FetchByToken(_ context.Context, token string) (*models.ContractSignLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ContractSignLink{ID: "link-1", ContractID: "c-1", Token: token}, nil
}

func (f *fakeWorkflow) Sign(_ context.Context, _ string, ip string) (*models.Contract, error) {
	f.mu.Lock()
	f.signedIP = ip
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &models.Contract{ID: "c-1", Status: models.StatusSignedElectronically, SignatureIP: ip}, nil
}

func (f *fakeWorkflow) GenerateManually(_ context.Context, contractID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.example.com/contracts/" + contractID + "/signed.pdf", nil
}

func (f *fakeWorkflow) UploadSigned(_ context.Context, contractID string, data []byte, contentType string) (*models.Contract, error) {
	f.uploaded = data
	f.contentType = contentType
	if f.err != nil {
		return nil, f.err
	}
	return &models.Contract{ID: contractID, SignedPDFURL: "https://storage.example.com/uploaded.pdf"}, nil
}

type fakeExporter struct {
	organizationID string
}

func (e *fakeExporter) Export(_ context.Context, organizationID string) ([]byte, error) {
	e.organizationID = organizationID
	return []byte("PK-xlsx"), nil
}

type fakeTemplates struct {
	created  *services.TemplateInput
	createBy *string
	err      error
}

func (f *fakeTemplates) ValidateTemplate(content *string, _ *datatypes.JSON) error {
	if content == nil || strings.Contains(*content, "{{bad") {
		return apperr.Validation("unclosed placeholder")
	}
	return nil
}

func (f *fakeTemplates) CreateTemplate(_ context.Context, organizationID string, createdBy *string, in services.TemplateInput) (*models.ContractTemplate, error) {
	f.created = &in
	f.createBy = createdBy
	return &models.ContractTemplate{ID: "t-new", Name: in.Name, OrganizationID: &organizationID}, nil
}

func (f *fakeTemplates) GetTemplate(_ context.Context, _, id string) (*models.ContractTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ContractTemplate{ID: id}, nil
}

func (f *fakeTemplates) ListTemplates(context.Context, string) ([]models.ContractTemplate, error) {
	return []models.ContractTemplate{{ID: "a"}, {ID: "b"}}, nil
}

func (f *fakeTemplates) UpdateTemplate(_ context.Context, _, id string, _ services.TemplateInput) (*models.ContractTemplate, error) {
	return &models.ContractTemplate{ID: id, Version: 2}, nil
}

func (f *fakeTemplates) DuplicateTemplate(_ context.Context, _, id string, _ *string) (*models.ContractTemplate, error) {
	return &models.ContractTemplate{ID: id + "-copy"}, nil
}

func (f *fakeTemplates) DeleteTemplate(context.Context, string, string) error {
	return f.err
}

func (f *fakeTemplates) PreviewTemplate(context.Context, string, string) (string, error) {
	return "<p>CTR-EXEMPLE-001</p>", nil
}

func (f *fakeTemplates) Placeholders(context.Context, string, string) ([]string, error) {
	return []string{"contract_number"}, nil
}

type fakeLogReader struct {
	filter repository.ActivityLogFilter
}

func (r *fakeLogReader) ListLogs(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	r.filter = filter
	return []models.ActivityLog{
		{Method: "GET", Path: "/api/v1/templates", StatusCode: 200},
		{Method: "POST", Path: "/api/v1/contracts/:id/sign-link", StatusCode: 201},
		{Method: "GET", Path: "/api/v1/templates", StatusCode: 200},
	}, 2500, nil
}

type testServer struct {
	router    *gin.Engine
	workflow  *fakeWorkflow
	exporter  *fakeExporter
	templates *fakeTemplates
	logs      *fakeLogReader
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	s := &testServer{
		workflow:  &fakeWorkflow{},
		exporter:  &fakeExporter{},
		templates: &fakeTemplates{},
		logs:      &fakeLogReader{},
	}
	s.router = NewRouter(RouterConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		Contracts:    NewContractHandler(s.workflow, s.exporter, logger),
		SignLinks:    NewSignLinkHandler(s.workflow, logger),
		Templates:    NewTemplateHandler(s.templates, logger),
		Logs:         NewLogsHandler(s.logs, logger),
		Logger:       logger,
	})
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func staffRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(OrganizationHeader, "org-1")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStaffRoutesRequireOrganization(t *testing.T) {
	s := newTestServer()
	w := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/contracts/c-1/sign-link", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], OrganizationHeader)
}

func TestRequestSignLink(t *testing.T) {
	s := newTestServer()
	w := s.do(staffRequest(http.MethodPost, "/api/v1/contracts/c-1/sign-link", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://sign.example.com/sign/tok", body["link"])
	assert.Equal(t, "amina@example.com", body["emailSentTo"])
	assert.Equal(t, "c-1", body["data"].(map[string]any)["contract_id"])
}

func TestGetSignLinkNotFound(t *testing.T) {
	s := newTestServer()
	s.workflow.err = apperr.NotFound("sign link")

	w := s.do(staffRequest(http.MethodGet, "/api/v1/contracts/c-1/sign-link", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "sign link not found", decode(t, w)["error"])
}

func TestPublicSignLinkNeedsNoOrganization(t *testing.T) {
	s := newTestServer()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/sign-links/tok", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", decode(t, w)["data"].(map[string]any)["token"])

	s.workflow.err = apperr.Expired("sign link expired")
	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/sign-links/tok", nil))
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "sign link expired", decode(t, w)["error"])
}

func TestSignUsesForwardedClientIP(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sign-links/tok/sign", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.7", s.workflow.signedIP)
	body := decode(t, w)
	assert.Equal(t, "Contract signed successfully", body["message"])
}

func TestSignHidesInternalErrors(t *testing.T) {
	s := newTestServer()
	s.workflow.err = apperr.Storage("upload failed", errors.New("bucket gone"))

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/sign-links/tok/sign", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
	assert.NotContains(t, w.Body.String(), "bucket gone")
}

func TestSignerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name      string
		forwarded string
		remote    string
		want      string
	}{
		{"forwarded", "198.51.100.4", "10.0.0.1:5000", "198.51.100.4"},
		{"blank forwarded", " , 198.51.100.4", "192.0.2.1:1234", "192.0.2.1"},
		{"peer", "", "192.0.2.1:1234", "192.0.2.1"},
		{"peer without port", "", "192.0.2.9", "192.0.2.9"},
		{"nothing", "", "", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			c.Request.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				c.Request.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			assert.Equal(t, tc.want, signerIP(c))
		})
	}
}

func TestGeneratePDF(t *testing.T) {
	s := newTestServer()
	w := s.do(staffRequest(http.MethodPost, "/api/v1/contracts/c-9/generate-pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://storage.example.com/contracts/c-9/signed.pdf", decode(t, w)["link"])
}

func uploadRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="signed.pdf"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/c-1/upload-signed-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(OrganizationHeader, "org-1")
	return req
}

func TestUploadSignedPDF(t *testing.T) {
	s := newTestServer()
	pdf := []byte("%PDF-1.4\n%signed\n")

	w := s.do(uploadRequest(t, "file", "application/pdf", pdf))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdf, s.workflow.uploaded)
	assert.Equal(t, "application/pdf", s.workflow.contentType)
	assert.Equal(t, "https://storage.example.com/uploaded.pdf", decode(t, w)["link"])
}

func TestUploadSignedPDF_MissingFile(t *testing.T) {
	s := newTestServer()
	w := s.do(uploadRequest(t, "document", "application/pdf", []byte("%PDF-1.4")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decode(t, w)["error"])
	assert.Nil(t, s.workflow.uploaded)
}

func TestUploadSignedPDF_Rejected(t *testing.T) {
	s := newTestServer()
	s.workflow.err = apperr.Validation("file must be a PDF")

	w := s.do(uploadRequest(t, "file", "image/png", []byte("\x89PNG")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file must be a PDF", decode(t, w)["error"])
	assert.Equal(t, "image/png", s.workflow.contentType)
}

func TestExportSignatures(t *testing.T) {
	s := newTestServer()
	w := s.do(staffRequest(http.MethodGet, "/api/v1/contracts/signatures/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "org-1", s.exporter.organizationID)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"signatures_")
	assert.Equal(t, "PK-xlsx", w.Body.String())
}

func TestCreateTemplate(t *testing.T) {
	s := newTestServer()
	req := staffRequest(http.MethodPost, "/api/v1/templates", []byte(`{"name":"Location","contract_type_id":"type-1","content":"<p>{{contract_number}}</p>"}`))
	req.Header.Set(UserHeader, "user-7")

	w := s.do(req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, s.templates.created)
	assert.Equal(t, "Location", s.templates.created.Name)
	assert.Equal(t, "<p>{{contract_number}}</p>", *s.templates.created.Content)
	require.NotNil(t, s.templates.createBy)
	assert.Equal(t, "user-7", *s.templates.createBy)

	w = s.do(staffRequest(http.MethodPost, "/api/v1/templates", []byte(`{"name":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateTemplate(t *testing.T) {
	s := newTestServer()

	w := s.do(staffRequest(http.MethodPost, "/api/v1/templates/validate", []byte(`{"content":"<p>{{ok}}</p>"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["valid"])

	w = s.do(staffRequest(http.MethodPost, "/api/v1/templates/validate", []byte(`{"content":"{{bad"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unclosed placeholder", decode(t, w)["error"])
}

func TestTemplateRoutes(t *testing.T) {
	s := newTestServer()

	w := s.do(staffRequest(http.MethodGet, "/api/v1/templates", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])

	w = s.do(staffRequest(http.MethodPut, "/api/v1/templates/t1", []byte(`{"name":"B"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["data"].(map[string]any)["version"])

	w = s.do(staffRequest(http.MethodPost, "/api/v1/templates/t1/duplicate", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "t1-copy", decode(t, w)["data"].(map[string]any)["id"])

	w = s.do(staffRequest(http.MethodGet, "/api/v1/templates/t1/preview", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<p>CTR-EXEMPLE-001</p>", w.Body.String())

	w = s.do(staffRequest(http.MethodGet, "/api/v1/templates/t1/placeholders", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"contract_number"}, decode(t, w)["data"])

	s.templates.err = apperr.Conflict("template is used by 3 contract(s)")
	w = s.do(staffRequest(http.MethodDelete, "/api/v1/templates/t1", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "template is used by 3 contract(s)", decode(t, w)["error"])
}

func TestGetAllLogsPagination(t *testing.T) {
	s := newTestServer()

	w := s.do(staffRequest(http.MethodGet, "/api/v1/activity-logs?limit=5000&page=3&method=post", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.ActivityLogFilter{
		OrganizationID: "org-1",
		Method:         "post",
		Limit:          1000,
		Offset:         2000,
	}, s.logs.filter)

	body := decode(t, w)
	assert.EqualValues(t, 3, body["total_pages"])
	assert.EqualValues(t, 1000, body["limit"])

	s.do(staffRequest(http.MethodGet, "/api/v1/activity-logs?limit=abc&page=-2", nil))
	assert.Equal(t, 50, s.logs.filter.Limit)
	assert.Equal(t, 0, s.logs.filter.Offset)
}

func TestGetLogStats(t *testing.T) {
	s := newTestServer()
	w := s.do(staffRequest(http.MethodGet, "/api/v1/activity-logs/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.ActivityLogFilter{OrganizationID: "org-1"}, s.logs.filter)
	body := decode(t, w)
	assert.EqualValues(t, 2500, body["total_requests"])
	assert.EqualValues(t, 2, body["methods"].(map[string]any)["GET"])
	assert.EqualValues(t, 2, body["status_codes"].(map[string]any)["200"])
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) SweepExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 2, nil
}

func TestSignLinkCleanupService(t *testing.T) {
	sweeper := &countingSweeper{}
	svc := NewSignLinkCleanupService(sweeper, time.Hour, zap.NewNop())

	svc.Start()
	svc.Stop()

	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	assert.Equal(t, 1, sweeper.calls)
}
