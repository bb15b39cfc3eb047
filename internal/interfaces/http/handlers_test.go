package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/importer"
	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/application/service"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/garyjia/invoice-importer/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockImporter struct {
	importFunc   func(ctx context.Context, path string) (*importer.ImportResult, importer.Statistics, error)
	validateFunc func(ctx context.Context, path string) bool
	seenContent  string
}

func (m *mockImporter) ImportFile(ctx context.Context, path string) (*importer.ImportResult, importer.Statistics, error) {
	content, _ := os.ReadFile(path)
	m.seenContent = string(content)
	return m.importFunc(ctx, path)
}

func (m *mockImporter) ValidateFile(ctx context.Context, path string) bool {
	return m.validateFunc(ctx, path)
}

type mockQuery struct {
	invoices []*entity.Invoice
	filter   port.InvoiceFilter
}

func (m *mockQuery) ListInvoices(ctx context.Context, filter port.InvoiceFilter) ([]*entity.Invoice, error) {
	m.filter = filter
	return m.invoices, nil
}

func (m *mockQuery) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, service.ErrInvoiceNotFound
}

func (m *mockQuery) ListCustomers(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	return []*entity.Customer{{ID: 1, Name: "John Doe", Address: "123 Main St"}}, nil
}

func (m *mockQuery) GetDashboard(ctx context.Context) (*service.Dashboard, error) {
	return &service.Dashboard{TotalInvoices: int64(len(m.invoices)), TotalRevenue: decimal.RequireFromString("66.00")}, nil
}

type mockExport struct {
	service.ExportService
	format string
	filter port.InvoiceFilter
}

func (m *mockExport) ExportInvoices(ctx context.Context, format string, filter port.InvoiceFilter) ([]byte, error) {
	m.format, m.filter = format, filter
	return []byte("<export/>"), nil
}

func (m *mockExport) ExportCustomers(ctx context.Context, format string) ([]byte, error) {
	m.format = format
	return []byte("{}"), nil
}

func (m *mockExport) SupportedFormats() []string {
	return []string{"json", "xml", "excel"}
}

type testServer struct {
	server   *Server
	importer *mockImporter
	query    *mockQuery
	export   *mockExport
	uploads  string
	healthy  bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	customer := &entity.Customer{ID: 1, Name: "John Doe", Address: "123 Main St"}
	inv := entity.NewInvoice(1, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), customer)
	inv.ID = 1
	item, err := entity.NewInvoiceItem("Product A", decimal.NewFromInt(2), decimal.RequireFromString("25.50"))
	require.NoError(t, err)
	inv.AddItem(item)

	ts := &testServer{
		importer: &mockImporter{},
		query:    &mockQuery{invoices: []*entity.Invoice{inv}},
		export:   &mockExport{},
		uploads:  t.TempDir(),
		healthy:  true,
	}

	ts.server = NewServer(DefaultServerConfig(), Deps{
		Importer: ts.importer,
		Export:   ts.export,
		Query:    ts.query,
		Uploads:  storage.NewLocalFileStorage(ts.uploads, zap.NewNop()),
		Health: func() (bool, interface{}) {
			return ts.healthy, map[string]string{"database": "ok"}
		},
	}, &mockLogger{})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) Response {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return Response{Success: raw.Success, Error: raw.Error}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	resp := decode(t, w, &health)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", health.Status)

	ts.healthy = false
	w = ts.get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListInvoices(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get("/api/invoices?customer_id=1&start_date=2023-01-01&limit=5&offset=2")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items []service.InvoiceRecord `json:"items"`
		Count int                     `json:"count"`
		Limit int                     `json:"limit"`
	}
	decode(t, w, &page)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, json.Number("51.00"), page.Items[0].GrandTotal)

	assert.Equal(t, int64(1), ts.query.filter.CustomerID)
	assert.Equal(t, 2, ts.query.filter.Offset)
	require.NotNil(t, ts.query.filter.StartDate)

	w = ts.get("/api/invoices?customer_id=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.get("/api/invoices?limit=ten")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvoice(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get("/api/invoices/1")
	require.Equal(t, http.StatusOK, w.Code)
	var rec service.InvoiceRecord
	decode(t, w, &rec)
	assert.Equal(t, "2023-01-15", rec.InvoiceDate)

	assert.Equal(t, http.StatusNotFound, ts.get("/api/invoices/99").Code)
	assert.Equal(t, http.StatusBadRequest, ts.get("/api/invoices/x").Code)
}

func TestCustomersAndDashboard(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get("/api/customers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "John Doe")

	w = ts.get("/api/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		TotalInvoices int64  `json:"total_invoices"`
		TotalRevenue  string `json:"total_revenue"`
	}
	decode(t, w, &dash)
	assert.Equal(t, int64(1), dash.TotalInvoices)
	assert.Equal(t, "66", dash.TotalRevenue)
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)
	ts.importer.importFunc = func(ctx context.Context, path string) (*importer.ImportResult, importer.Statistics, error) {
		return &importer.ImportResult{
				RunID:        "run-1",
				SuccessCount: 1,
				ErrorCount:   1,
				Errors:       []string{"Invoice 3 processing failed: bad date"},
			}, importer.Statistics{
				TotalRows:         4,
				ProcessedRows:     3,
				SuccessfulImports: 1,
				FailedImports:     1,
			}, nil
	}

	w := ts.do(uploadRequest(t, "/api/import", "jan.csv", "invoice,date\n1,2023-01-15\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ImportResponse
	r := decode(t, w, &resp)
	assert.False(t, r.Success)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, 1, resp.ErrorCount)
	assert.Equal(t, 4, resp.Statistics.TotalRows)
	assert.Equal(t, "invoice,date\n1,2023-01-15\n", ts.importer.seenContent)

	entries, err := os.ReadDir(ts.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImport_Fatal(t *testing.T) {
	ts := newTestServer(t)
	ts.importer.importFunc = func(ctx context.Context, path string) (*importer.ImportResult, importer.Statistics, error) {
		return &importer.ImportResult{RunID: "run-2"}, importer.Statistics{}, importer.ErrEmptyOrUngroupable
	}

	w := ts.do(uploadRequest(t, "/api/import", "empty.xlsx", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	r := decode(t, w, nil)
	assert.Contains(t, r.Error, importer.ErrEmptyOrUngroupable.Error())
}

func TestImport_DryRun(t *testing.T) {
	ts := newTestServer(t)
	ts.importer.validateFunc = func(ctx context.Context, path string) bool { return true }

	w := ts.do(uploadRequest(t, "/api/import?dry_run=true", "jan.csv", "x"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ValidateResponse
	decode(t, w, &resp)
	assert.True(t, resp.DryRun)
	assert.True(t, resp.Valid)
}

func TestImport_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(uploadRequest(t, "/api/import", "notes.txt", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodPost, "/api/import", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(uploadRequest(t, "/api/import?dry_run=maybe", "jan.csv", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)

	w := ts.get("/api/export/invoices?format=XML&min_amount=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xml")
	assert.Equal(t, "<export/>", w.Body.String())
	assert.Equal(t, "xml", ts.export.format)
	require.NotNil(t, ts.export.filter.MinAmount)

	w = ts.get("/api/export/customers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "json", ts.export.format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "customers_")

	w = ts.get("/api/export/invoices?format=pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.get("/api/export/invoices?end_date=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodOptions, "/api/import", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
