package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-importer/internal/application/importer"
	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/application/service"
	"github.com/garyjia/invoice-importer/internal/infrastructure/storage"
	"github.com/garyjia/invoice-importer/pkg/utils"
)

// Importer runs or dry-runs an import of a file on disk
type Importer interface {
	ImportFile(ctx context.Context, path string) (*importer.ImportResult, importer.Statistics, error)
	ValidateFile(ctx context.Context, path string) bool
}

// HealthFunc reports overall health and per-component details
type HealthFunc func() (healthy bool, components interface{})

// Deps are the application services the handlers call into
type Deps struct {
	Importer Importer
	Export   service.ExportService
	Query    service.InvoiceQueryService
	Uploads  port.FileStorage
	Health   HealthFunc
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	config ServerConfig
	deps   Deps
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(config ServerConfig, deps Deps, logger Logger) *Handlers {
	return &Handlers{
		config: config,
		deps:   deps,
		logger: logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// ImportResponse is the outcome of POST /api/import
type ImportResponse struct {
	RunID            string                  `json:"run_id"`
	SuccessCount     int                     `json:"success_count"`
	ErrorCount       int                     `json:"error_count"`
	Errors           []string                `json:"errors"`
	ImportedInvoices []service.InvoiceRecord `json:"imported_invoices"`
	Statistics       importer.Statistics     `json:"statistics"`
}

// ValidateResponse is the outcome of a dry run
type ValidateResponse struct {
	DryRun bool `json:"dry_run"`
	Valid  bool `json:"valid"`
}

// ListResponse wraps a page of records
type ListResponse struct {
	Items  interface{} `json:"items"`
	Count  int         `json:"count"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	healthy, components := true, interface{}(nil)
	if h.deps.Health != nil {
		healthy, components = h.deps.Health()
	}

	resp := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, Response{Success: healthy, Data: resp})
}

// Dashboard handles GET /api/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	dash, err := h.deps.Query.GetDashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", "error", err)
		fail(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: dash})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	filter, err := service.ParseInvoiceFilter(filterParams(c))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, offset, err := pageParams(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit, filter.Offset = limit, offset

	invoices, err := h.deps.Query.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list invoices", "error", err)
		fail(c, http.StatusInternalServerError, "failed to retrieve invoices")
		return
	}

	records := make([]service.InvoiceRecord, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, service.ToInvoiceRecord(inv))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ListResponse{Items: records, Count: len(records), Limit: limit, Offset: offset},
	})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	invoice, err := h.deps.Query.GetInvoice(c.Request.Context(), id)
	if errors.Is(err, service.ErrInvoiceNotFound) {
		fail(c, http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get invoice", "id", id, "error", err)
		fail(c, http.StatusInternalServerError, "failed to retrieve invoice")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: service.ToInvoiceRecord(invoice)})
}

// ListCustomers handles GET /api/customers
func (h *Handlers) ListCustomers(c *gin.Context) {
	limit, offset, err := pageParams(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	customers, err := h.deps.Query.ListCustomers(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list customers", "error", err)
		fail(c, http.StatusInternalServerError, "failed to retrieve customers")
		return
	}

	records := make([]service.CustomerRecord, 0, len(customers))
	for _, cust := range customers {
		records = append(records, service.ToCustomerRecord(cust))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ListResponse{Items: records, Count: len(records), Limit: limit, Offset: offset},
	})
}

// Import handles POST /api/import with a multipart "file" field.
// dry_run=true validates without writing.
func (h *Handlers) Import(c *gin.Context) {
	if h.config.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadSize)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		fail(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}

	if !importer.HasSupportedExtension(header.Filename) {
		fail(c, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q, want one of %v", header.Filename, importer.SupportedExtensions))
		return
	}

	dryRun, err := boolParam(c, "dry_run")
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	content, err := readUpload(header)
	if err != nil {
		h.logger.Error("Failed to read upload", "filename", header.Filename, "error", err)
		fail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	ctx := c.Request.Context()
	name := storage.UploadName(header.Filename)
	if err := h.deps.Uploads.Save(ctx, name, content); err != nil {
		h.logger.Error("Failed to store upload", "filename", header.Filename, "error", err)
		fail(c, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}
	defer func() {
		if err := h.deps.Uploads.Delete(context.Background(), name); err != nil {
			h.logger.Error("Failed to remove upload", "name", name, "error", err)
		}
	}()

	path := h.deps.Uploads.GetFullPath(name)

	if dryRun {
		valid := h.deps.Importer.ValidateFile(ctx, path)
		c.JSON(http.StatusOK, Response{Success: valid, Data: ValidateResponse{DryRun: true, Valid: valid}})
		return
	}

	result, stats, err := h.deps.Importer.ImportFile(ctx, path)
	resp := toImportResponse(result, stats)
	if err != nil {
		h.logger.Error("Import aborted", "filename", header.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Data: resp, Error: err.Error()})
		return
	}

	h.logger.Info("Import completed",
		"filename", header.Filename,
		"run_id", resp.RunID,
		"success_count", resp.SuccessCount,
		"error_count", resp.ErrorCount,
	)
	c.JSON(http.StatusOK, Response{Success: result.IsSuccess(), Data: resp})
}

// ExportInvoices handles GET /api/export/invoices
func (h *Handlers) ExportInvoices(c *gin.Context) {
	format, ok := h.formatParam(c)
	if !ok {
		return
	}

	filter, err := service.ParseInvoiceFilter(filterParams(c))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.deps.Export.ExportInvoices(c.Request.Context(), string(format), filter)
	if err != nil {
		h.logger.Error("Invoice export failed", "format", format, "error", err)
		fail(c, http.StatusInternalServerError, "export failed")
		return
	}

	sendExport(c, "invoices", format, out)
}

// ExportInvoice handles GET /api/export/invoices/:id
func (h *Handlers) ExportInvoice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	format, ok := h.formatParam(c)
	if !ok {
		return
	}

	out, err := h.deps.Export.ExportInvoice(c.Request.Context(), id, string(format))
	if errors.Is(err, service.ErrInvoiceNotFound) {
		fail(c, http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		h.logger.Error("Invoice export failed", "id", id, "format", format, "error", err)
		fail(c, http.StatusInternalServerError, "export failed")
		return
	}

	sendExport(c, fmt.Sprintf("invoice_%d", id), format, out)
}

// ExportCustomers handles GET /api/export/customers
func (h *Handlers) ExportCustomers(c *gin.Context) {
	format, ok := h.formatParam(c)
	if !ok {
		return
	}

	out, err := h.deps.Export.ExportCustomers(c.Request.Context(), string(format))
	if err != nil {
		h.logger.Error("Customer export failed", "format", format, "error", err)
		fail(c, http.StatusInternalServerError, "export failed")
		return
	}

	sendExport(c, "customers", format, out)
}

func (h *Handlers) formatParam(c *gin.Context) (service.Format, bool) {
	format, err := service.ParseFormat(c.DefaultQuery("format", h.config.ExportFormat))
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("%v, want one of %v", err, h.deps.Export.SupportedFormats()))
		return "", false
	}
	return format, true
}

func sendExport(c *gin.Context, base string, format service.Format, out []byte) {
	filename := fmt.Sprintf("%s_%s.%s", base, time.Now().Format("20060102_150405"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), out)
}

func toImportResponse(result *importer.ImportResult, stats importer.Statistics) ImportResponse {
	resp := ImportResponse{
		Errors:           []string{},
		ImportedInvoices: []service.InvoiceRecord{},
		Statistics:       stats,
	}
	if result == nil {
		return resp
	}

	resp.RunID = result.RunID
	resp.SuccessCount = result.SuccessCount
	resp.ErrorCount = result.ErrorCount
	resp.Errors = append(resp.Errors, result.Errors...)
	for _, inv := range result.ImportedInvoices {
		resp.ImportedInvoices = append(resp.ImportedInvoices, service.ToInvoiceRecord(inv))
	}
	return resp
}

func filterParams(c *gin.Context) service.FilterParams {
	return service.FilterParams{
		CustomerID: c.Query("customer_id"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		MinAmount:  c.Query("min_amount"),
		MaxAmount:  c.Query("max_amount"),
	}
}

func pageParams(c *gin.Context) (int, int, error) {
	limit, err := intParam(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	limit, offset = utils.NormalizePage(limit, offset)
	return limit, offset, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func boolParam(c *gin.Context, name string) (bool, error) {
	s := c.Query(name)
	if s == "" {
		s = c.PostForm(name)
	}
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid invoice ID")
		return 0, false
	}
	return id, true
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}
