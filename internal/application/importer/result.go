package importer

import (
	"time"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
)

// ImportResult is the per-run outcome handed back to callers
type ImportResult struct {
	RunID            string            `json:"run_id"`
	SuccessCount     int               `json:"success_count"`
	ErrorCount       int               `json:"error_count"`
	Errors           []string          `json:"errors"`
	ImportedInvoices []*entity.Invoice `json:"imported_invoices"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
}

func newImportResult(runID string) *ImportResult {
	return &ImportResult{
		RunID:            runID,
		Errors:           []string{},
		ImportedInvoices: []*entity.Invoice{},
		StartedAt:        time.Now(),
	}
}

// IsSuccess reports whether no group failed
func (r *ImportResult) IsSuccess() bool {
	return r.ErrorCount == 0
}

// TotalProcessed is the number of groups attempted
func (r *ImportResult) TotalProcessed() int {
	return r.SuccessCount + r.ErrorCount
}

func (r *ImportResult) addSuccess(inv *entity.Invoice) {
	r.SuccessCount++
	r.ImportedInvoices = append(r.ImportedInvoices, inv)
}

func (r *ImportResult) addError(err error) {
	r.ErrorCount++
	r.Errors = append(r.Errors, err.Error())
}

// Statistics are the counters of one import run
type Statistics struct {
	TotalRows         int `json:"total_rows"`
	ProcessedRows     int `json:"processed_rows"`
	SuccessfulImports int `json:"successful_imports"`
	FailedImports     int `json:"failed_imports"`
	CustomersCreated  int `json:"customers_created"`
	InvoicesCreated   int `json:"invoices_created"`
}

// Map returns the counters keyed by their snake_case names
func (s Statistics) Map() map[string]int {
	return map[string]int{
		"total_rows":         s.TotalRows,
		"processed_rows":     s.ProcessedRows,
		"successful_imports": s.SuccessfulImports,
		"failed_imports":     s.FailedImports,
		"customers_created":  s.CustomersCreated,
		"invoices_created":   s.InvoicesCreated,
	}
}
