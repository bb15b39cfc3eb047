package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/shopspring/decimal"
)

// ErrInvalidFilter is returned when a filter parameter cannot be parsed
var ErrInvalidFilter = errors.New("invalid filter")

// FilterParams are the raw, textual invoice filters accepted by the HTTP
// query string and the CLI flags. Empty fields are ignored.
type FilterParams struct {
	CustomerID string
	StartDate  string
	EndDate    string
	MinAmount  string
	MaxAmount  string
}

// ParseInvoiceFilter turns textual filter values into a port.InvoiceFilter.
// Dates use YYYY-MM-DD and both bounds are inclusive.
func ParseInvoiceFilter(p FilterParams) (port.InvoiceFilter, error) {
	var filter port.InvoiceFilter

	if s := strings.TrimSpace(p.CustomerID); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("%w: customer id %q", ErrInvalidFilter, p.CustomerID)
		}
		filter.CustomerID = id
	}

	var err error
	if filter.StartDate, err = parseFilterDate("start date", p.StartDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseFilterDate("end date", p.EndDate); err != nil {
		return filter, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, fmt.Errorf("%w: end date before start date", ErrInvalidFilter)
	}

	if filter.MinAmount, err = parseFilterAmount("min amount", p.MinAmount); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseFilterAmount("max amount", p.MaxAmount); err != nil {
		return filter, err
	}

	return filter, nil
}

func parseFilterDate(name, value string) (*time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q, want YYYY-MM-DD", ErrInvalidFilter, name, value)
	}
	return &t, nil
}

func parseFilterAmount(name, value string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidFilter, name, value)
	}
	return &d, nil
}
