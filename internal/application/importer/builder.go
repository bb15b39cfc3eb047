package importer

import (
	"context"
	"fmt"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// totalsTolerance is the largest accepted gap between a source total and
// the recomputed one in strict mode
var totalsTolerance = decimal.RequireFromString("0.005")

// BuilderConfig holds the options that change how groups are interpreted
type BuilderConfig struct {
	Dates DateOptions
	// StrictTotals rejects groups whose line or grand total columns
	// disagree with the recomputed amounts
	StrictTotals bool
}

// BuildResult is the outcome of building one group. Err is nil on success
// and a *GroupError otherwise.
type BuildResult struct {
	Group           Group
	Customer        *entity.Customer
	Invoice         *entity.Invoice
	CustomerCreated bool
	Err             error
}

// OK reports whether the group produced a valid invoice
func (r BuildResult) OK() bool {
	return r.Err == nil
}

// Builder turns invoice groups into validated entities
type Builder struct {
	finder port.CustomerFinder
	cfg    BuilderConfig
}

// NewBuilder creates a Builder that resolves customers through finder
func NewBuilder(finder port.CustomerFinder, cfg BuilderConfig) *Builder {
	return &Builder{finder: finder, cfg: cfg}
}

// Build validates the group and assembles its customer, invoice and items.
// Only customer lookups touch storage.
func (b *Builder) Build(ctx context.Context, group Group) BuildResult {
	res := BuildResult{Group: group}
	fail := func(line int, err error) BuildResult {
		res.Err = &GroupError{InvoiceNumber: group.InvoiceNumber, Line: line, Err: err}
		res.Customer = nil
		res.Invoice = nil
		return res
	}

	if len(group.Rows) == 0 {
		return fail(0, fmt.Errorf("%w: %v", ErrValidation, entity.ErrInvoiceHasNoItems))
	}
	first := group.Rows[0]
	firstLine := group.FirstLine()

	candidate, err := entity.NewCustomer(
		CellString(first.Cell(entity.ColCustomerName)),
		CellString(first.Cell(entity.ColCustomerAddress)),
	)
	if err != nil {
		return fail(firstLine, fmt.Errorf("%w: line %d: %v", ErrValidation, firstLine, err))
	}

	date, err := NormalizeDate(first.Cell(entity.ColInvoiceDate), b.cfg.Dates)
	if err != nil {
		return fail(firstLine, fmt.Errorf("line %d: %w", firstLine, err))
	}

	customer, err := b.finder.FindCustomerByIdentity(ctx, candidate.Name, candidate.Address)
	if err != nil {
		return fail(firstLine, fmt.Errorf("%w: customer lookup: %v", ErrStorage, err))
	}
	if customer == nil {
		customer = candidate
		res.CustomerCreated = true
	}

	items := make([]*entity.InvoiceItem, 0, len(group.Rows))
	for i, row := range group.Rows {
		line := group.Lines[i]
		item, err := b.buildItem(row)
		if err != nil {
			return fail(line, fmt.Errorf("%w: line %d: %v", ErrValidation, line, err))
		}
		items = append(items, item)
	}

	invoice := entity.NewInvoice(group.InvoiceNumber, date, customer)
	invoice.SetItems(items)

	if err := invoice.Validate(); err != nil {
		return fail(firstLine, fmt.Errorf("%w: %v", ErrValidation, err))
	}

	if b.cfg.StrictTotals {
		if line, err := checkTotals(group, invoice); err != nil {
			return fail(line, fmt.Errorf("%w: line %d: %v", ErrValidation, line, err))
		}
	}

	res.Customer = customer
	res.Invoice = invoice
	return res
}

func (b *Builder) buildItem(row entity.Row) (*entity.InvoiceItem, error) {
	quantity, err := ParseDecimal(row.Cell(entity.ColQuantity))
	if err != nil {
		return nil, fmt.Errorf("quantity: %v", err)
	}
	unitPrice, err := ParseDecimal(row.Cell(entity.ColUnitPrice))
	if err != nil {
		return nil, fmt.Errorf("unit price: %v", err)
	}
	return entity.NewInvoiceItem(CellString(row.Cell(entity.ColProductName)), quantity, unitPrice)
}

// checkTotals compares source line and grand totals with the computed ones
func checkTotals(group Group, invoice *entity.Invoice) (int, error) {
	for i, row := range group.Rows {
		line := group.Lines[i]
		if want, ok := optionalDecimal(row.Cell(entity.ColLineTotal)); ok {
			got := invoice.Items[i].TotalPrice
			if got.Sub(want).Abs().GreaterThan(totalsTolerance) {
				return line, fmt.Errorf("line total %s does not match computed %s", want.String(), got.StringFixed(2))
			}
		}
		if want, ok := optionalDecimal(row.Cell(entity.ColGrandTotal)); ok {
			got := invoice.GrandTotal
			if got.Sub(want).Abs().GreaterThan(totalsTolerance) {
				return line, fmt.Errorf("grand total %s does not match computed %s", want.String(), got.StringFixed(2))
			}
		}
	}
	return 0, nil
}

func optionalDecimal(cell any) (decimal.Decimal, bool) {
	if IsEmptyCell(cell) {
		return decimal.Zero, false
	}
	d, err := ParseDecimal(cell)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
