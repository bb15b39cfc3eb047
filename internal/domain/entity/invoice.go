package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept for amounts.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Invoice is a customer invoice made of one or more line items.
// GrandTotal is always derived from the items.
type Invoice struct {
	ID            int64           `json:"invoice_id"`
	InvoiceNumber int64           `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	CustomerID    int64           `json:"customer_id"`
	Customer      *Customer       `json:"customer,omitempty"`
	Items         []*InvoiceItem  `json:"items"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewInvoice creates an invoice without items.
func NewInvoice(number int64, date time.Time, customer *Customer) *Invoice {
	inv := &Invoice{
		InvoiceNumber: number,
		InvoiceDate:   date,
		GrandTotal:    decimal.Zero,
	}
	inv.SetCustomer(customer)
	return inv
}

// SetCustomer attaches the customer and copies its ID.
func (i *Invoice) SetCustomer(c *Customer) {
	i.Customer = c
	if c != nil {
		i.CustomerID = c.ID
	}
}

// AddItem appends an item and recomputes the grand total.
func (i *Invoice) AddItem(item *InvoiceItem) {
	i.Items = append(i.Items, item)
	i.RecalculateGrandTotal()
}

// SetItems replaces all items and recomputes the grand total.
func (i *Invoice) SetItems(items []*InvoiceItem) {
	i.Items = items
	i.RecalculateGrandTotal()
}

// RemoveItem drops the item at index idx.
func (i *Invoice) RemoveItem(idx int) {
	if idx < 0 || idx >= len(i.Items) {
		return
	}
	i.Items = append(i.Items[:idx:idx], i.Items[idx+1:]...)
	i.RecalculateGrandTotal()
}

// RecalculateGrandTotal sums the item totals.
func (i *Invoice) RecalculateGrandTotal() {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.TotalPrice)
	}
	i.GrandTotal = RoundMoney(total)
}

// Validate checks the invoice-level invariants.
func (i *Invoice) Validate() error {
	if i.InvoiceNumber <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInvoiceNumber, i.InvoiceNumber)
	}
	if len(i.Items) == 0 {
		return ErrInvoiceHasNoItems
	}
	if i.Customer == nil {
		return ErrInvoiceHasNoCustomer
	}
	return nil
}

// InvoiceItem is a single product line on an invoice.
type InvoiceItem struct {
	ID          int64           `json:"item_id"`
	InvoiceID   int64           `json:"invoice_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewInvoiceItem validates the inputs and derives TotalPrice.
func NewInvoiceItem(productName string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, ErrEmptyProductName
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return nil, fmt.Errorf("%w: %d characters", ErrProductNameTooLong, n)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, quantity.String())
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeUnitPrice, unitPrice.String())
	}

	item := &InvoiceItem{
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	item.RecalculateTotal()
	return item, nil
}

// RecalculateTotal sets TotalPrice to quantity x unit price, rounded.
func (it *InvoiceItem) RecalculateTotal() {
	it.TotalPrice = RoundMoney(it.Quantity.Mul(it.UnitPrice))
}
