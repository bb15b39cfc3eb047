package service

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// Format is an export encoding
type Format string

const (
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
	FormatExcel Format = "excel"
)

var supportedFormats = []Format{FormatJSON, FormatXML, FormatExcel}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// ParseFormat matches name case-insensitively against the supported formats
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range supportedFormats {
		if f == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContentType is the MIME type of the encoded export
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension is the file extension for the format, without the dot
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// CustomerRecord is the exported shape of a customer
type CustomerRecord struct {
	CustomerID      int64  `json:"customer_id" xml:"customer_id"`
	CustomerName    string `json:"customer_name" xml:"customer_name"`
	CustomerAddress string `json:"customer_address" xml:"customer_address"`
	CreatedAt       string `json:"created_at" xml:"created_at"`
	UpdatedAt       string `json:"updated_at" xml:"updated_at"`
}

// ItemRecord is the exported shape of an invoice line
type ItemRecord struct {
	ItemID      int64       `json:"item_id" xml:"item_id"`
	InvoiceID   int64       `json:"invoice_id" xml:"invoice_id"`
	ProductName string      `json:"product_name" xml:"product_name"`
	Quantity    json.Number `json:"quantity" xml:"quantity"`
	UnitPrice   json.Number `json:"unit_price" xml:"unit_price"`
	TotalPrice  json.Number `json:"total_price" xml:"total_price"`
	CreatedAt   string      `json:"created_at" xml:"created_at"`
	UpdatedAt   string      `json:"updated_at" xml:"updated_at"`
}

// InvoiceRecord is the exported shape of an invoice with its lines
type InvoiceRecord struct {
	InvoiceID     int64           `json:"invoice_id" xml:"invoice_id"`
	InvoiceNumber int64           `json:"invoice_number" xml:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date" xml:"invoice_date"`
	CustomerID    int64           `json:"customer_id" xml:"customer_id"`
	Customer      *CustomerRecord `json:"customer" xml:"customer,omitempty"`
	GrandTotal    json.Number     `json:"grand_total" xml:"grand_total"`
	Items         []ItemRecord    `json:"items" xml:"items>item"`
	CreatedAt     string          `json:"created_at" xml:"created_at"`
	UpdatedAt     string          `json:"updated_at" xml:"updated_at"`
}

// ToCustomerRecord converts a customer to its exported shape
func ToCustomerRecord(c *entity.Customer) CustomerRecord {
	return CustomerRecord{
		CustomerID:      c.ID,
		CustomerName:    c.Name,
		CustomerAddress: c.Address,
		CreatedAt:       formatTimestamp(c.CreatedAt),
		UpdatedAt:       formatTimestamp(c.UpdatedAt),
	}
}

// ToInvoiceRecord converts an invoice, with its customer and items when loaded
func ToInvoiceRecord(inv *entity.Invoice) InvoiceRecord {
	rec := InvoiceRecord{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate.Format(dateLayout),
		CustomerID:    inv.CustomerID,
		GrandTotal:    json.Number(inv.GrandTotal.StringFixed(2)),
		Items:         make([]ItemRecord, 0, len(inv.Items)),
		CreatedAt:     formatTimestamp(inv.CreatedAt),
		UpdatedAt:     formatTimestamp(inv.UpdatedAt),
	}
	if inv.Customer != nil {
		c := ToCustomerRecord(inv.Customer)
		rec.Customer = &c
	}
	for _, item := range inv.Items {
		rec.Items = append(rec.Items, ItemRecord{
			ItemID:      item.ID,
			InvoiceID:   item.InvoiceID,
			ProductName: item.ProductName,
			Quantity:    json.Number(item.Quantity.String()),
			UnitPrice:   json.Number(item.UnitPrice.StringFixed(2)),
			TotalPrice:  json.Number(item.TotalPrice.StringFixed(2)),
			CreatedAt:   formatTimestamp(item.CreatedAt),
			UpdatedAt:   formatTimestamp(item.UpdatedAt),
		})
	}
	return rec
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

type jsonEnvelope struct {
	ExportTimestamp string      `json:"export_timestamp"`
	TotalRecords    int         `json:"total_records"`
	Data            interface{} `json:"data"`
}

type xmlEnvelope struct {
	XMLName      xml.Name         `xml:"export"`
	Timestamp    string           `xml:"timestamp,attr"`
	TotalRecords int              `xml:"total_records,attr"`
	Invoices     []InvoiceRecord  `xml:"invoice"`
	Customers    []CustomerRecord `xml:"customer"`
}

func encodeJSON(ts time.Time, count int, data interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(jsonEnvelope{
		ExportTimestamp: ts.Format(timestampLayout),
		TotalRecords:    count,
		Data:            data,
	}, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return out, nil
}

func encodeXML(env xmlEnvelope) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("failed to encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// invoiceSheetHeader matches the import column layout so an export can be
// imported again
var invoiceSheetHeader = []interface{}{
	"Invoice Number", "Invoice Date", "Customer Name", "Customer Address",
	"Product Name", "Quantity", "Unit Price", "Total Price", "Grand Total",
}

var customerSheetHeader = []interface{}{
	"Customer ID", "Customer Name", "Customer Address", "Created At",
}

func encodeInvoicesExcel(invoices []*entity.Invoice) ([]byte, error) {
	var rows [][]interface{}
	for _, inv := range invoices {
		var name, address string
		if inv.Customer != nil {
			name, address = inv.Customer.Name, inv.Customer.Address
		}
		for _, item := range inv.Items {
			rows = append(rows, []interface{}{
				inv.InvoiceNumber,
				inv.InvoiceDate.Format(dateLayout),
				name,
				address,
				item.ProductName,
				item.Quantity.InexactFloat64(),
				item.UnitPrice.InexactFloat64(),
				item.TotalPrice.InexactFloat64(),
				inv.GrandTotal.InexactFloat64(),
			})
		}
	}
	return writeWorkbook("Invoices", invoiceSheetHeader, rows)
}

func encodeCustomersExcel(customers []*entity.Customer) ([]byte, error) {
	rows := make([][]interface{}, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []interface{}{c.ID, c.Name, c.Address, formatTimestamp(c.CreatedAt)})
	}
	return writeWorkbook("Customers", customerSheetHeader, rows)
}

func writeWorkbook(sheet string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	all := append([][]interface{}{header}, rows...)
	for i := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &all[i]); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
