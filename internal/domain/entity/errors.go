package entity

import "errors"

// Entity validation errors
var (
	ErrEmptyCustomerName    = errors.New("customer name cannot be empty")
	ErrEmptyCustomerAddress = errors.New("customer address cannot be empty")
	ErrCustomerNameTooLong  = errors.New("customer name exceeds 255 characters")

	ErrEmptyProductName   = errors.New("product name cannot be empty")
	ErrProductNameTooLong = errors.New("product name exceeds 255 characters")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrNegativeUnitPrice  = errors.New("unit price cannot be negative")

	ErrInvalidInvoiceNumber = errors.New("invoice number must be greater than 0")
	ErrInvoiceHasNoItems    = errors.New("invoice must have at least one item")
	ErrInvoiceHasNoCustomer = errors.New("invoice must have a customer")
)
