package service

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvoiceNotFound   = errors.New("invoice not found")
)
