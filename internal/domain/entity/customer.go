package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the column width shared by customer and product names.
const MaxNameLength = 255

// Customer is the buyer an invoice is issued to.
// Two customers are the same when name and address match exactly.
type Customer struct {
	ID        int64     `json:"customer_id"`
	Name      string    `json:"customer_name"`
	Address   string    `json:"customer_address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomer trims and validates name and address.
func NewCustomer(name, address string) (*Customer, error) {
	c := &Customer{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the customer fields.
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrEmptyCustomerName
	}
	if utf8.RuneCountInString(c.Name) > MaxNameLength {
		return fmt.Errorf("%w: %d characters", ErrCustomerNameTooLong, utf8.RuneCountInString(c.Name))
	}
	if c.Address == "" {
		return ErrEmptyCustomerAddress
	}
	return nil
}

// IsNew reports whether the customer has not been persisted yet.
func (c *Customer) IsNew() bool {
	return c.ID == 0
}

// IdentityKey returns the dedup key for the customer.
func (c *Customer) IdentityKey() string {
	return c.Name + "\x00" + c.Address
}
