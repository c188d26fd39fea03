package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ValidateDate requires an ISO "YYYY-MM-DD" calendar date.
func ValidateDate(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Required(field)
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", value)}
	}
	return nil
}

func (e Expense) Validate() error {
	if err := ValidateDate("data", e.Date); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return Required("categoria")
	}
	return nil
}

func (i Investment) Validate() error {
	return ValidateDate("data", i.Date)
}

func (r Revenue) Validate() error {
	return ValidateDate("data", r.Date)
}

func (p Product) Validate() error {
	if err := ValidateDate("data_add", p.DateAdded); err != nil {
		return err
	}
	if p.DateOnMarketplace != nil && *p.DateOnMarketplace != "" {
		if err := ValidateDate("data_amz", *p.DateOnMarketplace); err != nil {
			return err
		}
	}
	if strings.TrimSpace(p.Name) == "" {
		return Required("nome")
	}
	if p.StockQty < 0 {
		return &ValidationError{Field: "estoque", Reason: "must not be negative"}
	}
	if p.PurchasedQty < 0 {
		return &ValidationError{Field: "quantidade", Reason: "must not be negative"}
	}
	return nil
}

func (r AmazonReceipt) Validate() error {
	if err := ValidateDate("data", r.Date); err != nil {
		return err
	}
	if r.Quantity < 0 {
		return &ValidationError{Field: "quantidade", Reason: "must not be negative"}
	}
	return nil
}

func (b AmazonBalance) Validate() error {
	return ValidateDate("data", b.Date)
}
