package domain

import "fmt"

// CreditCategory tags a ledger entry with its cause
type CreditCategory string

const (
	CategoryVerifiedEmail CreditCategory = "VERIFIED_EMAIL"
	CategoryVerifiedList  CreditCategory = "VERIFIED_LIST"
	CategoryPurchase      CreditCategory = "PURCHASE"
)

// Charge describes a credit deduction to apply
type Charge struct {
	UserID   string
	Amount   int64
	Reason   string
	Category CreditCategory
}

func ListChargeReason(listName string) string {
	return fmt.Sprintf("Used In Verifying %q List", listName)
}

func EmailChargeReason(email string) string {
	return "Used In Verifying Email: " + email
}
