package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single spending transaction from a statement import.
type Transaction struct {
	Date         time.Time
	ID           string
	Name         string // Raw transaction description
	MerchantName string // Cleaned merchant name
	AccountID    string
	Hash         string
	Type         string // Transaction type (e.g., DEBIT, CHECK, PAYMENT, ATM)
	Amount       float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02T15:04"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsWeekend reports whether the transaction was posted on a Saturday or Sunday.
func (t *Transaction) IsWeekend() bool {
	day := t.Date.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// IsNight reports whether the transaction was posted between 22:00 and 04:59.
func (t *Transaction) IsNight() bool {
	hour := t.Date.Hour()
	return hour >= 22 || hour < 5
}

// CurrentTransaction is the single purchase being analyzed against a profile.
type CurrentTransaction struct {
	Amount float64 `json:"transaction_amount" yaml:"transaction_amount"`
	Hour   int     `json:"transaction_hour" yaml:"transaction_hour"`
}

// IsLateNight reports whether the purchase happened at or after 22:00.
func (c CurrentTransaction) IsLateNight() bool {
	return c.Hour >= 22
}
