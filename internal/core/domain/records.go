package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

const (
	OrderDraft     = "draft"
	OrderConfirmed = "confirmed"
	OrderFulfilled = "fulfilled"
	OrderInvoiced  = "invoiced"
	OrderCancelled = "cancelled"
)

// dueDateLayout is the backend's DateField format.
const dueDateLayout = "2006-01-02"

// InventoryItem is the subset of an inventory record needed for stock alerts.
type InventoryItem struct {
	ID                int64 `json:"id"`
	Product           int64 `json:"product"`
	Warehouse         int64 `json:"warehouse"`
	Quantity          int   `json:"quantity"`
	MinimumStockLevel int   `json:"minimum_stock_level"`
}

// BelowMinimum reports whether on-hand quantity is under the configured minimum.
func (i InventoryItem) BelowMinimum() bool {
	return i.Quantity < i.MinimumStockLevel
}

// Invoice is the subset of an invoice record needed for overdue detection.
type Invoice struct {
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
	DueDate       string `json:"due_date"`
	TotalAmount   Amount `json:"total_amount"`
}

// OverdueAt reports whether the invoice is still open and its due date lies
// strictly before now. A due date that cannot be parsed is never overdue.
func (inv Invoice) OverdueAt(now time.Time) bool {
	if inv.Status == InvoicePaid || inv.Status == InvoiceCancelled {
		return false
	}
	due, ok := parseDate(inv.DueDate)
	if !ok {
		return false
	}
	return due.Before(now)
}

// parseDate accepts a backend DateField or DateTimeField value.
func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dueDateLayout, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// recordDate returns the first of dates that parses.
func recordDate(dates ...string) (time.Time, bool) {
	for _, d := range dates {
		if d == "" {
			continue
		}
		return parseDate(d)
	}
	return time.Time{}, false
}

// SalesOrder is the subset of an order record needed for backlog alerts and
// sales reports.
type SalesOrder struct {
	ID           int64  `json:"id"`
	OrderNumber  string `json:"order_number"`
	Status       string `json:"status"`
	TotalAmount  Amount `json:"total_amount"`
	Customer     int64  `json:"customer"`
	CustomerName string `json:"customer_name"`
	OrderDate    string `json:"order_date"`
	CreatedAt    string `json:"created_at"`
}

// Date is the order date, falling back to the creation time.
func (o SalesOrder) Date() (time.Time, bool) {
	return recordDate(o.OrderDate, o.CreatedAt)
}

// Realized reports whether the order counts toward revenue.
func (o SalesOrder) Realized() bool {
	return o.Status == OrderFulfilled || o.Status == OrderInvoiced
}

// Pending reports whether the order still awaits fulfillment.
func (o SalesOrder) Pending() bool {
	return o.Status == OrderDraft || o.Status == OrderConfirmed
}

type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice Amount `json:"unit_price"`
}

type Warehouse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Account types of the chart of accounts.
const (
	AccountAsset     = "asset"
	AccountLiability = "liability"
	AccountEquity    = "equity"
	AccountRevenue   = "revenue"
	AccountExpense   = "expense"
)

const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"
)

type Account struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
}

// LedgerEntry is one posting of the general ledger.
type LedgerEntry struct {
	ID              int64  `json:"id"`
	Account         int64  `json:"account"`
	TransactionType string `json:"transaction_type"`
	Amount          Amount `json:"amount"`
	TransactionDate string `json:"transaction_date"`
	CreatedAt       string `json:"created_at"`
}

// Date is the transaction date, falling back to the creation time.
func (e LedgerEntry) Date() (time.Time, bool) {
	return recordDate(e.TransactionDate, e.CreatedAt)
}

// Signed returns the amount with the sign it carries on an account whose
// balance grows with the given side.
func (e LedgerEntry) Signed(normal string) float64 {
	if e.TransactionType == normal {
		return float64(e.Amount)
	}
	return -float64(e.Amount)
}

// Amount is a money value. The backend serializes decimals as strings; plain
// numbers and null are accepted too.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}
