package api

import "github.com/shopspring/decimal"

// Customer is one of the contractor's clients. The name Client is taken by
// the HTTP client in this package.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type CustomerInput struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type JobStatus string

const (
	JobOpen      JobStatus = "OPEN"
	JobCompleted JobStatus = "COMPLETED"
)

// Toggle returns the status a job moves to when its status is flipped.
func (s JobStatus) Toggle() JobStatus {
	if s == JobOpen {
		return JobCompleted
	}
	return JobOpen
}

type Job struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartDate   string    `json:"start_date"`
	Status      JobStatus `json:"status"`
	CreatedAt   string    `json:"created_at"`
}

type JobDetail struct {
	Job
	ClientName string `json:"client_name"`
}

type JobInput struct {
	ClientID    string
	Title       string
	Description string
}

// JobOverview is the per-job money summary computed by the service.
type JobOverview struct {
	TotalInvoiced decimal.Decimal `json:"totalInvoiced"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	TotalQuoted   decimal.Decimal `json:"totalQuoted"`
	QuotesCount   int             `json:"quotesCount"`
}

type DashboardSummary struct {
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	QuotedPipeline     decimal.Decimal `json:"quotedPipeline"`
	QuotesCount        int             `json:"quotesCount"`
}

// LineItem is one row of an invoice or quote.
type LineItem struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type Payment struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Note        string          `json:"note,omitempty"`
}

type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// Invoice is the list representation of an invoice.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber int             `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     string          `json:"created_at"`
}

// InvoiceDetail is the editable representation returned by GET /invoices/{id}.
type InvoiceDetail struct {
	ID            string     `json:"id"`
	InvoiceNumber int        `json:"invoice_number,omitempty"`
	JobID         string     `json:"job_id"`
	LineItems     []LineItem `json:"line_items"`
	Payments      []Payment  `json:"payments,omitempty"`
}

type Quote struct {
	ID          string `json:"id"`
	QuoteNumber int    `json:"quote_number"`
	CreatedAt   string `json:"created_at"`
}

type QuoteDetail struct {
	ID          string     `json:"id"`
	QuoteNumber int        `json:"quote_number,omitempty"`
	JobID       string     `json:"job_id"`
	LineItems   []LineItem `json:"line_items"`
}

// DefaultLineItem is the single line new invoices and quotes are created with.
func DefaultLineItem() LineItem {
	return LineItem{
		Description: "Labour",
		Qty:         decimal.NewFromInt(1),
		UnitPrice:   decimal.Zero,
	}
}
