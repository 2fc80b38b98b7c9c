package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type lineItemsBody struct {
	LineItems []LineItem `json:"line_items"`
}

func invoicePath(id string) string {
	return "/invoices/" + url.PathEscape(id)
}

func quotePath(id string) string {
	return "/quotes/" + url.PathEscape(id)
}

// Invoices

func (c *Client) Invoices(jobID string) ([]Invoice, error) {
	params := url.Values{}
	params.Set("jobId", jobID)

	var invoices []Invoice
	if err := c.Do(http.MethodGet, "/invoices", params, nil, &invoices); err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	return invoices, nil
}

func (c *Client) CreateInvoice(jobID string) (*Invoice, error) {
	body := map[string]any{
		"job_id":       jobID,
		"invoice_date": today(),
		"terms":        "COD",
		"line_items":   []LineItem{DefaultLineItem()},
	}
	var created Invoice
	if err := c.Do(http.MethodPost, "/invoices", nil, body, &created); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return &created, nil
}

func (c *Client) DeleteInvoice(id string) error {
	if err := c.Do(http.MethodDelete, invoicePath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", id, err)
	}
	return nil
}

func (c *Client) FetchInvoice(id string) (*InvoiceDetail, error) {
	var invoice InvoiceDetail
	if err := c.Do(http.MethodGet, invoicePath(id), nil, nil, &invoice); err != nil {
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", id, err)
	}
	return &invoice, nil
}

// UpdateInvoiceLineItems replaces every line item of the invoice.
func (c *Client) UpdateInvoiceLineItems(id string, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	if err := c.Do(http.MethodPut, invoicePath(id), nil, lineItemsBody{LineItems: items}, nil); err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", id, err)
	}
	return nil
}

func (c *Client) AddInvoicePayment(id string, in PaymentInput) error {
	if err := c.Do(http.MethodPost, invoicePath(id)+"/payments", nil, in, nil); err != nil {
		return fmt.Errorf("failed to add payment to invoice %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteInvoicePayment(id, paymentID string) error {
	endpoint := invoicePath(id) + "/payments/" + url.PathEscape(paymentID)
	if err := c.Do(http.MethodDelete, endpoint, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
	}
	return nil
}

func (c *Client) InvoicePDF(id string) (io.ReadCloser, error) {
	return c.GetPDF(invoicePath(id) + "/pdf")
}

// Quotes

func (c *Client) Quotes(jobID string) ([]Quote, error) {
	params := url.Values{}
	params.Set("jobId", jobID)

	var quotes []Quote
	if err := c.Do(http.MethodGet, "/quotes", params, nil, &quotes); err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return quotes, nil
}

func (c *Client) CreateQuote(jobID string) (*Quote, error) {
	body := map[string]any{
		"job_id":     jobID,
		"quote_date": today(),
		"line_items": []LineItem{DefaultLineItem()},
	}
	var created Quote
	if err := c.Do(http.MethodPost, "/quotes", nil, body, &created); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	return &created, nil
}

func (c *Client) DeleteQuote(id string) error {
	if err := c.Do(http.MethodDelete, quotePath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete quote %s: %w", id, err)
	}
	return nil
}

func (c *Client) FetchQuote(id string) (*QuoteDetail, error) {
	var quote QuoteDetail
	if err := c.Do(http.MethodGet, quotePath(id), nil, nil, &quote); err != nil {
		return nil, fmt.Errorf("failed to fetch quote %s: %w", id, err)
	}
	return &quote, nil
}

// UpdateQuoteLineItems replaces every line item of the quote.
func (c *Client) UpdateQuoteLineItems(id string, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	if err := c.Do(http.MethodPut, quotePath(id), nil, lineItemsBody{LineItems: items}, nil); err != nil {
		return fmt.Errorf("failed to save quote %s: %w", id, err)
	}
	return nil
}

// ConvertQuote turns the quote into a new invoice and returns it.
func (c *Client) ConvertQuote(id string) (*Invoice, error) {
	var invoice Invoice
	if err := c.Do(http.MethodPost, quotePath(id)+"/convert", nil, nil, &invoice); err != nil {
		return nil, fmt.Errorf("failed to convert quote %s: %w", id, err)
	}
	return &invoice, nil
}

func (c *Client) QuotePDF(id string) (io.ReadCloser, error) {
	return c.GetPDF(quotePath(id) + "/pdf")
}

// PDFFilename names a downloaded document after its sequence number, falling
// back to the id when the number is unknown.
func PDFFilename(kind string, number int, id string) string {
	if number > 0 {
		return fmt.Sprintf("%s-%d.pdf", kind, number)
	}
	return fmt.Sprintf("%s-%s.pdf", kind, id)
}
