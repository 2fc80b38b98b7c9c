// Package editor holds the editable state of one invoice or quote: its line
// items, its payments (invoices only) and the save, convert and payment flows
// that synchronise it with the service.
//
// Every local edit is synchronous. Network calls run on the caller's
// goroutine; while one is in flight the editor refuses to start another for
// the same document and returns ErrBusy.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rostved/sitebook/api"
)

type Kind string

const (
	KindInvoice Kind = "invoice"
	KindQuote   Kind = "quote"
)

func (k Kind) Title() string {
	if k == KindQuote {
		return "Quote"
	}
	return "Invoice"
}

type State int

const (
	StateLoading State = iota
	StateReady
	StateSaving
	StateConverting
	// StateFailed follows a failed load. Only Load leaves it.
	StateFailed
	// StateNavigatedAway follows a successful save or convert.
	StateNavigatedAway
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateConverting:
		return "converting"
	case StateFailed:
		return "failed"
	case StateNavigatedAway:
		return "navigated-away"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Field int

const (
	FieldDescription Field = iota
	FieldQty
	FieldUnitPrice
)

func (f Field) String() string {
	switch f {
	case FieldDescription:
		return "description"
	case FieldQty:
		return "qty"
	case FieldUnitPrice:
		return "unit_price"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField accepts the JSON names of the line item fields.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "description", "desc":
		return FieldDescription, nil
	case "qty", "quantity":
		return FieldQty, nil
	case "unit_price", "price", "unit-price":
		return FieldUnitPrice, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

var (
	ErrNotReady        = errors.New("document is not ready for editing")
	ErrBusy            = errors.New("another request for this document is in progress")
	ErrDiscarded       = errors.New("document was closed before the request finished")
	ErrNoValidLine     = errors.New("add at least one line with a description and a quantity above zero")
	ErrIndexOutOfRange = errors.New("line item index out of range")
	ErrUnknownField    = errors.New("unknown line item field")
	ErrInvalidNumber   = errors.New("not a number")
	ErrInvalidAmount   = errors.New("payment amount must be a number above zero")
	ErrInvoiceOnly     = errors.New("only invoices have payments")
	ErrQuoteOnly       = errors.New("only quotes can be converted")
	ErrUnknownPayment  = errors.New("no such payment")
	ErrNothingPending  = errors.New("nothing is waiting for confirmation")
	ErrNoJob           = errors.New("document is not linked to a job")
)

// Service is the part of the REST client the editor needs. *api.Client
// implements it.
type Service interface {
	FetchInvoice(id string) (*api.InvoiceDetail, error)
	UpdateInvoiceLineItems(id string, items []api.LineItem) error
	AddInvoicePayment(id string, in api.PaymentInput) error
	DeleteInvoicePayment(id, paymentID string) error
	FetchQuote(id string) (*api.QuoteDetail, error)
	UpdateQuoteLineItems(id string, items []api.LineItem) error
	ConvertQuote(id string) (*api.Invoice, error)
}

// Confirmation is a destructive action waiting for Confirm or Cancel.
type Confirmation struct {
	Prompt    string
	PaymentID string
}

type Editor struct {
	kind    Kind
	service Service
	nav     Navigator
	notify  Notifier

	mu       sync.Mutex
	id       string
	gen      uint64
	state    State
	busy     bool
	jobID    string
	number   int
	items    []api.LineItem
	payments []api.Payment
	amount   string
	note     string
	pending  *Confirmation
}

// New returns an editor for documents of the given kind. A nil navigator or
// notifier is replaced by one that does nothing.
func New(kind Kind, service Service, nav Navigator, notify Notifier) *Editor {
	if nav == nil {
		nav = NavigatorFunc(func(string, Tab) {})
	}
	if notify == nil {
		notify = NotifierFunc(func(Notice) {})
	}
	return &Editor{
		kind:    kind,
		service: service,
		nav:     nav,
		notify:  notify,
		state:   StateLoading,
	}
}

func (e *Editor) Kind() Kind { return e.kind }

func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether a network call for the document is in flight.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

func (e *Editor) JobID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.jobID
}

// Number is the document's sequence number, zero when the service did not
// send one.
func (e *Editor) Number() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.number
}

func (e *Editor) Items() []api.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]api.LineItem(nil), e.items...)
}

func (e *Editor) Payments() []api.Payment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]api.Payment(nil), e.payments...)
}

func (e *Editor) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeTotals(e.items, e.payments)
}

// CanSave reports whether Save would issue a request right now.
func (e *Editor) CanSave() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateReady && !e.busy && e.sendableLocked() == nil
}

func (e *Editor) PaymentDraft() (amount, note string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.amount, e.note
}

// Pending returns the confirmation waiting for an answer, if any.
func (e *Editor) Pending() (Confirmation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return Confirmation{}, false
	}
	return *e.pending, true
}

// Load fetches the document and replaces all local state with it. Loading a
// new id discards whatever was being edited before, including the result of
// a call still in flight for the old one.
func (e *Editor) Load(id string) error {
	e.mu.Lock()
	if e.busy && id == e.id {
		e.mu.Unlock()
		return ErrBusy
	}
	e.gen++
	gen := e.gen
	e.id = id
	e.state = StateLoading
	e.busy = true
	e.jobID = ""
	e.number = 0
	e.items = nil
	e.payments = nil
	e.amount, e.note = "", ""
	e.pending = nil
	e.mu.Unlock()

	var (
		jobID    string
		number   int
		items    []api.LineItem
		payments []api.Payment
		err      error
	)
	switch e.kind {
	case KindInvoice:
		var inv *api.InvoiceDetail
		if inv, err = e.service.FetchInvoice(id); err == nil {
			jobID, number, items, payments = inv.JobID, inv.InvoiceNumber, inv.LineItems, inv.Payments
		}
	case KindQuote:
		var q *api.QuoteDetail
		if q, err = e.service.FetchQuote(id); err == nil {
			jobID, number, items = q.JobID, q.QuoteNumber, q.LineItems
		}
	default:
		err = fmt.Errorf("unknown document kind %q", e.kind)
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrDiscarded
	}
	e.busy = false
	if err != nil {
		e.state = StateFailed
		e.mu.Unlock()
		err = fmt.Errorf("load %s %s: %w", e.kind, id, err)
		e.notify.Notify(Notice{Kind: NoticeLoad, Message: "Could not load " + string(e.kind), Err: err})
		return err
	}
	e.jobID = jobID
	e.number = number
	e.items = append([]api.LineItem{}, items...)
	e.payments = append([]api.Payment{}, payments...)
	e.state = StateReady
	e.mu.Unlock()
	return nil
}

// Close drops the document. A request still in flight completes, but its
// result is thrown away.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.state = StateClosed
	e.busy = false
	e.items = nil
	e.payments = nil
	e.pending = nil
}

func (e *Editor) editableLocked() error {
	if e.state != StateReady {
		return fmt.Errorf("%w (%s)", ErrNotReady, e.state)
	}
	return nil
}

// AddLineItem appends an empty line with quantity 1 and returns its index.
func (e *Editor) AddLineItem() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return 0, err
	}
	e.items = append(e.items, api.LineItem{
		Qty:       decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
	})
	return len(e.items) - 1, nil
}

// UpdateLineItem replaces one field of one line. Numeric fields take a
// decimal string; an empty string means zero.
func (e *Editor) UpdateLineItem(index int, field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(e.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	item := e.items[index]
	switch field {
	case FieldDescription:
		item.Description = value
	case FieldQty, FieldUnitPrice:
		n, err := parseNumber(value)
		if err != nil {
			return err
		}
		if field == FieldQty {
			item.Qty = n
		} else {
			item.UnitPrice = n
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	e.items[index] = item
	return nil
}

func parseNumber(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	n, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	return n, nil
}

// RemoveLineItem deletes one line; the rest keep their order.
func (e *Editor) RemoveLineItem(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(e.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	e.items = append(e.items[:index:index], e.items[index+1:]...)
	return nil
}

// beginLocked moves a Ready, idle editor into the given state and marks it busy.
func (e *Editor) beginLocked(next State) error {
	if e.busy || e.state == StateSaving || e.state == StateConverting {
		return ErrBusy
	}
	if err := e.editableLocked(); err != nil {
		return err
	}
	e.state = next
	e.busy = true
	return nil
}

// sendableLocked checks what save and convert need before any request.
func (e *Editor) sendableLocked() error {
	if !HasValidLine(e.items) {
		return ErrNoValidLine
	}
	if e.jobID == "" {
		return ErrNoJob
	}
	return nil
}

func (e *Editor) validationFailed(err error) error {
	e.notify.Notify(Notice{Kind: NoticeValidation, Message: capitalize(err.Error())})
	return err
}

// Save replaces the document's line items on the service with the local ones
// and then leaves for the parent job.
func (e *Editor) Save() error {
	e.mu.Lock()
	if err := e.beginLocked(StateSaving); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.sendableLocked(); err != nil {
		e.state = StateReady
		e.busy = false
		e.mu.Unlock()
		return e.validationFailed(err)
	}
	gen, id, jobID := e.gen, e.id, e.jobID
	items := append([]api.LineItem{}, e.items...)
	e.mu.Unlock()

	var err error
	tab := TabInvoices
	if e.kind == KindQuote {
		tab = TabQuotes
		err = e.service.UpdateQuoteLineItems(id, items)
	} else {
		err = e.service.UpdateInvoiceLineItems(id, items)
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrDiscarded
	}
	e.busy = false
	if err != nil {
		e.state = StateReady
		e.mu.Unlock()
		err = fmt.Errorf("save %s %s: %w", e.kind, id, err)
		e.notify.Notify(Notice{Kind: NoticeMutation, Message: "Could not save " + string(e.kind), Err: err})
		return err
	}
	e.state = StateNavigatedAway
	e.pending = nil
	e.mu.Unlock()

	e.nav.ToJob(jobID, tab)
	return nil
}

// Convert turns the quote into a new invoice on the service. Local edits that
// were not saved are not part of the conversion.
func (e *Editor) Convert() (*api.Invoice, error) {
	if e.kind != KindQuote {
		return nil, ErrQuoteOnly
	}
	e.mu.Lock()
	if err := e.beginLocked(StateConverting); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.sendableLocked(); err != nil {
		e.state = StateReady
		e.busy = false
		e.mu.Unlock()
		return nil, e.validationFailed(err)
	}
	gen, id, jobID := e.gen, e.id, e.jobID
	e.mu.Unlock()

	invoice, err := e.service.ConvertQuote(id)

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return nil, ErrDiscarded
	}
	e.busy = false
	if err != nil {
		e.state = StateReady
		e.mu.Unlock()
		err = fmt.Errorf("convert quote %s: %w", id, err)
		e.notify.Notify(Notice{Kind: NoticeMutation, Message: "Could not convert quote", Err: err})
		return nil, err
	}
	e.state = StateNavigatedAway
	e.pending = nil
	e.mu.Unlock()

	e.nav.ToJob(jobID, TabInvoices)
	return invoice, nil
}

// SetPaymentDraft stores the payment form fields without validating them.
func (e *Editor) SetPaymentDraft(amount, note string) error {
	if e.kind != KindInvoice {
		return ErrInvoiceOnly
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.amount, e.note = amount, note
	return nil
}

// AddPayment fills the payment draft and submits it.
func (e *Editor) AddPayment(amount, note string) error {
	if err := e.SetPaymentDraft(amount, note); err != nil {
		return err
	}
	return e.SubmitPayment()
}

// SubmitPayment records the drafted payment, then re-fetches the invoice to
// refresh the payment list. Line items being edited are left alone.
func (e *Editor) SubmitPayment() error {
	if e.kind != KindInvoice {
		return ErrInvoiceOnly
	}
	e.mu.Lock()
	if err := e.startPaymentLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	amount, err := parseAmount(e.amount)
	if err != nil {
		e.busy = false
		e.mu.Unlock()
		return e.validationFailed(err)
	}
	in := api.PaymentInput{Amount: amount, Note: strings.TrimSpace(e.note)}
	gen, id := e.gen, e.id
	e.mu.Unlock()

	if err := e.service.AddInvoicePayment(id, in); err != nil {
		return e.finishPayment(gen, fmt.Errorf("add payment to invoice %s: %w", id, err), "Could not add payment")
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrDiscarded
	}
	e.amount, e.note = "", ""
	e.mu.Unlock()
	return e.refreshPayments(gen, id, "Payment added")
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

func (e *Editor) startPaymentLocked() error {
	if e.busy || e.state == StateSaving || e.state == StateConverting {
		return ErrBusy
	}
	if err := e.editableLocked(); err != nil {
		return err
	}
	e.busy = true
	return nil
}

// finishPayment ends a failed payment call.
func (e *Editor) finishPayment(gen uint64, err error, message string) error {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrDiscarded
	}
	e.busy = false
	e.mu.Unlock()
	e.notify.Notify(Notice{Kind: NoticeMutation, Message: message, Err: err})
	return err
}

// refreshPayments re-fetches the invoice after a payment call succeeded and
// replaces the payment list. done is announced once the list is current.
func (e *Editor) refreshPayments(gen uint64, id, done string) error {
	inv, err := e.service.FetchInvoice(id)

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrDiscarded
	}
	e.busy = false
	if err != nil {
		e.mu.Unlock()
		err = fmt.Errorf("refresh invoice %s: %w", id, err)
		e.notify.Notify(Notice{Kind: NoticeLoad, Message: "Payment list could not be refreshed", Err: err})
		return err
	}
	e.payments = append([]api.Payment{}, inv.Payments...)
	e.mu.Unlock()
	e.notify.Notify(Notice{Kind: NoticeInfo, Message: done})
	return nil
}

// RequestDeletePayment asks for confirmation before a payment is deleted.
// Nothing is sent until Confirm.
func (e *Editor) RequestDeletePayment(paymentID string) error {
	if e.kind != KindInvoice {
		return ErrInvoiceOnly
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	found := false
	for _, p := range e.payments {
		if p.ID == paymentID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownPayment, paymentID)
	}
	e.pending = &Confirmation{Prompt: "Delete this payment?", PaymentID: paymentID}
	return nil
}

// Cancel drops the pending confirmation. It reports whether there was one.
func (e *Editor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	had := e.pending != nil
	e.pending = nil
	return had
}

// Confirm carries out the pending action.
func (e *Editor) Confirm() error {
	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return ErrNothingPending
	}
	if err := e.startPaymentLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	paymentID := e.pending.PaymentID
	e.pending = nil
	gen, id := e.gen, e.id
	e.mu.Unlock()

	if err := e.service.DeleteInvoicePayment(id, paymentID); err != nil {
		return e.finishPayment(gen, fmt.Errorf("delete payment %s: %w", paymentID, err), "Could not delete payment")
	}
	return e.refreshPayments(gen, id, "Payment deleted")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
