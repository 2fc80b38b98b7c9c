package editor_test

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
	"github.com/rostved/sitebook/internal/apitest"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(desc, qty, price string) api.LineItem {
	return api.LineItem{Description: desc, Qty: dec(qty), UnitPrice: dec(price)}
}

// recorder collects notices and navigations.
type recorder struct {
	mu      sync.Mutex
	notices []editor.Notice
	jobs    []string
	tabs    []editor.Tab
}

func (r *recorder) Notify(n editor.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) ToJob(jobID string, tab editor.Tab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, jobID)
	r.tabs = append(r.tabs, tab)
}

func (r *recorder) kinds() []editor.NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []editor.NoticeKind
	for _, n := range r.notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (r *recorder) navigations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func open(t *testing.T, srv *apitest.Server, kind editor.Kind, id string) (*editor.Editor, *recorder) {
	t.Helper()
	rec := &recorder{}
	ed := editor.New(kind, srv.Client(), rec, rec)
	if err := ed.Load(id); err != nil {
		t.Fatalf("Load(%s): %v", id, err)
	}
	return ed, rec
}

func TestLoad(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "2", "125")}, api.Payment{ID: "p1", Amount: dec("50")})

	ed, _ := open(t, srv, editor.KindInvoice, inv.ID)
	if ed.State() != editor.StateReady {
		t.Errorf("State = %s, want ready", ed.State())
	}
	if ed.JobID() != "job-1" || ed.Number() != inv.InvoiceNumber {
		t.Errorf("JobID, Number = %s, %d", ed.JobID(), ed.Number())
	}
	totals := ed.Totals()
	if !totals.Total.Equal(dec("250")) || !totals.Paid.Equal(dec("50")) || !totals.Outstanding.Equal(dec("200")) {
		t.Errorf("Totals = %+v", totals)
	}
}

func TestLoadFailure(t *testing.T) {
	srv := apitest.New(t)
	rec := &recorder{}
	ed := editor.New(editor.KindInvoice, srv.Client(), rec, rec)

	err := ed.Load("missing")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("Load(missing) = %v, want ErrNotFound", err)
	}
	if ed.State() != editor.StateFailed {
		t.Errorf("State = %s, want failed", ed.State())
	}
	if got := rec.kinds(); len(got) != 1 || got[0] != editor.NoticeLoad {
		t.Errorf("notices = %v, want [load]", got)
	}
	if _, err := ed.AddLineItem(); !errors.Is(err, editor.ErrNotReady) {
		t.Errorf("AddLineItem after failed load = %v, want ErrNotReady", err)
	}

	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "10")})
	if err := ed.Load(inv.ID); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if ed.State() != editor.StateReady {
		t.Errorf("State after reload = %s, want ready", ed.State())
	}
}

func TestSaveWithoutValidLineIssuesNoRequest(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("", "1", "10")})
	ed, rec := open(t, srv, editor.KindInvoice, inv.ID)

	if ed.CanSave() {
		t.Error("CanSave = true with no valid line")
	}
	if err := ed.Save(); !errors.Is(err, editor.ErrNoValidLine) {
		t.Fatalf("Save = %v, want ErrNoValidLine", err)
	}
	if n := srv.CallsTo(http.MethodPut, "/invoices/"+inv.ID); n != 0 {
		t.Errorf("PUT calls = %d, want 0", n)
	}
	if got := rec.kinds(); len(got) != 1 || got[0] != editor.NoticeValidation {
		t.Errorf("notices = %v, want [validation]", got)
	}
	if ed.State() != editor.StateReady || ed.Busy() {
		t.Errorf("State, Busy = %s, %v, want ready, false", ed.State(), ed.Busy())
	}
}

func TestRemoveOnlyLineThenSave(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-1", []api.LineItem{item("Labour", "1", "0")})
	ed, rec := open(t, srv, editor.KindQuote, q.ID)

	if err := ed.RemoveLineItem(0); err != nil {
		t.Fatal(err)
	}
	if err := ed.Save(); !errors.Is(err, editor.ErrNoValidLine) {
		t.Fatalf("Save = %v, want ErrNoValidLine", err)
	}
	if n := srv.CallsTo(http.MethodPut, "/quotes/"+q.ID); n != 0 {
		t.Errorf("PUT calls = %d, want 0", n)
	}
	if rec.navigations() != 0 {
		t.Error("navigated after rejected save")
	}
}

func TestRemoveLineKeepsOrder(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-1", []api.LineItem{item("A", "1", "1"), item("B", "1", "2"), item("C", "1", "3")})
	ed, _ := open(t, srv, editor.KindQuote, q.ID)

	if err := ed.RemoveLineItem(1); err != nil {
		t.Fatal(err)
	}
	items := ed.Items()
	if len(items) != 2 || items[0].Description != "A" || items[1].Description != "C" {
		t.Errorf("items = %+v, want [A C]", items)
	}
	if err := ed.RemoveLineItem(2); !errors.Is(err, editor.ErrIndexOutOfRange) {
		t.Errorf("RemoveLineItem(2) = %v, want ErrIndexOutOfRange", err)
	}
}

func TestUpdateLineItem(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-1", []api.LineItem{item("Labour", "1", "0")})
	ed, _ := open(t, srv, editor.KindQuote, q.ID)

	i, err := ed.AddLineItem()
	if err != nil || i != 1 {
		t.Fatalf("AddLineItem = %d, %v", i, err)
	}
	if err := ed.UpdateLineItem(i, editor.FieldDescription, "Paint"); err != nil {
		t.Fatal(err)
	}
	if err := ed.UpdateLineItem(i, editor.FieldQty, "3"); err != nil {
		t.Fatal(err)
	}
	if err := ed.UpdateLineItem(i, editor.FieldUnitPrice, "0.335"); err != nil {
		t.Fatal(err)
	}
	if err := ed.UpdateLineItem(i, editor.FieldUnitPrice, "abc"); !errors.Is(err, editor.ErrInvalidNumber) {
		t.Errorf("UpdateLineItem(abc) = %v, want ErrInvalidNumber", err)
	}
	if got := ed.Totals().Total; !got.Equal(dec("1.01")) {
		t.Errorf("Total = %s, want 1.01", got)
	}

	if err := ed.UpdateLineItem(0, editor.FieldQty, ""); err != nil {
		t.Fatal(err)
	}
	if got := ed.Items()[0].Qty; !got.IsZero() {
		t.Errorf("empty qty = %s, want 0", got)
	}
}

func TestSaveNavigatesToJob(t *testing.T) {
	tests := []struct {
		kind editor.Kind
		tab  editor.Tab
	}{
		{editor.KindInvoice, editor.TabInvoices},
		{editor.KindQuote, editor.TabQuotes},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			srv := apitest.New(t)
			var id string
			if tt.kind == editor.KindInvoice {
				id = srv.AddInvoice("job-9", []api.LineItem{item("Labour", "1", "0")}).ID
			} else {
				id = srv.AddQuote("job-9", []api.LineItem{item("Labour", "1", "0")}).ID
			}
			ed, rec := open(t, srv, tt.kind, id)
			if err := ed.UpdateLineItem(0, editor.FieldUnitPrice, "80"); err != nil {
				t.Fatal(err)
			}

			if err := ed.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if ed.State() != editor.StateNavigatedAway {
				t.Errorf("State = %s, want navigated-away", ed.State())
			}
			if len(rec.jobs) != 1 || rec.jobs[0] != "job-9" || rec.tabs[0] != tt.tab {
				t.Errorf("navigations = %v %v, want [job-9] [%s]", rec.jobs, rec.tabs, tt.tab)
			}

			var stored []api.LineItem
			if tt.kind == editor.KindInvoice {
				inv, _ := srv.Invoice(id)
				stored = inv.LineItems
			} else {
				q, _ := srv.Quote(id)
				stored = q.LineItems
			}
			if len(stored) != 1 || !stored[0].UnitPrice.Equal(dec("80")) {
				t.Errorf("stored = %+v", stored)
			}
		})
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "10")})
	ed, rec := open(t, srv, editor.KindInvoice, inv.ID)
	if err := ed.UpdateLineItem(0, editor.FieldDescription, "Tiling"); err != nil {
		t.Fatal(err)
	}

	srv.FailOn(http.MethodPut, "/invoices/"+inv.ID, http.StatusInternalServerError)
	if err := ed.Save(); err == nil {
		t.Fatal("Save succeeded against a failing service")
	}
	if ed.State() != editor.StateReady || ed.Busy() {
		t.Errorf("State, Busy = %s, %v, want ready, false", ed.State(), ed.Busy())
	}
	if got := ed.Items()[0].Description; got != "Tiling" {
		t.Errorf("description = %q, want Tiling", got)
	}
	if got := rec.kinds(); len(got) != 1 || got[0] != editor.NoticeMutation {
		t.Errorf("notices = %v, want [mutation]", got)
	}
	if rec.navigations() != 0 {
		t.Error("navigated after failed save")
	}

	srv.FailOn(http.MethodPut, "/invoices/"+inv.ID, 0)
	if err := ed.Save(); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
}

func TestAddPayment(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "250")})
	ed, _ := open(t, srv, editor.KindInvoice, inv.ID)

	// Local line edits survive the payment refresh.
	if err := ed.UpdateLineItem(0, editor.FieldDescription, "Unsaved"); err != nil {
		t.Fatal(err)
	}
	if err := ed.AddPayment("100", "deposit"); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	totals := ed.Totals()
	if !totals.Paid.Equal(dec("100")) || !totals.Outstanding.Equal(dec("150")) {
		t.Errorf("Paid, Outstanding = %s, %s, want 100, 150", totals.Paid, totals.Outstanding)
	}
	payments := ed.Payments()
	if len(payments) != 1 || payments[0].Note != "deposit" || payments[0].ID == "" {
		t.Errorf("payments = %+v", payments)
	}
	if amount, note := ed.PaymentDraft(); amount != "" || note != "" {
		t.Errorf("draft = %q, %q, want cleared", amount, note)
	}
	if got := ed.Items()[0].Description; got != "Unsaved" {
		t.Errorf("description = %q, want Unsaved", got)
	}
	if ed.State() != editor.StateReady || ed.Busy() {
		t.Errorf("State, Busy = %s, %v", ed.State(), ed.Busy())
	}
}

func TestAddPaymentRejectsBadAmounts(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "250")})
	ed, rec := open(t, srv, editor.KindInvoice, inv.ID)

	for _, amount := range []string{"", "0", "-5", "ten"} {
		if err := ed.AddPayment(amount, ""); !errors.Is(err, editor.ErrInvalidAmount) {
			t.Errorf("AddPayment(%q) = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if n := srv.CallsTo(http.MethodPost, "/invoices/"+inv.ID+"/payments"); n != 0 {
		t.Errorf("payment POSTs = %d, want 0", n)
	}
	if got := rec.kinds(); len(got) != 4 {
		t.Errorf("notices = %v, want 4 validation notices", got)
	}
	if amount, _ := ed.PaymentDraft(); amount != "ten" {
		t.Errorf("draft amount = %q, want it kept for correction", amount)
	}
}

func TestPaymentsOnQuote(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-1", []api.LineItem{item("Labour", "1", "1")})
	ed, _ := open(t, srv, editor.KindQuote, q.ID)

	if err := ed.AddPayment("10", ""); !errors.Is(err, editor.ErrInvoiceOnly) {
		t.Errorf("AddPayment on quote = %v, want ErrInvoiceOnly", err)
	}
	if err := ed.RequestDeletePayment("p1"); !errors.Is(err, editor.ErrInvoiceOnly) {
		t.Errorf("RequestDeletePayment on quote = %v, want ErrInvoiceOnly", err)
	}
}

func TestDeletePaymentNeedsConfirmation(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "250")},
		api.Payment{ID: "p1", Amount: dec("100"), PaymentDate: "2026-02-02"})
	ed, _ := open(t, srv, editor.KindInvoice, inv.ID)
	deletePath := "/invoices/" + inv.ID + "/payments/p1"

	if err := ed.RequestDeletePayment("nope"); !errors.Is(err, editor.ErrUnknownPayment) {
		t.Errorf("RequestDeletePayment(nope) = %v, want ErrUnknownPayment", err)
	}
	if err := ed.Confirm(); !errors.Is(err, editor.ErrNothingPending) {
		t.Errorf("Confirm with nothing pending = %v, want ErrNothingPending", err)
	}

	if err := ed.RequestDeletePayment("p1"); err != nil {
		t.Fatal(err)
	}
	if c, ok := ed.Pending(); !ok || c.PaymentID != "p1" || c.Prompt == "" {
		t.Errorf("Pending = %+v, %v", c, ok)
	}
	if !ed.Cancel() {
		t.Error("Cancel = false, want true")
	}
	if n := srv.CallsTo(http.MethodDelete, deletePath); n != 0 {
		t.Errorf("DELETE calls after cancel = %d, want 0", n)
	}
	if len(ed.Payments()) != 1 {
		t.Errorf("payments after cancel = %d, want 1", len(ed.Payments()))
	}

	if err := ed.RequestDeletePayment("p1"); err != nil {
		t.Fatal(err)
	}
	if err := ed.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if n := srv.CallsTo(http.MethodDelete, deletePath); n != 1 {
		t.Errorf("DELETE calls = %d, want 1", n)
	}
	if len(ed.Payments()) != 0 {
		t.Errorf("payments = %+v, want none", ed.Payments())
	}
	if _, ok := ed.Pending(); ok {
		t.Error("confirmation still pending")
	}
	if got := ed.Totals().Outstanding; !got.Equal(dec("250")) {
		t.Errorf("Outstanding = %s, want 250", got)
	}
}

func TestConvert(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-3", []api.LineItem{item("Labour", "2", "50")})
	ed, rec := open(t, srv, editor.KindQuote, q.ID)

	inv, err := ed.Convert()
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !inv.Total.Equal(dec("100")) {
		t.Errorf("invoice Total = %s, want 100", inv.Total)
	}
	if ed.State() != editor.StateNavigatedAway {
		t.Errorf("State = %s, want navigated-away", ed.State())
	}
	if len(rec.tabs) != 1 || rec.tabs[0] != editor.TabInvoices || rec.jobs[0] != "job-3" {
		t.Errorf("navigations = %v %v", rec.jobs, rec.tabs)
	}

	again := editor.New(editor.KindQuote, srv.Client(), nil, nil)
	if err := again.Load(q.ID); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("Load converted quote = %v, want ErrNotFound", err)
	}
}

func TestConvertOnlyQuotes(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "1")})
	ed, _ := open(t, srv, editor.KindInvoice, inv.ID)

	if _, err := ed.Convert(); !errors.Is(err, editor.ErrQuoteOnly) {
		t.Errorf("Convert on invoice = %v, want ErrQuoteOnly", err)
	}
}

func TestConvertFailureStaysReady(t *testing.T) {
	srv := apitest.New(t)
	q := srv.AddQuote("job-1", []api.LineItem{item("Labour", "1", "1")})
	ed, rec := open(t, srv, editor.KindQuote, q.ID)

	srv.FailOn(http.MethodPost, "/quotes/"+q.ID+"/convert", http.StatusBadGateway)
	if _, err := ed.Convert(); err == nil {
		t.Fatal("Convert succeeded against a failing service")
	}
	if ed.State() != editor.StateReady {
		t.Errorf("State = %s, want ready", ed.State())
	}
	if rec.navigations() != 0 {
		t.Error("navigated after failed convert")
	}
}

// gated blocks UpdateInvoiceLineItems until released.
type gated struct {
	editor.Service
	entered chan struct{}
	release chan struct{}
}

func (g *gated) UpdateInvoiceLineItems(id string, items []api.LineItem) error {
	g.entered <- struct{}{}
	<-g.release
	return g.Service.UpdateInvoiceLineItems(id, items)
}

func newGated(t *testing.T) (*apitest.Server, *gated, string) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "250")})
	return srv, &gated{Service: srv.Client(), entered: make(chan struct{}), release: make(chan struct{})}, inv.ID
}

func TestBusyRejectsConcurrentCalls(t *testing.T) {
	_, svc, id := newGated(t)
	rec := &recorder{}
	ed := editor.New(editor.KindInvoice, svc, rec, rec)
	if err := ed.Load(id); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- ed.Save() }()
	<-svc.entered

	if !ed.Busy() || ed.State() != editor.StateSaving {
		t.Errorf("Busy, State = %v, %s, want true, saving", ed.Busy(), ed.State())
	}
	if err := ed.Save(); !errors.Is(err, editor.ErrBusy) {
		t.Errorf("second Save = %v, want ErrBusy", err)
	}
	if err := ed.AddPayment("5", ""); !errors.Is(err, editor.ErrBusy) {
		t.Errorf("AddPayment while saving = %v, want ErrBusy", err)
	}
	if err := ed.Load(id); !errors.Is(err, editor.ErrBusy) {
		t.Errorf("Load of the same document while saving = %v, want ErrBusy", err)
	}
	if _, err := ed.AddLineItem(); !errors.Is(err, editor.ErrNotReady) {
		t.Errorf("AddLineItem while saving = %v, want ErrNotReady", err)
	}

	close(svc.release)
	if err := <-done; err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.navigations() != 1 {
		t.Errorf("navigations = %d, want 1", rec.navigations())
	}
}

func TestLoadOtherDocumentDiscardsInFlightSave(t *testing.T) {
	srv, svc, id := newGated(t)
	other := srv.AddInvoice("job-2", []api.LineItem{item("Paint", "3", "10")})
	rec := &recorder{}
	ed := editor.New(editor.KindInvoice, svc, rec, rec)
	if err := ed.Load(id); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- ed.Save() }()
	<-svc.entered

	if err := ed.Load(other.ID); err != nil {
		t.Fatalf("Load(other) while saving = %v, want nil", err)
	}
	if ed.ID() != other.ID || ed.JobID() != "job-2" || ed.State() != editor.StateReady || ed.Busy() {
		t.Errorf("ID, JobID, State, Busy = %s, %s, %s, %v", ed.ID(), ed.JobID(), ed.State(), ed.Busy())
	}

	close(svc.release)
	if err := <-done; !errors.Is(err, editor.ErrDiscarded) {
		t.Errorf("Save of the old document = %v, want ErrDiscarded", err)
	}
	if rec.navigations() != 0 {
		t.Error("navigated for a discarded save")
	}
	if got := ed.Items(); len(got) != 1 || got[0].Description != "Paint" {
		t.Errorf("items = %+v, want the other document's lines", got)
	}
	if ed.State() != editor.StateReady {
		t.Errorf("State = %s, want ready", ed.State())
	}
}

func TestSaveWithoutJobIsRejected(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("", []api.LineItem{item("Labour", "1", "10")})
	q := srv.AddQuote("", []api.LineItem{item("Labour", "1", "10")})

	ed, rec := open(t, srv, editor.KindInvoice, inv.ID)
	if ed.CanSave() {
		t.Error("CanSave = true without a job")
	}
	if err := ed.Save(); !errors.Is(err, editor.ErrNoJob) {
		t.Errorf("Save = %v, want ErrNoJob", err)
	}
	if n := srv.CallsTo(http.MethodPut, "/invoices/"+inv.ID); n != 0 {
		t.Errorf("PUT calls = %d, want 0", n)
	}
	if got := rec.kinds(); len(got) != 1 || got[0] != editor.NoticeValidation {
		t.Errorf("notices = %v, want [validation]", got)
	}

	qe, _ := open(t, srv, editor.KindQuote, q.ID)
	if _, err := qe.Convert(); !errors.Is(err, editor.ErrNoJob) {
		t.Errorf("Convert = %v, want ErrNoJob", err)
	}
	if n := srv.CallsTo(http.MethodPost, "/quotes/"+q.ID+"/convert"); n != 0 {
		t.Errorf("convert calls = %d, want 0", n)
	}
}

func TestPaymentChangesAnnounced(t *testing.T) {
	srv := apitest.New(t)
	inv := srv.AddInvoice("job-1", []api.LineItem{item("Labour", "1", "250")})
	ed, rec := open(t, srv, editor.KindInvoice, inv.ID)

	if err := ed.AddPayment("50", ""); err != nil {
		t.Fatal(err)
	}
	if err := ed.RequestDeletePayment(ed.Payments()[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := ed.Confirm(); err != nil {
		t.Fatal(err)
	}

	got := rec.kinds()
	want := []editor.NoticeKind{editor.NoticeInfo, editor.NoticeInfo}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("notices = %v, want %v", got, want)
	}
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	_, svc, id := newGated(t)
	rec := &recorder{}
	ed := editor.New(editor.KindInvoice, svc, rec, rec)
	if err := ed.Load(id); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- ed.Save() }()
	<-svc.entered
	ed.Close()
	close(svc.release)

	if err := <-done; !errors.Is(err, editor.ErrDiscarded) {
		t.Errorf("Save after Close = %v, want ErrDiscarded", err)
	}
	if ed.State() != editor.StateClosed {
		t.Errorf("State = %s, want closed", ed.State())
	}
	if rec.navigations() != 0 || len(rec.kinds()) != 0 {
		t.Errorf("navigations, notices = %d, %v, want none", rec.navigations(), rec.kinds())
	}
}

func TestParseField(t *testing.T) {
	tests := map[string]editor.Field{
		"description": editor.FieldDescription,
		"Qty":         editor.FieldQty,
		"price":       editor.FieldUnitPrice,
		"unit_price":  editor.FieldUnitPrice,
	}
	for in, want := range tests {
		if got, err := editor.ParseField(in); err != nil || got != want {
			t.Errorf("ParseField(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := editor.ParseField("colour"); !errors.Is(err, editor.ErrUnknownField) {
		t.Errorf("ParseField(colour) = %v, want ErrUnknownField", err)
	}
}
